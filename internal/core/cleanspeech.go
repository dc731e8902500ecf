package core

import (
	"regexp"
	"strings"
)

// Model replies often carry markup that reads badly when spoken: code fences,
// inline code, *stage directions* and (parenthetical asides). All of it is
// stripped before synthesis.
var (
	reCodeFence  = regexp.MustCompile("(?s)```.*?```")
	reInlineCode = regexp.MustCompile("`[^`\n]*`")
	reStageNote  = regexp.MustCompile(`\*[^*\n]*\*`)
	reAside      = regexp.MustCompile(`\([^()\n]*\)`)
	reWhitespace = regexp.MustCompile(`[ \t]+`)
)

// CleanForSpeech prepares a model reply for the TTS engine. The result may be
// empty, in which case synthesis is skipped.
func CleanForSpeech(text string) string {
	text = reCodeFence.ReplaceAllString(text, " ")
	text = reInlineCode.ReplaceAllString(text, " ")
	text = reStageNote.ReplaceAllString(text, " ")
	text = reAside.ReplaceAllString(text, " ")
	text = reWhitespace.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	cleaned := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
