package speech

import (
	"context"
	"fmt"

	htgotts "github.com/hegedustibor/htgo-tts"
)

// GTTSSynthesizer renders text to mp3 through the Google Translate TTS
// endpoint. The underlying call is blocking file I/O plus one HTTP request;
// it runs inside the request's own goroutine.
type GTTSSynthesizer struct {
	language string
}

func NewGTTSSynthesizer(language string) *GTTSSynthesizer {
	return &GTTSSynthesizer{language: language}
}

func (s *GTTSSynthesizer) Synthesize(ctx context.Context, text, dir, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tts := htgotts.Speech{Folder: dir, Language: s.language}
	path, err := tts.CreateSpeechFile(text, name)
	if err != nil {
		return "", fmt.Errorf("tts synthesis failed: %w", err)
	}
	return path, nil
}
