package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash-latest"

// GeminiResponder is the alternative Responder backed by Google's Gemini API,
// selected with LLM_PROVIDER=gemini.
type GeminiResponder struct {
	client *genai.Client
	model  string
}

func NewGeminiResponder(ctx context.Context, apiKey string) (*GeminiResponder, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiResponder{client: client, model: defaultGeminiModel}, nil
}

func (r *GeminiResponder) Close() error {
	return r.client.Close()
}

func (r *GeminiResponder) Respond(ctx context.Context, prompt TurnPrompt) (string, error) {
	model := r.client.GenerativeModel(r.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompt.System)},
	}

	session := model.StartChat()
	for _, msg := range prompt.History {
		session.History = append(session.History, &genai.Content{
			Role:  geminiRole(msg.Role),
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	parts := []genai.Part{genai.Text(prompt.UserText)}
	if prompt.Image != nil {
		parts = append(parts, genai.ImageData(imageSubtype(prompt.Image.MIME), prompt.Image.Data))
	}

	resp, err := session.SendMessage(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini SendMessage failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("gemini returned a non-text response")
	}
	return text.String(), nil
}

// geminiRole maps wire roles onto Gemini's user/model vocabulary.
func geminiRole(role string) string {
	if role == RoleAssistant || role == "model" {
		return "model"
	}
	return "user"
}

// imageSubtype turns "image/jpeg" into the bare "jpeg" genai expects.
func imageSubtype(mime string) string {
	if _, sub, ok := strings.Cut(mime, "/"); ok && sub != "" {
		return sub
	}
	return "jpeg"
}
