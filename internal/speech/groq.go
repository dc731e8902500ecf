package speech

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// GroqBaseURL is Groq's OpenAI-compatible endpoint.
const GroqBaseURL = "https://api.groq.com/openai/v1"

const defaultWhisperModel = "whisper-large-v3"

// NewGroqClient builds an OpenAI-protocol client pointed at Groq.
func NewGroqClient(apiKey string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = GroqBaseURL
	return openai.NewClientWithConfig(cfg)
}

// GroqTranscriber transcribes audio through Groq's hosted Whisper.
type GroqTranscriber struct {
	client *openai.Client
	model  string
}

func NewGroqTranscriber(client *openai.Client) *GroqTranscriber {
	return &GroqTranscriber{client: client, model: defaultWhisperModel}
}

func (t *GroqTranscriber) Transcribe(ctx context.Context, path, language string) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:       t.model,
		FilePath:    path,
		Language:    language,
		Temperature: 0,
		Format:      openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription failed: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
