package core

import (
	"context"
	"encoding/base64"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const defaultGroqChatModel = "meta-llama/llama-4-scout-17b-16e-instruct"

// GroqResponder generates replies through Groq's OpenAI-compatible chat
// completion API. The model is multi-modal: an attached image is inlined as a
// base64 data URL part of the user turn.
type GroqResponder struct {
	client *openai.Client
	model  string
}

func NewGroqResponder(client *openai.Client) *GroqResponder {
	return &GroqResponder{client: client, model: defaultGroqChatModel}
}

func (r *GroqResponder) Respond(ctx context.Context, prompt TurnPrompt) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(prompt.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: prompt.System,
	})
	for _, msg := range prompt.History {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	userMsg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if prompt.Image != nil {
		dataURL := fmt.Sprintf("data:%s;base64,%s", prompt.Image.MIME, base64.StdEncoding.EncodeToString(prompt.Image.Data))
		userMsg.MultiContent = []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: prompt.UserText},
			{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailAuto},
			},
		}
	} else {
		userMsg.Content = prompt.UserText
	}
	messages = append(messages, userMsg)

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    r.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("groq chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("groq returned no completion choices")
	}
	return resp.Choices[0].Message.Content, nil
}
