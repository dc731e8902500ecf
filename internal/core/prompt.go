package core

import "context"

// Chat roles as supplied by clients in the history field.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of caller-supplied dialogue history. The server is
// stateless across turns; history arrives with every request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ImageAttachment is an optional image accompanying the user's turn,
// inlined into the prompt with its declared content type.
type ImageAttachment struct {
	Data []byte
	MIME string
}

// TurnPrompt is the fully assembled prompt for one interview turn: system
// block (with retrieval hints appended), prior history, then the new user
// turn with its optional image.
type TurnPrompt struct {
	System   string
	History  []ChatMessage
	UserText string
	Image    *ImageAttachment
}

// Responder produces the model's reply for a turn. Implementations wrap a
// remote multi-modal chat-completion service.
type Responder interface {
	Respond(ctx context.Context, prompt TurnPrompt) (string, error)
}
