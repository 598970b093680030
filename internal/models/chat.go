package models

// ChatMessage is a single turn in a tutor conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
	ChatRoleSystem    = "system"
)

// ChatRequest is the body of a tutor chat call
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// ChatResponse is a successful tutor reply
type ChatResponse struct {
	Reply string `json:"reply"`
}
