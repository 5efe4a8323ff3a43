package ports

import "context"

// ChatRequest carries one chat-completion call: an optional system prompt,
// a single user prompt, and the sampling temperature.
type ChatRequest struct {
	Model       string
	System      string
	User        string
	Temperature float64
}

// ChatClient sends a prompt pair to an LLM backend and returns raw text.
type ChatClient interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
}

// ContentSource supplies the post body to be tagged and summarized.
type ContentSource interface {
	Load(ctx context.Context) (string, error)
}
