package llm

import "context"

// Provider is a chat-completion backend. The Generator drives it with a
// system instruction and a grounded prompt.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name identifies the backend in logs and errors.
	Name() string
}
