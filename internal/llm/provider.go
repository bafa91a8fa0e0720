package llm

import "context"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

// Request is a single streaming completion call.
type Request struct {
	Model       string
	Temperature float64
	System      string
	Messages    []Message
}

// Provider streams a chat completion token by token into out. The caller
// owns the channel; implementations must not close it.
type Provider interface {
	Stream(ctx context.Context, req Request, out chan<- string) error
}
