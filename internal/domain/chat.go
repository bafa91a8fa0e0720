package domain

// Message roles within a thread.
const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// Thread is one conversation. Its metadata carries the chat settings and
// the exchange history so a resumed session picks up where it left off.
type Thread struct {
	ID             string         `json:"id"`
	UserIdentifier string         `json:"user_identifier"`
	Name           string         `json:"name"`
	CreatedAt      string         `json:"created_at"`
	Metadata       map[string]any `json:"metadata"`
}

// Message is a single stored turn inside a thread.
type Message struct {
	ID        string `json:"id"`
	ThreadID  string `json:"thread_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// ChatSettings are the per-session model parameters the client can adjust
// mid-conversation.
type ChatSettings struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}

// Exchange is one user/assistant turn kept in session memory and mirrored
// into thread metadata.
type Exchange struct {
	Human string `json:"human"`
	AI    string `json:"ai"`
}
