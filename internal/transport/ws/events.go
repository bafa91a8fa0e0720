package ws

import (
	"encoding/json"
	"time"

	"bedrockchat/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeMessageSend    = "message.send"
	EventTypeSettingsUpdate = "settings.update"
	EventTypeSessionResume  = "session.resume"
	EventTypePing           = "ping"
)

// Event types - Server → Client
const (
	EventTypeSessionReady    = "session.ready"
	EventTypeMessageStart    = "message.start"
	EventTypeMessageToken    = "message.token"
	EventTypeMessageDone     = "message.done"
	EventTypeSettingsApplied = "settings.applied"
	EventTypePong            = "pong"
	EventTypeError           = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	ThreadID  string          `json:"thread_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type MessageSendPayload struct {
	Content string `json:"content"`
}

type SettingsPayload struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}

type ResumePayload struct {
	ThreadID string `json:"thread_id"`
}

// --- Server → Client payloads ---

type SessionReadyPayload struct {
	Settings domain.ChatSettings `json:"settings"`
	History  []domain.Exchange   `json:"history,omitempty"`
}

type TokenPayload struct {
	Token string `json:"token"`
}

type MessageDonePayload struct {
	Content string `json:"content"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType, threadID string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		ThreadID:  threadID,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
