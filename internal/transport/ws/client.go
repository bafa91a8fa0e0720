package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"bedrockchat/internal/domain"
	"bedrockchat/internal/service"
	"bedrockchat/pkg/validator"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBufSize  = 256
)

// Client represents a single WebSocket connection carrying one chat
// session.
type Client struct {
	manager *Manager
	conn    *websocket.Conn
	id      string
	user    string

	chat     *service.ChatService
	defaults domain.ChatSettings
	session  *service.Session

	logger *slog.Logger

	send chan []byte
	done chan struct{}
}

func NewClient(manager *Manager, conn *websocket.Conn, id, user string, chat *service.ChatService, defaults domain.ChatSettings, logger *slog.Logger) *Client {
	return &Client{
		manager:  manager,
		conn:     conn,
		id:       id,
		user:     user,
		chat:     chat,
		defaults: defaults,
		logger:   logger,
		send:     make(chan []byte, sendBufSize),
		done:     make(chan struct{}),
	}
}

// ReadPump reads events from the WebSocket and handles them in order.
// Message generation runs inline, so a session processes one message at a
// time, streaming tokens through the send channel while it does.
func (c *Client) ReadPump() {
	defer func() {
		c.manager.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				c.logger.Info("chat client disconnected", "user", c.user)
			} else {
				c.logger.Error("ws read", "user", c.user, "error", err)
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes messages from the send channel to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				c.logger.Error("ws write", "user", c.user, "error", err)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				c.logger.Error("ws ping", "user", c.user, "error", err)
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent routes an incoming client event.
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeMessageSend:
		var p MessageSendPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.Content == "" {
			c.sendError("INVALID_PAYLOAD", "invalid message.send payload")
			return
		}
		c.handleMessage(p.Content)

	case EventTypeSettingsUpdate:
		var p SettingsPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid settings.update payload")
			return
		}
		c.handleSettings(p)

	case EventTypeSessionResume:
		var p ResumePayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.ThreadID == "" {
			c.sendError("INVALID_PAYLOAD", "invalid session.resume payload")
			return
		}
		c.handleResume(p.ThreadID)

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

func (c *Client) handleMessage(content string) {
	ctx := context.Background()

	if c.session == nil {
		sess, err := c.chat.StartSession(ctx, c.user, c.defaults)
		if err != nil {
			c.logger.Error("starting session", "user", c.user, "error", err)
			c.sendError("SESSION_FAILED", "could not start a chat session")
			return
		}
		c.session = sess
		c.sendEvent(EventTypeSessionReady, sess.ThreadID, SessionReadyPayload{Settings: sess.Settings})
	}

	c.sendEvent(EventTypeMessageStart, c.session.ThreadID, nil)

	tokens := make(chan string, 16)
	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		for tok := range tokens {
			c.sendEvent(EventTypeMessageToken, c.session.ThreadID, TokenPayload{Token: tok})
		}
	}()

	answer, err := c.chat.Stream(ctx, c.session, content, tokens)
	close(tokens)
	<-forwarded

	if err != nil {
		c.logger.Error("streaming reply", "user", c.user, "thread", c.session.ThreadID, "error", err)
		c.sendError("GENERATION_FAILED", "could not generate a reply")
		return
	}

	c.sendEvent(EventTypeMessageDone, c.session.ThreadID, MessageDonePayload{Content: answer})
}

func (c *Client) handleSettings(p SettingsPayload) {
	if errs := validator.ValidateSettings(p.Model, p.Temperature); errs.HasErrors() {
		c.sendError("INVALID_SETTINGS", "model and temperature are out of range")
		return
	}

	settings := domain.ChatSettings{Model: p.Model, Temperature: p.Temperature}
	if c.session == nil {
		// No session yet; the new settings become the session defaults.
		c.defaults = settings
	} else {
		c.session.Settings = settings
	}

	threadID := ""
	if c.session != nil {
		threadID = c.session.ThreadID
	}
	c.sendEvent(EventTypeSettingsApplied, threadID, SettingsPayload(settings))
}

func (c *Client) handleResume(threadID string) {
	sess, err := c.chat.Resume(context.Background(), c.user, threadID)
	if err != nil {
		c.logger.Error("resuming session", "user", c.user, "thread", threadID, "error", err)
		c.sendError("RESUME_FAILED", "could not resume thread")
		return
	}
	if sess.Settings.Model == "" {
		sess.Settings = c.defaults
	}
	c.session = sess

	c.sendEvent(EventTypeSessionReady, sess.ThreadID, SessionReadyPayload{
		Settings: sess.Settings,
		History:  sess.History,
	})
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong})
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code, message string) {
	c.sendEvent(EventTypeError, "", ErrorPayload{Code: code, Message: message})
}

func (c *Client) sendEvent(eventType, threadID string, payload any) {
	evt, err := NewEvent(eventType, threadID, payload)
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	case <-c.done:
	}
}
