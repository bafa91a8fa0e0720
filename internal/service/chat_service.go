package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"bedrockchat/internal/domain"
	"bedrockchat/internal/llm"
	"bedrockchat/internal/repository"
)

var ErrThreadNotFound = errors.New("thread not found")

// Session is one live chat: its thread, current model settings and the
// conversation so far. A session belongs to a single connection and is not
// shared.
type Session struct {
	ThreadID  string
	User      string
	CreatedAt string
	Settings  domain.ChatSettings
	History   []domain.Exchange
}

type ChatService struct {
	provider     llm.Provider
	dataLayer    repository.DataLayer
	systemPrompt string
	logger       *slog.Logger
}

func NewChatService(provider llm.Provider, dataLayer repository.DataLayer, systemPrompt string, logger *slog.Logger) *ChatService {
	return &ChatService{
		provider:     provider,
		dataLayer:    dataLayer,
		systemPrompt: systemPrompt,
		logger:       logger,
	}
}

// StartSession creates a thread for the user and returns a fresh session.
func (s *ChatService) StartSession(ctx context.Context, user string, settings domain.ChatSettings) (*Session, error) {
	thread := &domain.Thread{
		ID:             uuid.NewString(),
		UserIdentifier: user,
		Name:           "New chat",
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		Metadata:       threadMetadata(settings, nil),
	}
	if err := s.dataLayer.PutThread(ctx, thread); err != nil {
		return nil, fmt.Errorf("creating thread: %w", err)
	}
	return &Session{ThreadID: thread.ID, User: user, CreatedAt: thread.CreatedAt, Settings: settings}, nil
}

// Resume rebuilds a session from a stored thread: settings and exchange
// history come back out of the thread metadata.
func (s *ChatService) Resume(ctx context.Context, user, threadID string) (*Session, error) {
	thread, err := s.dataLayer.GetThread(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("loading thread: %w", err)
	}
	if thread == nil || thread.UserIdentifier != user {
		return nil, ErrThreadNotFound
	}

	sess := &Session{ThreadID: thread.ID, User: user, CreatedAt: thread.CreatedAt}
	if m, ok := thread.Metadata["settings"].(map[string]any); ok {
		sess.Settings.Model, _ = m["model"].(string)
		sess.Settings.Temperature, _ = m["temperature"].(float64)
	}
	if hist, ok := thread.Metadata["message_history"].([]any); ok {
		for _, raw := range hist {
			m, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			human, _ := m["human"].(string)
			ai, _ := m["ai"].(string)
			sess.History = append(sess.History, domain.Exchange{Human: human, AI: ai})
		}
	}
	return sess, nil
}

// Stream sends the user's message through the model, pushing token chunks
// to out as they arrive, and returns the full reply. On success the
// exchange is appended to the session history and persisted to the thread.
func (s *ChatService) Stream(ctx context.Context, sess *Session, content string, out chan<- string) (string, error) {
	req := llm.Request{
		Model:       sess.Settings.Model,
		Temperature: sess.Settings.Temperature,
		System:      s.systemPrompt,
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: renderPrompt(sess.History, content),
		}},
	}

	tokens := make(chan string, 16)
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.provider.Stream(ctx, req, tokens)
		close(tokens)
	}()

	var reply strings.Builder
	for tok := range tokens {
		reply.WriteString(tok)
		select {
		case out <- tok:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err := <-errCh; err != nil {
		return "", fmt.Errorf("streaming completion: %w", err)
	}

	answer := reply.String()
	sess.History = append(sess.History, domain.Exchange{Human: content, AI: answer})
	s.persistExchange(ctx, sess, content, answer)
	return answer, nil
}

// ListThreads returns the user's threads, most recent first.
func (s *ChatService) ListThreads(ctx context.Context, user string) ([]domain.Thread, error) {
	return s.dataLayer.ListThreads(ctx, user)
}

// ThreadMessages loads a thread and its stored messages for the resume
// view.
func (s *ChatService) ThreadMessages(ctx context.Context, user, threadID string) (*domain.Thread, []domain.Message, error) {
	thread, err := s.dataLayer.GetThread(ctx, threadID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading thread: %w", err)
	}
	if thread == nil || thread.UserIdentifier != user {
		return nil, nil, ErrThreadNotFound
	}
	msgs, err := s.dataLayer.ListMessages(ctx, threadID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading messages: %w", err)
	}
	return thread, msgs, nil
}

// persistExchange records both turns and refreshes the thread metadata.
// The reply has already been streamed, so storage failures are logged
// rather than surfaced to the client.
func (s *ChatService) persistExchange(ctx context.Context, sess *Session, question, answer string) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	userMsg := &domain.Message{
		ID:        uuid.NewString(),
		ThreadID:  sess.ThreadID,
		Role:      domain.MessageRoleUser,
		Content:   question,
		CreatedAt: now,
	}
	assistantMsg := &domain.Message{
		ID:        uuid.NewString(),
		ThreadID:  sess.ThreadID,
		Role:      domain.MessageRoleAssistant,
		Content:   answer,
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}

	if err := s.dataLayer.PutMessage(ctx, userMsg); err != nil {
		s.logger.Error("persisting user message", "thread", sess.ThreadID, "error", err)
	}
	if err := s.dataLayer.PutMessage(ctx, assistantMsg); err != nil {
		s.logger.Error("persisting assistant message", "thread", sess.ThreadID, "error", err)
	}

	thread := &domain.Thread{
		ID:             sess.ThreadID,
		UserIdentifier: sess.User,
		Name:           threadName(sess.History),
		CreatedAt:      sess.CreatedAt,
		Metadata:       threadMetadata(sess.Settings, sess.History),
	}
	if err := s.dataLayer.PutThread(ctx, thread); err != nil {
		s.logger.Error("persisting thread", "thread", sess.ThreadID, "error", err)
	}
}

// renderPrompt reproduces the conversation template: the exchanges so far
// followed by the current question.
func renderPrompt(history []domain.Exchange, content string) string {
	var b strings.Builder
	for i, ex := range history {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Human: %s\nAssistant: %s", ex.Human, ex.AI)
	}
	return fmt.Sprintf("Conversation so far:\n%s\n\nCurrent question:\n%s", b.String(), content)
}

func threadMetadata(settings domain.ChatSettings, history []domain.Exchange) map[string]any {
	hist := make([]any, len(history))
	for i, ex := range history {
		hist[i] = map[string]any{"human": ex.Human, "ai": ex.AI}
	}
	return map[string]any{
		"settings": map[string]any{
			"model":       settings.Model,
			"temperature": settings.Temperature,
		},
		"message_history": hist,
	}
}

// threadName titles the thread after the first question, truncated.
func threadName(history []domain.Exchange) string {
	if len(history) == 0 {
		return "New chat"
	}
	name := history[0].Human
	if len(name) > 60 {
		name = name[:60]
	}
	return name
}
