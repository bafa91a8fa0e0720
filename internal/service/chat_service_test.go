package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bedrockchat/internal/domain"
)

func drain(out <-chan string, got *[]string, done chan<- struct{}) {
	for tok := range out {
		*got = append(*got, tok)
	}
	close(done)
}

func TestChatService_StreamAndPersist(t *testing.T) {
	provider := &fakeProvider{tokens: []string{"Hello", ", ", "world"}}
	data := newFakeDataLayer()
	svc := NewChatService(provider, data, "You are helpful.", testLogger())

	sess, err := svc.StartSession(context.Background(), "alice", domain.ChatSettings{
		Model:       "anthropic.claude-v2",
		Temperature: 0.7,
	})
	require.NoError(t, err)
	require.NotEmpty(t, sess.ThreadID)

	out := make(chan string, 16)
	var got []string
	done := make(chan struct{})
	go drain(out, &got, done)

	answer, err := svc.Stream(context.Background(), sess, "Say hello", out)
	close(out)
	<-done
	require.NoError(t, err)

	assert.Equal(t, "Hello, world", answer)
	assert.Equal(t, []string{"Hello", ", ", "world"}, got)

	// Session memory updated.
	require.Len(t, sess.History, 1)
	assert.Equal(t, "Say hello", sess.History[0].Human)
	assert.Equal(t, "Hello, world", sess.History[0].AI)

	// Both turns persisted.
	msgs, err := data.ListMessages(context.Background(), sess.ThreadID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.MessageRoleUser, msgs[0].Role)
	assert.Equal(t, domain.MessageRoleAssistant, msgs[1].Role)
	assert.Equal(t, "Hello, world", msgs[1].Content)

	// Thread metadata carries settings and history.
	thread, err := data.GetThread(context.Background(), sess.ThreadID)
	require.NoError(t, err)
	require.NotNil(t, thread)
	settings, ok := thread.Metadata["settings"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 0.7, settings["temperature"])

	// Prompt includes the system prompt and the rendered template.
	require.Len(t, provider.calls, 1)
	call := provider.calls[0]
	assert.Equal(t, "anthropic.claude-v2", call.Model)
	assert.Equal(t, "You are helpful.", call.System)
	require.Len(t, call.Messages, 1)
	assert.Contains(t, call.Messages[0].Content, "Current question:\nSay hello")
}

func TestChatService_PromptCarriesHistory(t *testing.T) {
	provider := &fakeProvider{tokens: []string{"Fine."}}
	data := newFakeDataLayer()
	svc := NewChatService(provider, data, "", testLogger())

	sess, err := svc.StartSession(context.Background(), "alice", domain.ChatSettings{Model: "m", Temperature: 0})
	require.NoError(t, err)
	sess.History = []domain.Exchange{{Human: "Hi", AI: "Hello!"}}

	out := make(chan string, 16)
	var got []string
	done := make(chan struct{})
	go drain(out, &got, done)

	_, err = svc.Stream(context.Background(), sess, "How are you?", out)
	close(out)
	<-done
	require.NoError(t, err)

	prompt := provider.calls[0].Messages[0].Content
	assert.True(t, strings.Contains(prompt, "Human: Hi\nAssistant: Hello!"), "prompt = %q", prompt)
	assert.True(t, strings.Contains(prompt, "Current question:\nHow are you?"), "prompt = %q", prompt)
}

func TestChatService_Resume(t *testing.T) {
	data := newFakeDataLayer()
	svc := NewChatService(&fakeProvider{}, data, "", testLogger())

	require.NoError(t, data.PutThread(context.Background(), &domain.Thread{
		ID:             "t1",
		UserIdentifier: "alice",
		Name:           "Old chat",
		CreatedAt:      "2024-01-01T00:00:00Z",
		Metadata: map[string]any{
			"settings": map[string]any{
				"model":       "anthropic.claude-v2",
				"temperature": 0.3,
			},
			"message_history": []any{
				map[string]any{"human": "Hi", "ai": "Hello!"},
			},
		},
	}))

	sess, err := svc.Resume(context.Background(), "alice", "t1")
	require.NoError(t, err)

	assert.Equal(t, "anthropic.claude-v2", sess.Settings.Model)
	assert.Equal(t, 0.3, sess.Settings.Temperature)
	require.Len(t, sess.History, 1)
	assert.Equal(t, domain.Exchange{Human: "Hi", AI: "Hello!"}, sess.History[0])
	assert.Equal(t, "2024-01-01T00:00:00Z", sess.CreatedAt)
}

func TestChatService_ResumeWrongUser(t *testing.T) {
	data := newFakeDataLayer()
	svc := NewChatService(&fakeProvider{}, data, "", testLogger())

	require.NoError(t, data.PutThread(context.Background(), &domain.Thread{
		ID:             "t1",
		UserIdentifier: "alice",
	}))

	_, err := svc.Resume(context.Background(), "mallory", "t1")
	assert.ErrorIs(t, err, ErrThreadNotFound)

	_, err = svc.Resume(context.Background(), "alice", "missing")
	assert.ErrorIs(t, err, ErrThreadNotFound)
}
