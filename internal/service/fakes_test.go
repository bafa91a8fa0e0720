package service

import (
	"context"
	"io"
	"log/slog"

	"bedrockchat/internal/domain"
	"bedrockchat/internal/llm"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeCredentialStore struct {
	records map[string]*domain.CredentialRecord
	puts    int
}

func newFakeCredentialStore() *fakeCredentialStore {
	return &fakeCredentialStore{records: make(map[string]*domain.CredentialRecord)}
}

func (f *fakeCredentialStore) Get(_ context.Context, username string) (*domain.CredentialRecord, error) {
	rec, ok := f.records[username]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeCredentialStore) Put(_ context.Context, rec *domain.CredentialRecord) error {
	f.puts++
	cp := *rec
	f.records[rec.Username] = &cp
	return nil
}

type fakeDataLayer struct {
	profiles    map[string]*domain.Profile
	threads     map[string]*domain.Thread
	messages    map[string][]domain.Message
	profilePuts int
}

func newFakeDataLayer() *fakeDataLayer {
	return &fakeDataLayer{
		profiles: make(map[string]*domain.Profile),
		threads:  make(map[string]*domain.Thread),
		messages: make(map[string][]domain.Message),
	}
}

func (f *fakeDataLayer) GetProfile(_ context.Context, identifier string) (*domain.Profile, error) {
	p, ok := f.profiles[identifier]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (f *fakeDataLayer) PutProfile(_ context.Context, profile *domain.Profile) error {
	f.profilePuts++
	f.profiles[profile.Identifier] = profile
	return nil
}

func (f *fakeDataLayer) PutThread(_ context.Context, thread *domain.Thread) error {
	f.threads[thread.ID] = thread
	return nil
}

func (f *fakeDataLayer) GetThread(_ context.Context, id string) (*domain.Thread, error) {
	t, ok := f.threads[id]
	if !ok {
		return nil, nil
	}
	return t, nil
}

func (f *fakeDataLayer) ListThreads(_ context.Context, userIdentifier string) ([]domain.Thread, error) {
	var out []domain.Thread
	for _, t := range f.threads {
		if t.UserIdentifier == userIdentifier {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeDataLayer) PutMessage(_ context.Context, msg *domain.Message) error {
	f.messages[msg.ThreadID] = append(f.messages[msg.ThreadID], *msg)
	return nil
}

func (f *fakeDataLayer) ListMessages(_ context.Context, threadID string) ([]domain.Message, error) {
	return f.messages[threadID], nil
}

// fakeProvider streams a fixed token sequence.
type fakeProvider struct {
	tokens []string
	err    error
	calls  []llm.Request
}

func (f *fakeProvider) Stream(ctx context.Context, req llm.Request, out chan<- string) error {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return f.err
	}
	for _, tok := range f.tokens {
		select {
		case out <- tok:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
