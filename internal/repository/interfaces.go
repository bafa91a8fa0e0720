package repository

import (
	"context"

	"bedrockchat/internal/domain"
)

// CredentialStore is the username-keyed credential table. Get returns
// (nil, nil) when no record exists; Put is an unconditional upsert. There
// is no delete.
type CredentialStore interface {
	Get(ctx context.Context, username string) (*domain.CredentialRecord, error)
	Put(ctx context.Context, rec *domain.CredentialRecord) error
}

// DataLayer is the table shared with the chat frontend: user profiles,
// threads and messages under a composite PK/SK. Lookups return (nil, nil)
// when the item is absent.
type DataLayer interface {
	GetProfile(ctx context.Context, identifier string) (*domain.Profile, error)
	PutProfile(ctx context.Context, profile *domain.Profile) error

	PutThread(ctx context.Context, thread *domain.Thread) error
	GetThread(ctx context.Context, id string) (*domain.Thread, error)
	ListThreads(ctx context.Context, userIdentifier string) ([]domain.Thread, error)

	PutMessage(ctx context.Context, msg *domain.Message) error
	ListMessages(ctx context.Context, threadID string) ([]domain.Message, error)
}
