package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bedrockchat/internal/domain"
)

func newTestAuthService(admin AdminConfig) (*AuthService, *fakeCredentialStore, *fakeDataLayer) {
	creds := newFakeCredentialStore()
	data := newFakeDataLayer()
	return NewAuthService(creds, data, admin, testLogger()), creds, data
}

func TestEnsureAdminProvisioned_CreatesAdmin(t *testing.T) {
	svc, creds, data := newTestAuthService(AdminConfig{Username: "alice", Password: "secret123"})

	require.NoError(t, svc.EnsureAdminProvisioned(context.Background()))

	rec, err := creds.Get(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, domain.RoleAdmin, rec.Role)
	assert.NotEmpty(t, rec.CreatedAt)
	assert.NotEqual(t, "secret123", rec.PasswordHash)

	profile, err := data.GetProfile(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "alice", profile.Identifier)
	assert.NotEmpty(t, profile.ID)
	assert.Empty(t, profile.Metadata)

	user, err := svc.VerifyUser(context.Background(), "alice", "secret123")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Identifier)
	assert.Equal(t, map[string]any{"role": "admin", "provider": "credentials"}, user.Metadata)

	user, err = svc.VerifyUser(context.Background(), "alice", "wrong")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestEnsureAdminProvisioned_Idempotent(t *testing.T) {
	svc, creds, data := newTestAuthService(AdminConfig{Username: "alice", Password: "secret123"})

	require.NoError(t, svc.EnsureAdminProvisioned(context.Background()))
	require.NoError(t, svc.EnsureAdminProvisioned(context.Background()))

	assert.Equal(t, 1, creds.puts)
	assert.Equal(t, 1, data.profilePuts)
	assert.Len(t, creds.records, 1)
	assert.Len(t, data.profiles, 1)
}

func TestEnsureAdminProvisioned_MissingConfig(t *testing.T) {
	tests := []struct {
		name  string
		admin AdminConfig
	}{
		{"no username", AdminConfig{Password: "secret123"}},
		{"no password", AdminConfig{Username: "alice"}},
		{"nothing", AdminConfig{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, creds, data := newTestAuthService(tt.admin)

			require.NoError(t, svc.EnsureAdminProvisioned(context.Background()))

			assert.Zero(t, creds.puts)
			assert.Zero(t, data.profilePuts)
		})
	}
}

func TestEnsureAdminProvisioned_RepairsMissingProfile(t *testing.T) {
	svc, creds, data := newTestAuthService(AdminConfig{Username: "alice", Password: "secret123"})

	// Simulate a crash between the credential write and the profile write.
	hash, err := hashPassword("secret123")
	require.NoError(t, err)
	require.NoError(t, creds.Put(context.Background(), &domain.CredentialRecord{
		Username:     "alice",
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    "2024-01-01T00:00:00Z",
	}))

	require.NoError(t, svc.EnsureAdminProvisioned(context.Background()))

	profile, err := data.GetProfile(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, 1, creds.puts, "credential must not be rewritten")
}

func TestCreateUser_RejectsNonAdmin(t *testing.T) {
	svc, creds, data := newTestAuthService(AdminConfig{})

	err := svc.CreateUser(context.Background(), "bob", "password1", domain.RoleUser)
	require.ErrorIs(t, err, ErrPermission)

	assert.Zero(t, creds.puts, "no credential write on permission failure")
	assert.Zero(t, data.profilePuts, "no profile write on permission failure")
}

func TestVerifyUser_UnknownAndWrongAreIndistinguishable(t *testing.T) {
	svc, _, _ := newTestAuthService(AdminConfig{Username: "alice", Password: "secret123"})
	require.NoError(t, svc.EnsureAdminProvisioned(context.Background()))

	unknown, err := svc.VerifyUser(context.Background(), "mallory", "secret123")
	require.NoError(t, err)

	wrong, err := svc.VerifyUser(context.Background(), "alice", "hunter2")
	require.NoError(t, err)

	assert.Nil(t, unknown)
	assert.Nil(t, wrong)
	assert.Equal(t, unknown, wrong)
}

func TestVerifyUser_LegacySHA256Record(t *testing.T) {
	svc, creds, _ := newTestAuthService(AdminConfig{})

	// Record migrated from the old deployment: bare sha-256 hex digest.
	require.NoError(t, creds.Put(context.Background(), &domain.CredentialRecord{
		Username:     "alice",
		PasswordHash: sha256Hex("secret123"),
		Role:         domain.RoleAdmin,
		CreatedAt:    "2023-06-01T00:00:00Z",
	}))

	user, err := svc.VerifyUser(context.Background(), "alice", "secret123")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "admin", user.Metadata["role"])

	user, err = svc.VerifyUser(context.Background(), "alice", "secret124")
	require.NoError(t, err)
	assert.Nil(t, user)
}
