package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bedrockchat/internal/domain"
	"bedrockchat/internal/repository"
)

// ErrPermission rejects creation of anything but the administrative
// account.
var ErrPermission = errors.New("only admin users can be created")

// AdminConfig is the intended admin identity read from process
// configuration. Either field may be empty, in which case provisioning is
// skipped.
type AdminConfig struct {
	Username string
	Password string
}

type AuthService struct {
	credentials repository.CredentialStore
	dataLayer   repository.DataLayer
	admin       AdminConfig
	logger      *slog.Logger
}

func NewAuthService(credentials repository.CredentialStore, dataLayer repository.DataLayer, admin AdminConfig, logger *slog.Logger) *AuthService {
	return &AuthService{
		credentials: credentials,
		dataLayer:   dataLayer,
		admin:       admin,
		logger:      logger,
	}
}

// EnsureAdminProvisioned creates the admin account on first startup and is
// safe to run on every startup after that. If an earlier run crashed
// between the credential write and the profile write, the missing profile
// is written on the next run.
func (s *AuthService) EnsureAdminProvisioned(ctx context.Context) error {
	if s.admin.Username == "" || s.admin.Password == "" {
		s.logger.Warn("admin credentials not configured, skipping provisioning")
		return nil
	}

	rec, err := s.credentials.Get(ctx, s.admin.Username)
	if err != nil {
		return fmt.Errorf("looking up admin credential: %w", err)
	}

	if rec == nil {
		if err := s.CreateUser(ctx, s.admin.Username, s.admin.Password, domain.RoleAdmin); err != nil {
			return fmt.Errorf("creating admin user: %w", err)
		}
		s.logger.Info("admin user created", "username", s.admin.Username)
		return nil
	}

	// The credential and profile writes are not atomic, so an existing
	// credential does not imply the profile made it in.
	profile, err := s.dataLayer.GetProfile(ctx, s.admin.Username)
	if err != nil {
		return fmt.Errorf("looking up admin profile: %w", err)
	}
	if profile == nil {
		if err := s.putProfile(ctx, s.admin.Username); err != nil {
			return fmt.Errorf("repairing admin profile: %w", err)
		}
		s.logger.Info("admin profile repaired", "username", s.admin.Username)
		return nil
	}

	s.logger.Info("admin user already exists", "username", s.admin.Username)
	return nil
}

// CreateUser writes a credential record and a directory profile. The two
// writes go to different tables and are not atomic.
func (s *AuthService) CreateUser(ctx context.Context, username, password, role string) error {
	if role != domain.RoleAdmin {
		return ErrPermission
	}

	hash, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	rec := &domain.CredentialRecord{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.credentials.Put(ctx, rec); err != nil {
		return fmt.Errorf("storing credential: %w", err)
	}

	return s.putProfile(ctx, username)
}

func (s *AuthService) putProfile(ctx context.Context, username string) error {
	profile := &domain.Profile{
		ID:         uuid.NewString(),
		Identifier: username,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		Metadata:   map[string]any{},
	}
	if err := s.dataLayer.PutProfile(ctx, profile); err != nil {
		return fmt.Errorf("storing profile: %w", err)
	}
	return nil
}

// VerifyUser checks a username/password pair. An unknown user and a wrong
// password both come back as (nil, nil); the caller cannot tell which.
func (s *AuthService) VerifyUser(ctx context.Context, username, password string) (*domain.User, error) {
	rec, err := s.credentials.Get(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("looking up credential: %w", err)
	}
	if rec == nil {
		return nil, nil
	}

	if !verifyPassword(password, rec.PasswordHash) {
		return nil, nil
	}

	return &domain.User{
		Identifier: username,
		Metadata: map[string]any{
			"role":     rec.Role,
			"provider": "credentials",
		},
	}, nil
}
