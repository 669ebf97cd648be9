package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/veritract/veritract/internal/shared"
)

// Service wraps API key verification and issuance.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate verifies a bearer token of the form "<key_id>.<secret>" and
// returns the principal it identifies. Every failure collapses to
// ErrInvalidCredentials so callers cannot probe for key existence.
func (s *Service) Authenticate(ctx context.Context, token string) (*shared.Principal, error) {
	id, secret, ok := strings.Cut(token, ".")
	if !ok || id == "" || secret == "" {
		return nil, shared.ErrInvalidCredentials
	}
	key, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !key.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(key.SecretHash), []byte(secret)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	_ = s.repo.TouchLastUsed(ctx, key.ID, time.Now().UTC())
	return &shared.Principal{
		ID:        key.ID,
		TenantID:  key.TenantID,
		Name:      key.Name,
		Superuser: key.Superuser,
	}, nil
}

// Issue creates a key and returns it with the one-time plaintext token.
func (s *Service) Issue(ctx context.Context, tenantID, name string, superuser bool) (*APIKey, string, error) {
	secret := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	key := APIKey{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		Name:       name,
		SecretHash: string(hash),
		Superuser:  superuser,
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, key); err != nil {
		return nil, "", err
	}
	return &key, key.ID + "." + secret, nil
}
