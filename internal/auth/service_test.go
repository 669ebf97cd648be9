package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/veritract/veritract/internal/shared"
)

type memoryKeyRepo struct {
	keys map[string]APIKey
}

func newMemoryKeyRepo() *memoryKeyRepo {
	return &memoryKeyRepo{keys: make(map[string]APIKey)}
}

func (m *memoryKeyRepo) Get(_ context.Context, id string) (*APIKey, error) {
	key, ok := m.keys[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &key, nil
}

func (m *memoryKeyRepo) Create(_ context.Context, key APIKey) error {
	m.keys[key.ID] = key
	return nil
}

func (m *memoryKeyRepo) TouchLastUsed(_ context.Context, id string, at time.Time) error {
	key := m.keys[id]
	key.LastUsedAt = at
	m.keys[id] = key
	return nil
}

func TestIssueAndAuthenticate(t *testing.T) {
	repo := newMemoryKeyRepo()
	svc := NewService(repo)

	key, token, err := svc.Issue(context.Background(), "t1", "search-service", false)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	principal, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, key.ID, principal.ID)
	require.Equal(t, "t1", principal.TenantID)
	require.False(t, principal.Superuser)
	require.False(t, repo.keys[key.ID].LastUsedAt.IsZero())
}

func TestAuthenticateRejections(t *testing.T) {
	repo := newMemoryKeyRepo()
	svc := NewService(repo)

	key, token, err := svc.Issue(context.Background(), "t1", "search-service", false)
	require.NoError(t, err)

	for _, tc := range []struct {
		name  string
		token string
	}{
		{"malformed", "not-a-token"},
		{"unknown key", "missing." + token},
		{"wrong secret", key.ID + ".wrong"},
		{"empty secret", key.ID + "."},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Authenticate(context.Background(), tc.token)
			require.ErrorIs(t, err, shared.ErrInvalidCredentials)
		})
	}

	deactivated := repo.keys[key.ID]
	deactivated.IsActive = false
	repo.keys[key.ID] = deactivated
	_, err = svc.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
