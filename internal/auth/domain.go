// Package auth authenticates the request-handling collaborators calling the
// evaluation and administrative APIs. Callers hold API keys; a verified key
// becomes a shared.Principal in the request context.
package auth

import "time"

// APIKey is one issued credential. Only the bcrypt hash of the secret is
// stored; the plaintext is shown once at issue time.
type APIKey struct {
	ID         string
	TenantID   string
	Name       string
	SecretHash string
	Superuser  bool
	IsActive   bool
	CreatedAt  time.Time
	LastUsedAt time.Time
}
