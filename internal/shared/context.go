package shared

import "context"

// Principal is the authenticated caller of the administrative or
// evaluation APIs (a request-handling collaborator, not the actor being
// evaluated).
type Principal struct {
	ID        string
	TenantID  string
	Name      string
	Superuser bool
}

type principalContextKey struct{}

// ContextWithPrincipal stores the authenticated principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
