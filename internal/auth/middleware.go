package auth

import (
	"net/http"
	"strings"

	"github.com/veritract/veritract/internal/platform/httpx"
	"github.com/veritract/veritract/internal/shared"
)

// Middleware rejects requests without a valid bearer token and places the
// authenticated principal in the request context.
func Middleware(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
				return
			}
			principal, err := svc.Authenticate(r.Context(), token)
			if err != nil {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireSuperuser guards administrative endpoints.
func RequireSuperuser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := shared.PrincipalFromContext(r.Context())
		if principal == nil || !principal.Superuser {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "superuser key required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
