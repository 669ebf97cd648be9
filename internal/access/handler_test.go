package access

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/veritract/veritract/internal/shared"
)

func newTestServer(t *testing.T, resolver *Resolver) chi.Router {
	t.Helper()
	r := chi.NewRouter()
	NewHandler(resolver, nil).MountRoutes(r)
	return r
}

func TestHandleCheckReturnsDecision(t *testing.T) {
	resolver, _ := newTestResolver(t, baseData())
	router := newTestServer(t, resolver)

	body := `{"actor_id":"alice","tenant_id":"t1","domain":"contracts","resource":{"type":"contract","id":"c-conf"},"action":"read"}`
	req := httptest.NewRequest(http.MethodPost, "/access/check", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"decision":"allow"`)
	require.Contains(t, rr.Body.String(), "pol-div-a-read")
}

func TestHandleCheckValidatesBody(t *testing.T) {
	resolver, _ := newTestResolver(t, baseData())
	router := newTestServer(t, resolver)

	body := `{"actor_id":"alice","domain":"payroll","action":"read"}`
	req := httptest.NewRequest(http.MethodPost, "/access/check", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleCheckReportsAuditOutage(t *testing.T) {
	resolver, rec := newTestResolver(t, baseData())
	rec.err = shared.ErrAuditUnavailable
	router := newTestServer(t, resolver)

	body := `{"actor_id":"alice","tenant_id":"t1","domain":"contracts","resource":{"type":"contract","id":"c-conf"},"action":"read"}`
	req := httptest.NewRequest(http.MethodPost, "/access/check", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.NotContains(t, rr.Body.String(), `"decision"`)
}

func TestHandleFilterReturnsAllowedSubset(t *testing.T) {
	resolver, _ := newTestResolver(t, baseData())
	router := newTestServer(t, resolver)

	body := `{"actor_id":"alice","tenant_id":"t1","domain":"contracts","action":"read",
		"resources":[{"type":"contract","id":"c-conf"},{"type":"contract","id":"c-secret"}]}`
	req := httptest.NewRequest(http.MethodPost, "/access/filter", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "c-conf")
	require.NotContains(t, rr.Body.String(), "c-secret")
}
