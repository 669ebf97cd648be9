package audithttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/veritract/veritract/internal/audit"
	"github.com/veritract/veritract/internal/shared"
)

type fakeQueryService struct {
	lastFilter audit.QueryFilter
	result     audit.Result
	entries    []audit.Entry
}

func (f *fakeQueryService) Query(_ context.Context, filter audit.QueryFilter) (audit.Result, error) {
	f.lastFilter = filter
	return f.result, nil
}

func (f *fakeQueryService) Export(_ context.Context, filter audit.QueryFilter) ([]audit.Entry, error) {
	f.lastFilter = filter
	return f.entries, nil
}

func newTestRouter(service QueryService) chi.Router {
	r := chi.NewRouter()
	NewHandler(nil, service).MountRoutes(r)
	return r
}

func asPrincipal(req *http.Request, p *shared.Principal) *http.Request {
	return req.WithContext(shared.ContextWithPrincipal(req.Context(), p))
}

func TestQueryScopesNonSuperuserToTenant(t *testing.T) {
	service := &fakeQueryService{}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/audit?actor_id=alice&decision=deny", nil)
	req = asPrincipal(req, &shared.Principal{ID: "key-1", TenantID: "t1"})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "t1", service.lastFilter.TenantID)
	require.Equal(t, "alice", service.lastFilter.ActorID)
	require.Equal(t, "deny", service.lastFilter.Decision)
}

func TestQuerySuperuserSeesAllTenants(t *testing.T) {
	service := &fakeQueryService{}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/audit", nil)
	req = asPrincipal(req, &shared.Principal{ID: "key-root", TenantID: "t1", Superuser: true})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Empty(t, service.lastFilter.TenantID)
}

func TestQueryRejectsOversizedRange(t *testing.T) {
	router := newTestRouter(&fakeQueryService{})

	req := httptest.NewRequest(http.MethodGet,
		"/audit?from=2026-01-01T00:00:00Z&to=2026-06-01T00:00:00Z", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestExportWritesCSVAttachment(t *testing.T) {
	service := &fakeQueryService{entries: []audit.Entry{{
		ID: "e1", TenantID: "t1", ActorID: "alice",
		Domain: shared.DomainContracts, ResourceType: "contract", ResourceID: "c1",
		Action: "read", Decision: "deny", Reason: "no_grant",
		SnapshotVersion: 9, At: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
	}}}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/audit/export.csv", nil)
	req = asPrincipal(req, &shared.Principal{ID: "key-1", TenantID: "t1"})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	require.Contains(t, rr.Header().Get("Content-Disposition"), "attachment")

	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "matched_policy_id")
	require.Contains(t, lines[1], "no_grant")
}
