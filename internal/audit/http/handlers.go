// Package audithttp exposes the compliance read API over the access log.
package audithttp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/veritract/veritract/internal/audit"
	"github.com/veritract/veritract/internal/platform/httpx"
	"github.com/veritract/veritract/internal/shared"
)

const maxDateRange = 90 * 24 * time.Hour

// QueryService defines the read contract over the access log.
type QueryService interface {
	Query(ctx context.Context, filter audit.QueryFilter) (audit.Result, error)
	Export(ctx context.Context, filter audit.QueryFilter) ([]audit.Entry, error)
}

// Handler serves audit queries and the CSV export.
type Handler struct {
	logger  *slog.Logger
	service QueryService
	now     func() time.Time
}

// NewHandler constructs the audit HTTP handler.
func NewHandler(logger *slog.Logger, service QueryService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, now: time.Now}
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", err.Error())
		return
	}
	result, err := h.service.Query(r.Context(), filter)
	if err != nil {
		h.logger.Error("audit query", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", err.Error())
		return
	}
	entries, err := h.service.Export(r.Context(), filter)
	if err != nil {
		h.logger.Error("audit export", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	data, err := audit.WriteCSV(entries)
	if err != nil {
		h.logger.Error("audit export csv", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	filename := fmt.Sprintf("access-log-%s.csv", h.now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(data)
}

func (h *Handler) parseFilter(r *http.Request) (audit.QueryFilter, error) {
	q := r.URL.Query()
	filter := audit.QueryFilter{
		ActorID:    strings.TrimSpace(q.Get("actor_id")),
		ResourceID: strings.TrimSpace(q.Get("resource_id")),
		Domain:     strings.TrimSpace(q.Get("domain")),
		Decision:   strings.TrimSpace(q.Get("decision")),
	}
	if principal := shared.PrincipalFromContext(r.Context()); principal != nil && !principal.Superuser {
		filter.TenantID = principal.TenantID
	}
	if raw := q.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return audit.QueryFilter{}, fmt.Errorf("invalid from: %v", err)
		}
		filter.From = from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return audit.QueryFilter{}, fmt.Errorf("invalid to: %v", err)
		}
		filter.To = to
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Sub(filter.From) > maxDateRange {
		return audit.QueryFilter{}, fmt.Errorf("range exceeds %s", maxDateRange)
	}
	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return audit.QueryFilter{}, fmt.Errorf("invalid page: %v", err)
		}
		filter.Pagination.Page = page
	}
	if raw := q.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return audit.QueryFilter{}, fmt.Errorf("invalid page_size: %v", err)
		}
		filter.Pagination.PageSize = size
	}
	return filter, nil
}
