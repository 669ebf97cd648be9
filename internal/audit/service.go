package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service serves compliance reads over the access log. It never mutates;
// deletion after retention expiry belongs to the retention sweep alone.
type Service struct {
	pool *pgxpool.Pool
}

// NewService constructs the audit query service.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// Query returns one page of audit entries matching the filter, newest
// first.
func (s *Service) Query(ctx context.Context, filter QueryFilter) (Result, error) {
	if s == nil || s.pool == nil {
		return Result{}, fmt.Errorf("audit: service not configured")
	}
	paging := filter.Pagination.Normalize()
	where, args := buildFilter(filter)
	query := fmt.Sprintf(`
		SELECT id, tenant_id, actor_id, domain, resource_type, resource_id,
		       action, decision, COALESCE(reason, ''), COALESCE(matched_policy_id, ''), COALESCE(via_delegation, ''), snapshot_version, at
		FROM access_logs
		%s
		ORDER BY at DESC, id DESC
		OFFSET $%d LIMIT $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, paging.Offset(), paging.PageSize+1)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return Result{}, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.TenantID, &e.ActorID, &e.Domain, &e.ResourceType, &e.ResourceID,
			&e.Action, &e.Decision, &e.Reason, &e.MatchedPolicyID, &e.ViaDelegation, &e.SnapshotVersion, &e.At,
		); err != nil {
			return Result{}, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return Result{}, err
	}

	hasNext := len(entries) > paging.PageSize
	if hasNext {
		entries = entries[:paging.PageSize]
	}
	info := PagingInfo{Page: paging.Page, PageSize: paging.PageSize, HasNext: hasNext}
	if paging.Page > 1 {
		info.PrevPage = paging.Page - 1
	}
	if hasNext {
		info.NextPage = paging.Page + 1
	}
	return Result{Entries: entries, Paging: info}, nil
}

// Export returns every entry matching the filter without paging, for the
// CSV compliance export.
func (s *Service) Export(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	where, args := buildFilter(filter)
	query := fmt.Sprintf(`
		SELECT id, tenant_id, actor_id, domain, resource_type, resource_id,
		       action, decision, COALESCE(reason, ''), COALESCE(matched_policy_id, ''), COALESCE(via_delegation, ''), snapshot_version, at
		FROM access_logs
		%s
		ORDER BY at DESC, id DESC
	`, where)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.TenantID, &e.ActorID, &e.Domain, &e.ResourceType, &e.ResourceID,
			&e.Action, &e.Decision, &e.Reason, &e.MatchedPolicyID, &e.ViaDelegation, &e.SnapshotVersion, &e.At,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteExpired removes records past the retention cutoff. Only the
// retention sweep calls this.
func (s *Service) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM access_logs WHERE at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func buildFilter(filter QueryFilter) (string, []any) {
	var clauses []string
	var args []any
	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}
	if filter.TenantID != "" {
		add("tenant_id = $%d", filter.TenantID)
	}
	if filter.ActorID != "" {
		add("actor_id = $%d", filter.ActorID)
	}
	if filter.ResourceID != "" {
		add("resource_id = $%d", filter.ResourceID)
	}
	if filter.Domain != "" {
		add("domain = $%d", filter.Domain)
	}
	if filter.Decision != "" {
		add("decision = $%d", filter.Decision)
	}
	if !filter.From.IsZero() {
		add("at >= $%d", toPgTime(filter.From))
	}
	if !filter.To.IsZero() {
		add("at <= $%d", toPgTime(filter.To))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func toPgTime(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
