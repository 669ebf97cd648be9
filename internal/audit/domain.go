// Package audit owns the append-only access log. Records are written once
// per evaluation, never updated, and only the retention sweep may delete
// them after the configured multi-year period.
package audit

import (
	"time"

	"github.com/veritract/veritract/internal/shared"
)

// Entry is one immutable audit record for one evaluation.
type Entry struct {
	ID              string        `json:"id"`
	TenantID        string        `json:"tenant_id"`
	ActorID         string        `json:"actor_id"`
	Domain          shared.Domain `json:"domain"`
	ResourceType    string        `json:"resource_type"`
	ResourceID      string        `json:"resource_id"`
	Action          string        `json:"action"`
	Decision        string        `json:"decision"`
	Reason          string        `json:"reason,omitempty"`
	MatchedPolicyID string        `json:"matched_policy_id,omitempty"`
	ViaDelegation   string        `json:"via_delegation,omitempty"`
	SnapshotVersion int64         `json:"snapshot_version"`
	At              time.Time     `json:"at"`
}

// QueryFilter narrows compliance reads over the log.
type QueryFilter struct {
	TenantID   string
	ActorID    string
	ResourceID string
	Domain     string
	Decision   string
	From       time.Time
	To         time.Time
	Pagination shared.Pagination
}

// Result wraps one page of entries.
type Result struct {
	Entries []Entry
	Paging  PagingInfo
}

// PagingInfo reports the page window and whether more rows follow.
type PagingInfo struct {
	Page     int
	PageSize int
	HasNext  bool
	PrevPage int
	NextPage int
}
