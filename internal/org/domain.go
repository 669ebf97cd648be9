// Package org holds the organizational data the resolver consumes:
// tenants, the org-unit forest, positions, and actors. The resolver is a
// read-only consumer; administrative collaborators own the writes.
package org

import (
	"time"

	"github.com/veritract/veritract/internal/shared"
)

// Tenant is the isolation boundary. No entity is visible across tenants.
type Tenant struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Unit is one node in the per-tenant org forest. Path is the materialized
// ancestor chain, root first, segments separated by '/'.
type Unit struct {
	ID       string
	TenantID string
	ParentID string
	Name     string
	Path     string
}

// Position is a role seat within a unit. UserID is empty while vacant.
type Position struct {
	ID        string
	TenantID  string
	OrgUnitID string
	UserID    string
	RoleCode  string
}

// Actor is a requesting identity: a user acting within positions, or an
// automated agent. Clearance names a security level; roles are ordered by
// assignment.
type Actor struct {
	ID        string
	TenantID  string
	Kind      shared.ActorKind
	Clearance string
	Roles     []string
	Superuser bool
}
