// Package policy owns access policies and the versioned snapshot the
// resolver evaluates against.
package policy

import (
	"time"

	"github.com/veritract/veritract/internal/shared"
)

// Effect is the outcome a policy contributes.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// AccessPolicy is one grant or deny rule keyed by (scope, resource type,
// action) within a domain. A policy is effective while it is not
// superseded; superseded policies stay on file for audit.
type AccessPolicy struct {
	ID           string
	TenantID     string
	Scope        shared.Scope
	Domain       shared.Domain
	ResourceType string
	Action       string
	Effect       Effect
	Version      int64
	Superseded   bool
	CreatedAt    time.Time
}

// Match pairs a policy with the specificity of the scope it matched
// through. Matches are ordered most specific first.
type Match struct {
	Policy        AccessPolicy
	Specificity   int
	ViaDelegation string
}
