// Package contracts holds the visibility attributes the resolver reads off
// contract documents: the security classification and explicit per-document
// grant overrides. Contract CRUD itself lives outside this service.
package contracts

import "time"

// Visibility is the per-document classification plus explicit grants. A
// contract always carries exactly one current security level.
type Visibility struct {
	ContractID     string
	TenantID       string
	OrgUnitID      string
	SecurityLevel  string
	ExplicitGrants []ExplicitGrant
	UpdatedAt      time.Time
}

// ExplicitGrant is an additive per-document allow for a single user and
// action. Grants are additive only: they bypass the policy requirement, but
// never lower the clearance the classification demands.
type ExplicitGrant struct {
	UserID string
	Action string
}

// GrantedTo reports whether an explicit grant covers the user and action.
func (v Visibility) GrantedTo(userID, action string) bool {
	for _, g := range v.ExplicitGrants {
		if g.UserID == userID && g.Action == action {
			return true
		}
	}
	return false
}
