// Package kb holds knowledge-base access grants. KB grants are domain
// scoped: they never apply to contract documents, and knowledge bases are
// reachable only by automated agents.
package kb

// OrgAccess grants a knowledge base to an org subtree.
type OrgAccess struct {
	ID        string
	TenantID  string
	KBID      string
	OrgUnitID string
	CanQuery  bool
	CanManage bool
}

// UserAccess grants a knowledge base to a single user (agent owner).
type UserAccess struct {
	ID        string
	TenantID  string
	KBID      string
	UserID    string
	CanQuery  bool
	CanManage bool
}

// Actions a grant can cover.
const (
	ActionQuery  = "query"
	ActionManage = "manage"
)

// Allows reports whether the grant covers the action.
func (a OrgAccess) Allows(action string) bool {
	switch action {
	case ActionQuery:
		return a.CanQuery
	case ActionManage:
		return a.CanManage
	default:
		return false
	}
}

// Allows reports whether the grant covers the action.
func (a UserAccess) Allows(action string) bool {
	switch action {
	case ActionQuery:
		return a.CanQuery
	case ActionManage:
		return a.CanManage
	default:
		return false
	}
}
