package shared

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SuperuserRole is the fixed sentinel shown for superusers regardless of
// their assigned role codes.
const SuperuserRole = "Superuser"

var titleCaser = cases.Title(language.English)

// DisplayRole derives a single human-facing role label from an ordered list
// of role codes. It is presentation-layer convenience only and must never
// feed the access-decision path: the enforced scope is whatever the policy
// snapshot says, not this label.
func DisplayRole(superuser bool, roleCodes []string) string {
	if superuser {
		return SuperuserRole
	}
	for _, code := range roleCodes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		return titleCaser.String(strings.ReplaceAll(code, "_", " "))
	}
	return ""
}
