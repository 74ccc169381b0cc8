// roles.go maps identity-provider role claims to the single application role
// and defines the restrictions each role carries.
package auth

import "time"

// Role is the application role governing query restrictions and action
// authorization. Every request resolves to exactly one role.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDeveloper Role = "developer"
	RoleViewer    Role = "viewer"
)

// ViewerWindow is how far back a viewer may see log records, measured from
// the moment the query is composed.
const ViewerWindow = 3 * time.Hour

// RoleFromClaims derives the application role from the identity provider's
// realm role claims by first-match precedence: admin wins over developer,
// and anything else (including an empty or unrecognized set) is a viewer.
// Admin and developer both subsume viewer capability, so the order here must
// not be rearranged.
func RoleFromClaims(claims []string) Role {
	set := make(map[string]bool, len(claims))
	for _, c := range claims {
		set[c] = true
	}

	switch {
	case set[string(RoleAdmin)]:
		return RoleAdmin
	case set[string(RoleDeveloper)]:
		return RoleDeveloper
	default:
		return RoleViewer
	}
}

// RestrictedLevels returns the log levels the role is limited to, or nil when
// the role may see every level. The returned clause is mandatory: the query
// composer ANDs it with whatever the caller asked for, so a viewer requesting
// level=ERROR simply matches nothing.
func (r Role) RestrictedLevels() []string {
	if r == RoleViewer {
		return []string{"INFO", "WARN"}
	}
	return nil
}

// LookbackWindow returns the maximum age of visible records for the role, or
// zero when the role has unrestricted history.
func (r Role) LookbackWindow() time.Duration {
	if r == RoleViewer {
		return ViewerWindow
	}
	return 0
}

// CanExport reports whether the role may bulk-extract log data. Viewers can
// browse their restricted slice but never download it.
func (r Role) CanExport() bool {
	return r == RoleAdmin || r == RoleDeveloper
}

// CanManage reports whether the identity may mutate a resource owned by
// owner: admins may act on anything, everyone else only on their own records.
func (i *Identity) CanManage(owner string) bool {
	return i.Role() == RoleAdmin || i.Username == owner
}
