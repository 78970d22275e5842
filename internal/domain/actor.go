package domain

// Role is a compiled-in actor role. The catalogue is closed on purpose:
// auditing a static table is easier than auditing dynamic grants.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleViewer    Role = "viewer"
)

// ParseRole validates a role string from a credential table or token.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleModerator, RoleViewer:
		return Role(s), nil
	}
	return "", NewDomainError("unknown role")
}

// Permission is a fine-grained capability on the moderation surface.
type Permission string

const (
	PermViewQueue Permission = "view-queue"
	PermModerate  Permission = "moderate"
	PermReadAudit Permission = "read-audit"
)

// rolePermissions is the static role -> permission table. No dynamic
// registration.
var rolePermissions = map[Role][]Permission{
	RoleAdmin:     {PermViewQueue, PermModerate, PermReadAudit},
	RoleModerator: {PermViewQueue, PermModerate},
	RoleViewer:    {PermViewQueue},
}

// Actor is the authenticated identity performing a moderation action.
// Actors exist only for the lifetime of a verified session token and are
// never persisted.
type Actor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Roles       []Role `json:"roles"`
}

// HasPermission reports whether any of the actor's roles grants the
// permission. Pure function of (roles, permission).
func (a *Actor) HasPermission(perm Permission) bool {
	if a == nil {
		return false
	}
	for _, role := range a.Roles {
		for _, p := range rolePermissions[role] {
			if p == perm {
				return true
			}
		}
	}
	return false
}

// RequirePermission is the fail-closed variant of HasPermission.
func RequirePermission(actor *Actor, perm Permission) error {
	if !actor.HasPermission(perm) {
		return ErrForbidden
	}
	return nil
}

// RoleStrings converts roles for storage and logging.
func RoleStrings(roles []Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}
