package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActor_HasPermission(t *testing.T) {
	tests := []struct {
		role     Role
		perm     Permission
		expected bool
	}{
		{RoleViewer, PermViewQueue, true},
		{RoleViewer, PermModerate, false},
		{RoleViewer, PermReadAudit, false},
		{RoleModerator, PermViewQueue, true},
		{RoleModerator, PermModerate, true},
		{RoleModerator, PermReadAudit, false},
		{RoleAdmin, PermViewQueue, true},
		{RoleAdmin, PermModerate, true},
		{RoleAdmin, PermReadAudit, true},
	}

	for _, tt := range tests {
		actor := &Actor{ID: "a", Roles: []Role{tt.role}}
		assert.Equal(t, tt.expected, actor.HasPermission(tt.perm),
			"role %s permission %s", tt.role, tt.perm)
	}
}

// Adding a role can only widen what an actor may do.
func TestActor_AddingRoleNeverRemovesPermission(t *testing.T) {
	perms := []Permission{PermViewQueue, PermModerate, PermReadAudit}
	roles := []Role{RoleViewer, RoleModerator, RoleAdmin}

	for _, base := range roles {
		for _, extra := range roles {
			single := &Actor{ID: "a", Roles: []Role{base}}
			combined := &Actor{ID: "a", Roles: []Role{base, extra}}
			for _, perm := range perms {
				if single.HasPermission(perm) {
					assert.True(t, combined.HasPermission(perm),
						"adding %s to %s dropped %s", extra, base, perm)
				}
			}
		}
	}
}

func TestActor_NilAndUnknown(t *testing.T) {
	var nobody *Actor
	assert.False(t, nobody.HasPermission(PermViewQueue))
	assert.ErrorIs(t, RequirePermission(nil, PermModerate), ErrForbidden)

	stranger := &Actor{ID: "x", Roles: []Role{Role("superuser")}}
	assert.False(t, stranger.HasPermission(PermViewQueue))
}

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"admin", "moderator", "viewer"} {
		role, err := ParseRole(valid)
		assert.NoError(t, err)
		assert.Equal(t, Role(valid), role)
	}
	_, err := ParseRole("root")
	assert.Error(t, err)
}
