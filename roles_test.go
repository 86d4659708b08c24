package tourbase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tourbase/tourbase"
)

func TestIsValidRole(t *testing.T) {
	for _, role := range tourbase.GetAllRoles() {
		assert.True(t, tourbase.IsValidRole(role), role)
	}

	assert.False(t, tourbase.IsValidRole("superuser"))
	assert.False(t, tourbase.IsValidRole(""))
}

func TestRoleIsAtLeast(t *testing.T) {
	tests := []struct {
		name     string
		role     tourbase.UserRole
		minRole  tourbase.UserRole
		expected bool
	}{
		{"admin meets lead-guide", tourbase.RoleAdmin, tourbase.RoleLeadGuide, true},
		{"lead-guide meets guide", tourbase.RoleLeadGuide, tourbase.RoleGuide, true},
		{"user does not meet guide", tourbase.RoleUser, tourbase.RoleGuide, false},
		{"role meets itself", tourbase.RoleGuide, tourbase.RoleGuide, true},
		{"unknown role never qualifies", "superuser", tourbase.RoleUser, false},
		{"unknown minimum never matches", tourbase.RoleAdmin, "superuser", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tourbase.RoleIsAtLeast(tt.role, tt.minRole))
		})
	}
}

func TestParseRole(t *testing.T) {
	role, ok := tourbase.ParseRole("lead-guide")
	assert.True(t, ok)
	assert.Equal(t, tourbase.RoleLeadGuide, role)

	_, ok = tourbase.ParseRole("superuser")
	assert.False(t, ok)
}

func TestRoleAllowed(t *testing.T) {
	allowed := []tourbase.UserRole{tourbase.RoleAdmin, tourbase.RoleLeadGuide}

	assert.True(t, tourbase.RoleAllowed(tourbase.RoleAdmin, allowed))
	assert.True(t, tourbase.RoleAllowed(tourbase.RoleLeadGuide, allowed))
	assert.False(t, tourbase.RoleAllowed(tourbase.RoleUser, allowed))
	assert.False(t, tourbase.RoleAllowed(tourbase.RoleGuide, allowed))
	assert.False(t, tourbase.RoleAllowed(tourbase.RoleUser, nil))
}
