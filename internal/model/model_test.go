package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole("  Admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	r, err = ParseRole("user")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, r)

	for _, bad := range []string{"", "superuser", "ADMINISTRATOR", "root"} {
		_, err := ParseRole(bad)
		assert.Error(t, err, "role %q must be rejected", bad)
	}
}

func TestRoleCapabilities(t *testing.T) {
	assert.True(t, RoleAdmin.Has(CapManageUsers))
	assert.False(t, RoleUser.Has(CapManageUsers))
	assert.False(t, Role("superuser").Has(CapManageUsers))
	assert.False(t, RoleAdmin.Has(Capability("unknown")))
}

func TestParsePlan(t *testing.T) {
	p, err := ParsePlan("")
	require.NoError(t, err)
	assert.Equal(t, PlanFree, p)

	p, err = ParsePlan(" Premium ")
	require.NoError(t, err)
	assert.Equal(t, PlanPremium, p)

	_, err = ParsePlan("enterprise")
	assert.Error(t, err)
}

func TestPlanTokenLimits(t *testing.T) {
	assert.Equal(t, uint64(10_000), PlanFree.TokenLimit())
	assert.Equal(t, uint64(100_000), PlanPremium.TokenLimit())
}
