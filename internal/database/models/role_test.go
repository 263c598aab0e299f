package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoleHasCapability(t *testing.T) {
	t.Run("every fixed capability is grantable by its flag", func(t *testing.T) {
		role := &Role{
			CanManageUsers:    true,
			CanManageRoles:    true,
			CanManageClients:  true,
			CanManageProjects: true,
			CanManageInvoices: true,
			CanManageExpenses: true,
			CanManageSettings: true,
			CanManageLeads:    true,
			CanViewReports:    true,
			CanExportData:     true,
		}

		for _, capability := range []string{
			CapabilityManageUsers,
			CapabilityManageRoles,
			CapabilityManageClients,
			CapabilityManageProjects,
			CapabilityManageInvoices,
			CapabilityManageExpenses,
			CapabilityManageSettings,
			CapabilityManageLeads,
			CapabilityViewReports,
			CapabilityExportData,
		} {
			assert.True(t, role.HasCapability(capability), "capability %q is not grantable by any flag", capability)
		}
	})

	t.Run("unset flags deny", func(t *testing.T) {
		role := &Role{CanManageClients: true}

		assert.True(t, role.HasCapability(CapabilityManageClients))
		assert.False(t, role.HasCapability(CapabilityManageInvoices))
		assert.False(t, role.HasCapability(CapabilityManageExpenses))
		assert.False(t, role.HasCapability(CapabilityManageProjects))
	})

	t.Run("unknown capability denies", func(t *testing.T) {
		role := &Role{CanManageUsers: true}

		assert.False(t, role.HasCapability("manage_everything"))
	})
}

func TestUserRoleExpired(t *testing.T) {
	now := time.Now()

	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.False(t, (&UserRole{}).Expired(now))
	assert.False(t, (&UserRole{ExpiresAt: &future}).Expired(now))
	assert.True(t, (&UserRole{ExpiresAt: &past}).Expired(now))
	assert.True(t, (&UserRole{ExpiresAt: &now}).Expired(now))
}
