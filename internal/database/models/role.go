package models

import (
	"time"

	"github.com/google/uuid"
)

// Capability names accepted by the access evaluator. Each maps to a fixed
// boolean flag on Role; anything else is looked up in the custom-permission map.
const (
	CapabilityManageUsers    = "manage_users"
	CapabilityManageRoles    = "manage_roles"
	CapabilityManageClients  = "manage_clients"
	CapabilityManageProjects = "manage_projects"
	CapabilityManageInvoices = "manage_invoices"
	CapabilityManageExpenses = "manage_expenses"
	CapabilityManageSettings = "manage_settings"
	CapabilityManageLeads    = "manage_leads"
	CapabilityViewReports    = "view_reports"
	CapabilityExportData     = "export_data"
)

// Role defines a named permission set within a tenant. Names are unique per
// tenant, case-insensitively; the backing index on (tenant_id, LOWER(name))
// is created during database initialization since gorm tags cannot express
// functional indexes.
type Role struct {
	BaseModel
	TenantID    uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;index" validate:"required"`
	Name        string    `json:"name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Description string    `json:"description,omitempty" gorm:"type:text"`

	// Fixed capability flags
	CanManageUsers    bool `json:"can_manage_users" gorm:"not null;default:false"`
	CanManageRoles    bool `json:"can_manage_roles" gorm:"not null;default:false"`
	CanManageClients  bool `json:"can_manage_clients" gorm:"not null;default:false"`
	CanManageProjects bool `json:"can_manage_projects" gorm:"not null;default:false"`
	CanManageInvoices bool `json:"can_manage_invoices" gorm:"not null;default:false"`
	CanManageExpenses bool `json:"can_manage_expenses" gorm:"not null;default:false"`
	CanManageSettings bool `json:"can_manage_settings" gorm:"not null;default:false"`

	// CRM extensions beyond the fixed set
	CanManageLeads bool `json:"can_manage_leads" gorm:"not null;default:false"`
	CanViewReports bool `json:"can_view_reports" gorm:"not null;default:false"`
	CanExportData  bool `json:"can_export_data" gorm:"not null;default:false"`

	// Open extension beyond the fixed flags
	CustomPermissions JSONMap `json:"custom_permissions" gorm:"type:jsonb"`

	Tenant    *Tenant    `json:"-" gorm:"foreignKey:TenantID"`
	UserRoles []UserRole `json:"-" gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for Role
func (Role) TableName() string {
	return "roles"
}

// HasCapability reports whether the role grants one of the fixed flags
func (r *Role) HasCapability(capability string) bool {
	switch capability {
	case CapabilityManageUsers:
		return r.CanManageUsers
	case CapabilityManageRoles:
		return r.CanManageRoles
	case CapabilityManageClients:
		return r.CanManageClients
	case CapabilityManageProjects:
		return r.CanManageProjects
	case CapabilityManageInvoices:
		return r.CanManageInvoices
	case CapabilityManageExpenses:
		return r.CanManageExpenses
	case CapabilityManageLeads:
		return r.CanManageLeads
	case CapabilityViewReports:
		return r.CanViewReports
	case CapabilityExportData:
		return r.CanExportData
	case CapabilityManageSettings:
		return r.CanManageSettings
	}
	return false
}

// UserRole binds a user to a role with its own lifecycle. At most one binding
// exists per (user, role) pair; assignment is an upsert on that key. A binding
// whose ExpiresAt has passed is treated as inactive regardless of IsActive.
type UserRole struct {
	BaseModel
	UserID       uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_roles_user_role" validate:"required"`
	RoleID       uuid.UUID  `json:"role_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_roles_user_role" validate:"required"`
	AssignedByID *uuid.UUID `json:"assigned_by_id,omitempty" gorm:"type:uuid"`
	AssignedAt   time.Time  `json:"assigned_at" gorm:"not null"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	IsActive     bool       `json:"is_active" gorm:"not null;default:true"`

	User       *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Role       *Role `json:"role,omitempty" gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
	AssignedBy *User `json:"-" gorm:"foreignKey:AssignedByID;constraint:OnDelete:SET NULL"`
}

// TableName returns the table name for UserRole
func (UserRole) TableName() string {
	return "user_roles"
}

// Expired reports whether the binding's expiry has passed at the given instant
func (ur *UserRole) Expired(now time.Time) bool {
	return ur.ExpiresAt != nil && !ur.ExpiresAt.After(now)
}
