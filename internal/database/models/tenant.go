package models

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus represents the billing state of a tenant
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPastDue   SubscriptionStatus = "past_due"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusTrialing  SubscriptionStatus = "trialing"
)

// Tenant represents an isolated organization account, the unit of data partitioning.
// Every scoped entity (users, roles, clients, leads) hangs off a tenant and is
// removed with it.
type Tenant struct {
	BaseModel
	Name     string `json:"name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Slug     string `json:"slug" gorm:"uniqueIndex;not null;size:100" validate:"required,min=1,max=100"`
	IsActive bool   `json:"is_active" gorm:"not null;default:true"`

	// Contact information
	Email   string `json:"email" gorm:"not null;size:255" validate:"required,email,max=255"`
	Phone   string `json:"phone,omitempty" gorm:"size:20"`
	Address string `json:"address,omitempty" gorm:"type:text"`

	// Branding
	PrimaryColor   string `json:"primary_color,omitempty" gorm:"size:7"`
	SecondaryColor string `json:"secondary_color,omitempty" gorm:"size:7"`

	// Localization
	Timezone   string `json:"timezone" gorm:"size:50;not null;default:'UTC'"`
	Language   string `json:"language" gorm:"size:10;not null;default:'en'"`
	Currency   string `json:"currency" gorm:"size:3;not null;default:'USD'"`
	DateFormat string `json:"date_format" gorm:"size:20;not null;default:'Y-m-d'"`

	// Subscription and resource limits
	SubscriptionPlan    string             `json:"subscription_plan" gorm:"size:50;not null;default:'free'"`
	SubscriptionStatus  SubscriptionStatus `json:"subscription_status" gorm:"type:varchar(20);not null;default:'active'"`
	SubscriptionEndDate *time.Time         `json:"subscription_end_date,omitempty"`
	MaxUsers            int                `json:"max_users" gorm:"not null;default:5"`
	MaxStorage          int64              `json:"max_storage" gorm:"not null;default:5368709120"` // 5GB in bytes

	// Billing gateway references, maintained by the billing sync step of the
	// tenant service (never written by handlers directly)
	StripeCustomerID     string `json:"-" gorm:"size:100"`
	StripeSubscriptionID string `json:"-" gorm:"size:100"`

	// Relationships
	Domains  []Domain        `json:"domains,omitempty" gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
	Settings *TenantSettings `json:"settings,omitempty" gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
	Users    []User          `json:"users,omitempty" gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
	Roles    []Role          `json:"roles,omitempty" gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
	Clients  []Client        `json:"clients,omitempty" gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
	Leads    []Lead          `json:"leads,omitempty" gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for Tenant
func (Tenant) TableName() string {
	return "tenants"
}

// DomainVerificationMethod is how ownership of a domain is proven
type DomainVerificationMethod string

const (
	DomainVerificationDNS  DomainVerificationMethod = "dns"
	DomainVerificationFile DomainVerificationMethod = "file"
)

// Domain is a hostname attached to a tenant. At most one domain per tenant
// carries IsPrimary, and a tenant with at least one domain always has exactly
// one primary. The flag is only ever written by the tenant service's
// transactional operations, never set directly by callers.
type Domain struct {
	BaseModel
	TenantID uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;index" validate:"required"`
	Domain   string    `json:"domain" gorm:"uniqueIndex;not null;size:253" validate:"required,fqdn,max=253"`

	IsPrimary bool `json:"is_primary" gorm:"not null;default:false"`

	Verified           bool                     `json:"verified" gorm:"not null;default:false"`
	VerificationMethod DomainVerificationMethod `json:"verification_method" gorm:"type:varchar(20);not null;default:'dns'"`
	VerificationToken  string                   `json:"-" gorm:"size:255"`

	Tenant *Tenant `json:"-" gorm:"foreignKey:TenantID"`
}

// TableName returns the table name for Domain
func (Domain) TableName() string {
	return "domains"
}

// TenantSettings holds per-tenant settings that change more often than the
// tenant record itself. Created together with the tenant, one-to-one.
type TenantSettings struct {
	BaseModel
	TenantID uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex" validate:"required"`

	// Feature flags
	EnableProjects      bool `json:"enable_projects" gorm:"not null;default:true"`
	EnableTasks         bool `json:"enable_tasks" gorm:"not null;default:true"`
	EnableInvoicing     bool `json:"enable_invoicing" gorm:"not null;default:true"`
	EnableSupport       bool `json:"enable_support" gorm:"not null;default:true"`
	EnableKnowledgeBase bool `json:"enable_knowledge_base" gorm:"not null;default:true"`
	EnableAPIAccess     bool `json:"enable_api_access" gorm:"not null;default:false"`

	// Email notifications
	NotifyOnNewClient  bool `json:"notify_on_new_client" gorm:"not null;default:true"`
	NotifyOnNewInvoice bool `json:"notify_on_new_invoice" gorm:"not null;default:true"`
	NotifyOnNewTicket  bool `json:"notify_on_new_ticket" gorm:"not null;default:true"`

	// Security settings
	Force2FA              bool `json:"force_2fa" gorm:"not null;default:false"`
	PasswordExpiryDays    int  `json:"password_expiry_days" gorm:"not null;default:90"`
	SessionTimeoutMinutes int  `json:"session_timeout_minutes" gorm:"not null;default:60"`

	CustomFields JSONMap `json:"custom_fields" gorm:"type:jsonb"`
}

// TableName returns the table name for TenantSettings
func (TenantSettings) TableName() string {
	return "tenant_settings"
}
