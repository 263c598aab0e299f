package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account that can sign in. Email is the login identifier and is
// globally unique. TenantID is nil only for platform superusers; a superuser
// must never carry a tenant reference, which BeforeSave enforces on every
// write path.
type User struct {
	BaseModel
	Email    string     `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email,max=255"`
	TenantID *uuid.UUID `json:"tenant_id,omitempty" gorm:"type:uuid;index"`

	// Personal information
	FirstName  string `json:"first_name" gorm:"size:100" validate:"max=100"`
	LastName   string `json:"last_name" gorm:"size:100" validate:"max=100"`
	Phone      string `json:"phone,omitempty" gorm:"size:20" validate:"omitempty,e164"`
	JobTitle   string `json:"job_title,omitempty" gorm:"size:100"`
	Department string `json:"department,omitempty" gorm:"size:100"`

	// Security and access
	IsActive            bool       `json:"is_active" gorm:"not null;default:true"`
	IsSuperuser         bool       `json:"is_superuser" gorm:"not null;default:false"`
	IsTenantAdmin       bool       `json:"is_tenant_admin" gorm:"not null;default:false"`
	PasswordHash        string     `json:"-" gorm:"not null;size:255"`
	PasswordChangedAt   *time.Time `json:"password_changed_at,omitempty"`
	ForcePasswordChange bool       `json:"force_password_change" gorm:"not null;default:false"`

	// 2FA
	TwoFactorEnabled bool   `json:"two_factor_enabled" gorm:"not null;default:false"`
	TwoFactorSecret  string `json:"-" gorm:"size:32"`

	// Preferences
	Language string `json:"language" gorm:"size:10;not null;default:'en'"`
	Timezone string `json:"timezone" gorm:"size:50;not null;default:'UTC'"`

	// API access
	APIKey           uuid.UUID `json:"-" gorm:"type:uuid;uniqueIndex;not null"`
	APIAccessEnabled bool      `json:"api_access_enabled" gorm:"not null;default:false"`

	// Session tracking
	LastLoginIP string     `json:"last_login_ip,omitempty" gorm:"size:45"`
	LastActive  *time.Time `json:"last_active,omitempty"`

	Tenant    *Tenant    `json:"-" gorm:"foreignKey:TenantID"`
	UserRoles []UserRole `json:"user_roles,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeSave keeps superusers detached from any tenant
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.IsSuperuser {
		u.TenantID = nil
	}
	return nil
}

// FullName returns the user's display name, falling back to the email
func (u *User) FullName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full == "" {
		return u.Email
	}
	return full
}

// LoginAttempt is an append-only audit record of authentication events.
// UserID is nil for failed attempts against unknown identities. Rows are never
// updated; deletion is only permitted past the retention threshold.
type LoginAttempt struct {
	BaseModel
	UserID        *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid;index"`
	Email         string     `json:"email" gorm:"not null;size:255;index"`
	IPAddress     string     `json:"ip_address" gorm:"not null;size:45"`
	UserAgent     string     `json:"user_agent" gorm:"type:text"`
	Successful    bool       `json:"successful" gorm:"not null;default:false"`
	FailureReason string     `json:"failure_reason,omitempty" gorm:"size:100"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for LoginAttempt
func (LoginAttempt) TableName() string {
	return "login_attempts"
}
