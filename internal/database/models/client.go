package models

import (
	"github.com/google/uuid"
)

// Client is a customer organization managed by a tenant
type Client struct {
	BaseModel
	TenantID uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_clients_tenant_name" validate:"required"`
	Name     string    `json:"name" gorm:"not null;size:255;uniqueIndex:idx_clients_tenant_name" validate:"required,min=1,max=255"`
	Website  string    `json:"website,omitempty" gorm:"size:255" validate:"omitempty,url"`
	Email    string    `json:"email,omitempty" gorm:"size:255" validate:"omitempty,email"`
	Phone    string    `json:"phone,omitempty" gorm:"size:20"`
	Address  string    `json:"address,omitempty" gorm:"type:text"`
	Tags     JSONMap   `json:"tags" gorm:"type:jsonb"`
	IsActive bool      `json:"is_active" gorm:"not null;default:true"`

	Tenant   *Tenant   `json:"-" gorm:"foreignKey:TenantID"`
	Contacts []Contact `json:"contacts,omitempty" gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for Client
func (Client) TableName() string {
	return "clients"
}

// Contact is a person attached to a client. Email is unique within a tenant.
type Contact struct {
	BaseModel
	TenantID  uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_contacts_tenant_email" validate:"required"`
	ClientID  uuid.UUID `json:"client_id" gorm:"type:uuid;not null;index" validate:"required"`
	FirstName string    `json:"first_name" gorm:"not null;size:100" validate:"required,max=100"`
	LastName  string    `json:"last_name" gorm:"not null;size:100" validate:"required,max=100"`
	Email     string    `json:"email" gorm:"not null;size:255;uniqueIndex:idx_contacts_tenant_email" validate:"required,email,max=255"`
	Phone     string    `json:"phone,omitempty" gorm:"size:20"`
	JobTitle  string    `json:"job_title,omitempty" gorm:"size:100"`
	IsPrimary bool      `json:"is_primary" gorm:"not null;default:false"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:true"`

	Tenant *Tenant `json:"-" gorm:"foreignKey:TenantID"`
	Client *Client `json:"-" gorm:"foreignKey:ClientID"`
}

// TableName returns the table name for Contact
func (Contact) TableName() string {
	return "contacts"
}
