package models

import (
	"github.com/google/uuid"
)

// LeadStatus tracks a lead through the pipeline
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusLost      LeadStatus = "lost"
	LeadStatusConverted LeadStatus = "converted"
)

// Lead is a potential client tracked by a tenant until conversion or loss
type Lead struct {
	BaseModel
	TenantID  uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;index" validate:"required"`
	FirstName string    `json:"first_name" gorm:"not null;size:100" validate:"required,max=100"`
	LastName  string    `json:"last_name" gorm:"not null;size:100" validate:"required,max=100"`
	Email     string    `json:"email,omitempty" gorm:"size:255" validate:"omitempty,email"`
	Phone     string    `json:"phone,omitempty" gorm:"size:20"`
	Company   string    `json:"company,omitempty" gorm:"size:255"`

	Status         LeadStatus `json:"status" gorm:"type:varchar(20);not null;default:'new'"`
	Source         string     `json:"source,omitempty" gorm:"size:100"`
	EstimatedValue float64    `json:"estimated_value" gorm:"not null;default:0"`
	Notes          string     `json:"notes,omitempty" gorm:"type:text"`

	AssignedToID      *uuid.UUID `json:"assigned_to_id,omitempty" gorm:"type:uuid"`
	ConvertedClientID *uuid.UUID `json:"converted_client_id,omitempty" gorm:"type:uuid"`

	Tenant          *Tenant `json:"-" gorm:"foreignKey:TenantID"`
	AssignedTo      *User   `json:"-" gorm:"foreignKey:AssignedToID;constraint:OnDelete:SET NULL"`
	ConvertedClient *Client `json:"-" gorm:"foreignKey:ConvertedClientID;constraint:OnDelete:SET NULL"`
}

// TableName returns the table name for Lead
func (Lead) TableName() string {
	return "leads"
}

// ValidLeadStatus reports whether s is one of the known pipeline statuses
func ValidLeadStatus(s LeadStatus) bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusLost, LeadStatusConverted:
		return true
	}
	return false
}
