package repository

import (
	"time"

	"crm-saas-backend/internal/database/models"

	"github.com/google/uuid"
)

//go:generate mockgen -source=interfaces.go -destination=../mocks/repository_mocks.go -package=mocks

// TenantRepositoryInterface defines the interface for tenant repository operations
type TenantRepositoryInterface interface {
	CreateWithSettings(tenant *models.Tenant, settings *models.TenantSettings) error
	GetByID(id uuid.UUID) (*models.Tenant, error)
	GetBySlug(slug string) (*models.Tenant, error)
	GetByDomainName(hostname string) (*models.Tenant, error)
	GetWithDomains(id uuid.UUID) (*models.Tenant, error)
	GetWithSettings(id uuid.UUID) (*models.Tenant, error)
	GetAll(limit, offset int) ([]models.Tenant, int64, error)
	CountUsers(id uuid.UUID) (int64, error)
	Update(tenant *models.Tenant) error
	UpdateSettings(settings *models.TenantSettings) error
	Delete(id uuid.UUID) error
}

// DomainRepositoryInterface defines the interface for domain repository operations
type DomainRepositoryInterface interface {
	Create(domain *models.Domain) error
	GetByID(id uuid.UUID) (*models.Domain, error)
	GetByName(name string) (*models.Domain, error)
	GetByTenantID(tenantID uuid.UUID) ([]models.Domain, error)
	GetPrimaryByTenantID(tenantID uuid.UUID) (*models.Domain, error)
	SetPrimary(tenantID, domainID uuid.UUID) error
	Delete(id uuid.UUID) error
	Update(domain *models.Domain) error
}

// UserRepositoryInterface defines the interface for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByAPIKey(key uuid.UUID) (*models.User, error)
	GetByTenantID(tenantID uuid.UUID, limit, offset int) ([]models.User, int64, error)
	Update(user *models.User) error
	UpdateLoginInfo(id uuid.UUID, ip string, at time.Time) error
	Delete(id uuid.UUID) error
}

// RoleRepositoryInterface defines the interface for role repository operations
type RoleRepositoryInterface interface {
	Create(role *models.Role) error
	GetByID(id uuid.UUID) (*models.Role, error)
	GetByName(tenantID uuid.UUID, name string) (*models.Role, error)
	GetByTenantID(tenantID uuid.UUID, limit, offset int) ([]models.Role, int64, error)
	Update(role *models.Role) error
	Delete(id uuid.UUID) error
}

// UserRoleRepositoryInterface defines the interface for role-binding repository operations
type UserRoleRepositoryInterface interface {
	Upsert(binding *models.UserRole) error
	GetByUserAndRole(userID, roleID uuid.UUID) (*models.UserRole, error)
	GetActiveByUser(userID uuid.UUID, now time.Time) ([]models.UserRole, error)
	GetByUser(userID uuid.UUID) ([]models.UserRole, error)
	Deactivate(userID, roleID uuid.UUID) error
}

// LoginAttemptRepositoryInterface defines the interface for login-audit repository operations
type LoginAttemptRepositoryInterface interface {
	Create(attempt *models.LoginAttempt) error
	GetByUser(userID uuid.UUID, limit, offset int) ([]models.LoginAttempt, int64, error)
	GetByEmail(email string, limit, offset int) ([]models.LoginAttempt, int64, error)
	CountRecentFailures(email string, since time.Time) (int64, error)
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

// ClientRepositoryInterface defines the interface for client repository operations
type ClientRepositoryInterface interface {
	Create(client *models.Client) error
	GetByID(tenantID, id uuid.UUID) (*models.Client, error)
	GetByName(tenantID uuid.UUID, name string) (*models.Client, error)
	GetByTenantID(tenantID uuid.UUID, limit, offset int) ([]models.Client, int64, error)
	GetWithContacts(tenantID, id uuid.UUID) (*models.Client, error)
	Update(client *models.Client) error
	Delete(tenantID, id uuid.UUID) error
	CreateContact(contact *models.Contact) error
	GetContactByEmail(tenantID uuid.UUID, email string) (*models.Contact, error)
}

// LeadRepositoryInterface defines the interface for lead repository operations
type LeadRepositoryInterface interface {
	Create(lead *models.Lead) error
	GetByID(tenantID, id uuid.UUID) (*models.Lead, error)
	GetByTenantID(tenantID uuid.UUID, status models.LeadStatus, limit, offset int) ([]models.Lead, int64, error)
	ConvertToClient(lead *models.Lead, client *models.Client) error
	Update(lead *models.Lead) error
	Delete(tenantID, id uuid.UUID) error
}
