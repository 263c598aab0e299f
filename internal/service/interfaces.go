package service

import (
	"time"

	"crm-saas-backend/internal/database/models"

	"github.com/google/uuid"
)

//go:generate mockgen -source=interfaces.go -destination=../mocks/service_mocks.go -package=mocks

// TenantServiceInterface defines the interface for tenant service
type TenantServiceInterface interface {
	Create(req *CreateTenantRequest) (*TenantResponse, error)
	GetByID(id uuid.UUID) (*TenantResponse, error)
	GetBySlug(slug string) (*TenantResponse, error)
	ResolveByDomain(host string) (*TenantResponse, error)
	GetAll(page, pageSize int) (*TenantListResponse, error)
	Update(id uuid.UUID, req *UpdateTenantRequest) (*TenantResponse, error)
	Delete(id uuid.UUID) error
	AddDomain(tenantID uuid.UUID, req *AddDomainRequest) (*DomainResponse, error)
	SetPrimaryDomain(tenantID, domainID uuid.UUID) error
	DeleteDomain(tenantID, domainID uuid.UUID) error
	ListDomains(tenantID uuid.UUID) ([]DomainResponse, error)
}

// UserServiceInterface defines the interface for user service
type UserServiceInterface interface {
	Create(req *CreateUserRequest) (*UserResponse, error)
	GetByID(id uuid.UUID) (*UserResponse, error)
	GetByEmail(email string) (*UserResponse, error)
	GetByTenant(tenantID uuid.UUID, page, pageSize int) (*UserListResponse, error)
	Update(id uuid.UUID, req *UpdateUserRequest) (*UserResponse, error)
	ChangePassword(id uuid.UUID, newPassword string) error
	VerifyPassword(user *models.User, password string) bool
	RecordLogin(user *models.User, email, ip, userAgent string, success bool, reason string) error
	LoginHistory(userID uuid.UUID, page, pageSize int) ([]LoginAttemptResponse, int64, error)
	PurgeLoginAttempts(olderThan time.Duration) (int64, error)
	EnableTwoFactor(id uuid.UUID) (string, error)
	DisableTwoFactor(id uuid.UUID) error
	Delete(id uuid.UUID) error
}

// RoleServiceInterface defines the interface for role service
type RoleServiceInterface interface {
	Create(req *CreateRoleRequest) (*RoleResponse, error)
	GetByID(id uuid.UUID) (*RoleResponse, error)
	GetByTenant(tenantID uuid.UUID, page, pageSize int) (*RoleListResponse, error)
	Update(id uuid.UUID, req *UpdateRoleRequest) (*RoleResponse, error)
	Delete(id uuid.UUID) error
	Assign(req *AssignRoleRequest) (*RoleBindingResponse, error)
	Revoke(userID, roleID uuid.UUID) error
	GetBindings(userID uuid.UUID) ([]RoleBindingResponse, error)
	GetEffectivePermissions(userID uuid.UUID) (*EffectivePermissions, error)
}

// AccessServiceInterface defines the interface for access service
type AccessServiceInterface interface {
	Can(userID uuid.UUID, capability string) (*AccessDecision, error)
	CanAccessTenant(userID, tenantID uuid.UUID) (bool, error)
}

// ClientServiceInterface defines the interface for client service
type ClientServiceInterface interface {
	Create(tenantID uuid.UUID, req *CreateClientRequest) (*ClientResponse, error)
	GetByID(tenantID, id uuid.UUID) (*ClientResponse, error)
	GetByTenant(tenantID uuid.UUID, page, pageSize int) (*ClientListResponse, error)
	Update(tenantID, id uuid.UUID, req *UpdateClientRequest) (*ClientResponse, error)
	Delete(tenantID, id uuid.UUID) error
	AddContact(tenantID, clientID uuid.UUID, req *CreateContactRequest) (*ContactResponse, error)
}

// LeadServiceInterface defines the interface for lead service
type LeadServiceInterface interface {
	Create(tenantID uuid.UUID, req *CreateLeadRequest) (*LeadResponse, error)
	GetByID(tenantID, id uuid.UUID) (*LeadResponse, error)
	GetByTenant(tenantID uuid.UUID, status string, page, pageSize int) (*LeadListResponse, error)
	Update(tenantID, id uuid.UUID, req *UpdateLeadRequest) (*LeadResponse, error)
	Convert(tenantID, id uuid.UUID) (*LeadResponse, *ClientResponse, error)
	Delete(tenantID, id uuid.UUID) error
}
