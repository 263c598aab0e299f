package testutils

import (
	"time"

	"crm-saas-backend/internal/database/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TenantFactory provides methods to create test Tenant data
type TenantFactory struct{}

// NewTenantFactory creates a new TenantFactory
func NewTenantFactory() *TenantFactory {
	return &TenantFactory{}
}

// Create creates a test Tenant with default values
func (f *TenantFactory) Create() *models.Tenant {
	id := uuid.New()
	// Unique slug derived from the ID so parallel fixtures never collide
	slug := "tenant-" + id.String()[:8]

	return &models.Tenant{
		BaseModel: models.BaseModel{
			ID:        id,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Name:               "Test Tenant",
		Slug:               slug,
		IsActive:           true,
		Email:              "owner@" + slug + ".example.com",
		Timezone:           "UTC",
		Language:           "en",
		Currency:           "USD",
		DateFormat:         "Y-m-d",
		SubscriptionPlan:   "free",
		SubscriptionStatus: models.SubscriptionStatusActive,
		MaxUsers:           5,
		MaxStorage:         5 * 1024 * 1024 * 1024,
	}
}

// WithSlug sets a custom slug for the tenant
func (f *TenantFactory) WithSlug(slug string) *models.Tenant {
	tenant := f.Create()
	tenant.Slug = slug
	tenant.Email = "owner@" + slug + ".example.com"
	return tenant
}

// WithMaxUsers sets a custom user limit for the tenant
func (f *TenantFactory) WithMaxUsers(max int) *models.Tenant {
	tenant := f.Create()
	tenant.MaxUsers = max
	return tenant
}

// Inactive creates a suspended tenant
func (f *TenantFactory) Inactive() *models.Tenant {
	tenant := f.Create()
	tenant.IsActive = false
	return tenant
}

// DomainFactory provides methods to create test Domain data
type DomainFactory struct{}

// NewDomainFactory creates a new DomainFactory
func NewDomainFactory() *DomainFactory {
	return &DomainFactory{}
}

// Create creates a test Domain with default values
func (f *DomainFactory) Create() *models.Domain {
	id := uuid.New()
	return &models.Domain{
		BaseModel: models.BaseModel{
			ID:        id,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		TenantID:           uuid.New(),
		Domain:             "crm-" + id.String()[:8] + ".example.com",
		IsPrimary:          false,
		Verified:           false,
		VerificationMethod: models.DomainVerificationDNS,
	}
}

// WithTenant sets the tenant ID for the domain
func (f *DomainFactory) WithTenant(tenantID uuid.UUID) *models.Domain {
	domain := f.Create()
	domain.TenantID = tenantID
	return domain
}

// WithName sets a custom hostname for the domain
func (f *DomainFactory) WithName(tenantID uuid.UUID, name string) *models.Domain {
	domain := f.Create()
	domain.TenantID = tenantID
	domain.Domain = name
	return domain
}

// Primary creates a primary domain for the tenant
func (f *DomainFactory) Primary(tenantID uuid.UUID, name string) *models.Domain {
	domain := f.WithName(tenantID, name)
	domain.IsPrimary = true
	return domain
}

// UserFactory provides methods to create test User data
type UserFactory struct{}

// NewUserFactory creates a new UserFactory
func NewUserFactory() *UserFactory {
	return &UserFactory{}
}

// Create creates a test User with default values. The password is "password123"
// hashed at the minimum bcrypt cost to keep suites fast.
func (f *UserFactory) Create() *models.User {
	id := uuid.New()
	tenantID := uuid.New()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)

	return &models.User{
		BaseModel: models.BaseModel{
			ID:        id,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Email:        "user-" + id.String()[:8] + "@test.com",
		TenantID:     &tenantID,
		FirstName:    "Jane",
		LastName:     "Doe",
		IsActive:     true,
		PasswordHash: string(hash),
		Language:     "en",
		Timezone:     "UTC",
		APIKey:       uuid.New(),
	}
}

// WithTenant sets the tenant ID for the user
func (f *UserFactory) WithTenant(tenantID uuid.UUID) *models.User {
	user := f.Create()
	user.TenantID = &tenantID
	return user
}

// WithEmail sets a custom email for the user
func (f *UserFactory) WithEmail(tenantID uuid.UUID, email string) *models.User {
	user := f.WithTenant(tenantID)
	user.Email = email
	return user
}

// Superuser creates a platform superuser without a tenant
func (f *UserFactory) Superuser() *models.User {
	user := f.Create()
	user.TenantID = nil
	user.IsSuperuser = true
	return user
}

// TenantAdmin creates a tenant administrator
func (f *UserFactory) TenantAdmin(tenantID uuid.UUID) *models.User {
	user := f.WithTenant(tenantID)
	user.IsTenantAdmin = true
	return user
}

// Inactive creates a deactivated user
func (f *UserFactory) Inactive(tenantID uuid.UUID) *models.User {
	user := f.WithTenant(tenantID)
	user.IsActive = false
	return user
}

// RoleFactory provides methods to create test Role data
type RoleFactory struct{}

// NewRoleFactory creates a new RoleFactory
func NewRoleFactory() *RoleFactory {
	return &RoleFactory{}
}

// Create creates a test Role with default values
func (f *RoleFactory) Create() *models.Role {
	id := uuid.New()
	return &models.Role{
		BaseModel: models.BaseModel{
			ID:        id,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		TenantID:    uuid.New(),
		Name:        "role-" + id.String()[:8],
		Description: "A test role",
	}
}

// WithTenant sets the tenant ID for the role
func (f *RoleFactory) WithTenant(tenantID uuid.UUID) *models.Role {
	role := f.Create()
	role.TenantID = tenantID
	return role
}

// WithName sets a custom name for the role
func (f *RoleFactory) WithName(tenantID uuid.UUID, name string) *models.Role {
	role := f.WithTenant(tenantID)
	role.Name = name
	return role
}

// WithCapabilities creates a role granting the named fixed capabilities
func (f *RoleFactory) WithCapabilities(tenantID uuid.UUID, capabilities ...string) *models.Role {
	role := f.WithTenant(tenantID)
	for _, c := range capabilities {
		switch c {
		case models.CapabilityManageUsers:
			role.CanManageUsers = true
		case models.CapabilityManageRoles:
			role.CanManageRoles = true
		case models.CapabilityManageClients:
			role.CanManageClients = true
		case models.CapabilityManageProjects:
			role.CanManageProjects = true
		case models.CapabilityManageInvoices:
			role.CanManageInvoices = true
		case models.CapabilityManageExpenses:
			role.CanManageExpenses = true
		case models.CapabilityManageLeads:
			role.CanManageLeads = true
		case models.CapabilityViewReports:
			role.CanViewReports = true
		case models.CapabilityExportData:
			role.CanExportData = true
		case models.CapabilityManageSettings:
			role.CanManageSettings = true
		}
	}
	return role
}

// WithCustomPermissions creates a role carrying custom permission keys
func (f *RoleFactory) WithCustomPermissions(tenantID uuid.UUID, perms map[string]interface{}) *models.Role {
	role := f.WithTenant(tenantID)
	role.CustomPermissions = perms
	return role
}

// UserRoleFactory provides methods to create test UserRole bindings
type UserRoleFactory struct{}

// NewUserRoleFactory creates a new UserRoleFactory
func NewUserRoleFactory() *UserRoleFactory {
	return &UserRoleFactory{}
}

// Create creates an active binding between the given user and role
func (f *UserRoleFactory) Create(userID, roleID uuid.UUID) *models.UserRole {
	return &models.UserRole{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		UserID:     userID,
		RoleID:     roleID,
		AssignedAt: time.Now(),
		IsActive:   true,
	}
}

// Expired creates a binding whose expiry has already passed
func (f *UserRoleFactory) Expired(userID, roleID uuid.UUID) *models.UserRole {
	binding := f.Create(userID, roleID)
	expired := time.Now().Add(-time.Hour)
	binding.ExpiresAt = &expired
	return binding
}

// Inactive creates a revoked binding
func (f *UserRoleFactory) Inactive(userID, roleID uuid.UUID) *models.UserRole {
	binding := f.Create(userID, roleID)
	binding.IsActive = false
	return binding
}

// ClientFactory provides methods to create test Client data
type ClientFactory struct{}

// NewClientFactory creates a new ClientFactory
func NewClientFactory() *ClientFactory {
	return &ClientFactory{}
}

// Create creates a test Client with default values
func (f *ClientFactory) Create() *models.Client {
	id := uuid.New()
	return &models.Client{
		BaseModel: models.BaseModel{
			ID:        id,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		TenantID: uuid.New(),
		Name:     "Client " + id.String()[:8],
		Email:    "info@client-" + id.String()[:8] + ".com",
		IsActive: true,
	}
}

// WithTenant sets the tenant ID for the client
func (f *ClientFactory) WithTenant(tenantID uuid.UUID) *models.Client {
	client := f.Create()
	client.TenantID = tenantID
	return client
}

// WithName sets a custom name for the client
func (f *ClientFactory) WithName(tenantID uuid.UUID, name string) *models.Client {
	client := f.WithTenant(tenantID)
	client.Name = name
	return client
}

// ContactFactory provides methods to create test Contact data
type ContactFactory struct{}

// NewContactFactory creates a new ContactFactory
func NewContactFactory() *ContactFactory {
	return &ContactFactory{}
}

// Create creates a contact attached to the given client
func (f *ContactFactory) Create(tenantID, clientID uuid.UUID) *models.Contact {
	id := uuid.New()
	return &models.Contact{
		BaseModel: models.BaseModel{
			ID:        id,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		TenantID:  tenantID,
		ClientID:  clientID,
		FirstName: "John",
		LastName:  "Smith",
		Email:     "contact-" + id.String()[:8] + "@test.com",
		IsActive:  true,
	}
}

// LeadFactory provides methods to create test Lead data
type LeadFactory struct{}

// NewLeadFactory creates a new LeadFactory
func NewLeadFactory() *LeadFactory {
	return &LeadFactory{}
}

// Create creates a test Lead with default values
func (f *LeadFactory) Create() *models.Lead {
	id := uuid.New()
	return &models.Lead{
		BaseModel: models.BaseModel{
			ID:        id,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		TenantID:  uuid.New(),
		FirstName: "Lena",
		LastName:  "Prospect",
		Email:     "lead-" + id.String()[:8] + "@test.com",
		Company:   "Prospect Co",
		Status:    models.LeadStatusNew,
		Source:    "website",
	}
}

// WithTenant sets the tenant ID for the lead
func (f *LeadFactory) WithTenant(tenantID uuid.UUID) *models.Lead {
	lead := f.Create()
	lead.TenantID = tenantID
	return lead
}

// WithStatus sets a custom pipeline status for the lead
func (f *LeadFactory) WithStatus(tenantID uuid.UUID, status models.LeadStatus) *models.Lead {
	lead := f.WithTenant(tenantID)
	lead.Status = status
	return lead
}

// FactorySet provides access to all factories
type FactorySet struct {
	Tenant   *TenantFactory
	Domain   *DomainFactory
	User     *UserFactory
	Role     *RoleFactory
	UserRole *UserRoleFactory
	Client   *ClientFactory
	Contact  *ContactFactory
	Lead     *LeadFactory
}

// NewFactorySet creates a new FactorySet with all factories initialized
func NewFactorySet() *FactorySet {
	return &FactorySet{
		Tenant:   NewTenantFactory(),
		Domain:   NewDomainFactory(),
		User:     NewUserFactory(),
		Role:     NewRoleFactory(),
		UserRole: NewUserRoleFactory(),
		Client:   NewClientFactory(),
		Contact:  NewContactFactory(),
		Lead:     NewLeadFactory(),
	}
}

// CreateFullTenantHierarchy creates a tenant with a primary domain, an admin
// user and a role, all persisted-ready
func (fs *FactorySet) CreateFullTenantHierarchy() (*models.Tenant, *models.Domain, *models.User, *models.Role) {
	tenant := fs.Tenant.Create()
	domain := fs.Domain.Primary(tenant.ID, "crm."+tenant.Slug+".example.com")
	admin := fs.User.TenantAdmin(tenant.ID)
	role := fs.Role.WithCapabilities(tenant.ID, models.CapabilityManageClients, models.CapabilityManageLeads)
	return tenant, domain, admin, role
}
