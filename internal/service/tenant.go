package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"crm-saas-backend/internal/database/models"
	apperrors "crm-saas-backend/internal/errors"
	"crm-saas-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TenantService owns the tenant registry: tenant lifecycle, the cascaded
// settings record, domain attachment and the single-primary-domain invariant.
// Settings creation and billing sync are explicit steps of Create/Update here;
// there is no lower-level write path that skips them.
type TenantService struct {
	repo       repository.TenantRepositoryInterface
	domainRepo repository.DomainRepositoryInterface
	validator  *validator.Validate
	notifier   Notifier
	billing    BillingGateway
}

// NewTenantService creates a new tenant service
func NewTenantService(
	repo repository.TenantRepositoryInterface,
	domainRepo repository.DomainRepositoryInterface,
	validator *validator.Validate,
	notifier Notifier,
	billing BillingGateway,
) *TenantService {
	return &TenantService{
		repo:       repo,
		domainRepo: domainRepo,
		validator:  validator,
		notifier:   notifier,
		billing:    billing,
	}
}

// CreateTenantRequest represents the request to create a tenant
type CreateTenantRequest struct {
	Name             string `json:"name" validate:"required,min=1,max=100"`
	Slug             string `json:"slug" validate:"required,min=1,max=100"`
	Email            string `json:"email" validate:"required,email,max=255"`
	Phone            string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Address          string `json:"address,omitempty"`
	Timezone         string `json:"timezone,omitempty" validate:"omitempty,max=50"`
	Language         string `json:"language,omitempty" validate:"omitempty,max=10"`
	Currency         string `json:"currency,omitempty" validate:"omitempty,len=3"`
	SubscriptionPlan string `json:"subscription_plan,omitempty" validate:"omitempty,max=50"`
	InitialDomain    string `json:"initial_domain,omitempty" validate:"omitempty,fqdn,max=253"`
}

// UpdateTenantRequest represents the request to update a tenant
type UpdateTenantRequest struct {
	Name             string  `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email            string  `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone            string  `json:"phone,omitempty" validate:"omitempty,max=20"`
	Address          string  `json:"address,omitempty"`
	IsActive         *bool   `json:"is_active,omitempty"`
	SubscriptionPlan string  `json:"subscription_plan,omitempty" validate:"omitempty,max=50"`
	MaxUsers         *int    `json:"max_users,omitempty" validate:"omitempty,min=1"`
	MaxStorage       *int64  `json:"max_storage,omitempty" validate:"omitempty,min=1"`
}

// AddDomainRequest represents the request to attach a domain to a tenant
type AddDomainRequest struct {
	Domain             string `json:"domain" validate:"required,fqdn,max=253"`
	VerificationMethod string `json:"verification_method,omitempty" validate:"omitempty,oneof=dns file"`
}

// DomainResponse represents the response for domain operations
type DomainResponse struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Domain    string    `json:"domain"`
	IsPrimary bool      `json:"is_primary"`
	Verified  bool      `json:"verified"`
	CreatedAt string    `json:"created_at"`
}

// TenantResponse represents the response for tenant operations
type TenantResponse struct {
	ID                 uuid.UUID        `json:"id"`
	Name               string           `json:"name"`
	Slug               string           `json:"slug"`
	Email              string           `json:"email"`
	IsActive           bool             `json:"is_active"`
	SubscriptionPlan   string           `json:"subscription_plan"`
	SubscriptionStatus string           `json:"subscription_status"`
	MaxUsers           int              `json:"max_users"`
	MaxStorage         int64            `json:"max_storage"`
	Domains            []DomainResponse `json:"domains,omitempty"`
	CreatedAt          string           `json:"created_at"`
	UpdatedAt          string           `json:"updated_at"`
}

// TenantListResponse represents a paginated list of tenants
type TenantListResponse struct {
	Tenants  []TenantResponse `json:"tenants"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// Create creates a tenant with its settings record and, when requested, an
// initial domain which automatically becomes primary. Billing sync and the
// creation notification run after the writes commit and never fail the call.
func (s *TenantService) Create(req *CreateTenantRequest) (*TenantResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	existing, err := s.repo.GetBySlug(slug)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing tenant by slug: %w", err)
	}
	if existing != nil {
		return nil, apperrors.ErrTenantExists
	}

	tenant := &models.Tenant{
		Name:               req.Name,
		Slug:               slug,
		IsActive:           true,
		Email:              req.Email,
		Phone:              req.Phone,
		Address:            req.Address,
		SubscriptionPlan:   defaultString(req.SubscriptionPlan, "free"),
		SubscriptionStatus: models.SubscriptionStatusActive,
		Timezone:           defaultString(req.Timezone, "UTC"),
		Language:           defaultString(req.Language, "en"),
		Currency:           defaultString(req.Currency, "USD"),
		DateFormat:         "Y-m-d",
		MaxUsers:           5,
		MaxStorage:         5 * 1024 * 1024 * 1024,
	}
	settings := &models.TenantSettings{
		EnableProjects:        true,
		EnableTasks:           true,
		EnableInvoicing:       true,
		EnableSupport:         true,
		EnableKnowledgeBase:   true,
		NotifyOnNewClient:     true,
		NotifyOnNewInvoice:    true,
		NotifyOnNewTicket:     true,
		PasswordExpiryDays:    90,
		SessionTimeoutMinutes: 60,
		CustomFields:          models.JSONMap{},
	}

	if err := s.repo.CreateWithSettings(tenant, settings); err != nil {
		return nil, translateDuplicate(err, apperrors.ErrTenantExists, "failed to create tenant")
	}

	if req.InitialDomain != "" {
		domain := &models.Domain{
			TenantID:           tenant.ID,
			Domain:             strings.ToLower(req.InitialDomain),
			VerificationMethod: models.DomainVerificationDNS,
		}
		if err := s.domainRepo.Create(domain); err != nil {
			return nil, translateDuplicate(err, apperrors.ErrDomainExists, "failed to attach initial domain")
		}
	}

	s.syncBilling(tenant)
	s.notifier.TenantCreated(tenant)

	return s.toResponse(tenant, nil), nil
}

// GetByID retrieves a tenant by ID with its domains
func (s *TenantService) GetByID(id uuid.UUID) (*TenantResponse, error) {
	tenant, err := s.repo.GetWithDomains(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return s.toResponse(tenant, tenant.Domains), nil
}

// GetBySlug retrieves a tenant by slug
func (s *TenantService) GetBySlug(slug string) (*TenantResponse, error) {
	tenant, err := s.repo.GetBySlug(strings.ToLower(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return s.toResponse(tenant, nil), nil
}

// ResolveByDomain resolves the tenant owning a hostname. Used by the request
// boundary to bind a request to its tenant context.
func (s *TenantService) ResolveByDomain(hostname string) (*TenantResponse, error) {
	host := strings.ToLower(strings.TrimSpace(hostname))
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	tenant, err := s.repo.GetByDomainName(host)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to resolve tenant by domain: %w", err)
	}
	return s.toResponse(tenant, nil), nil
}

// GetAll retrieves all tenants with pagination
func (s *TenantService) GetAll(page, pageSize int) (*TenantListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	offset := (page - 1) * pageSize
	tenants, total, err := s.repo.GetAll(pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenants: %w", err)
	}

	responses := make([]TenantResponse, len(tenants))
	for i, tenant := range tenants {
		responses[i] = *s.toResponse(&tenant, nil)
	}

	return &TenantListResponse{
		Tenants:  responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Update updates a tenant and re-syncs the billing customer
func (s *TenantService) Update(id uuid.UUID, req *UpdateTenantRequest) (*TenantResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	tenant, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	if req.Name != "" {
		tenant.Name = req.Name
	}
	if req.Email != "" {
		tenant.Email = req.Email
	}
	if req.Phone != "" {
		tenant.Phone = req.Phone
	}
	if req.Address != "" {
		tenant.Address = req.Address
	}
	if req.IsActive != nil {
		tenant.IsActive = *req.IsActive
	}
	if req.SubscriptionPlan != "" {
		tenant.SubscriptionPlan = req.SubscriptionPlan
	}
	if req.MaxUsers != nil {
		tenant.MaxUsers = *req.MaxUsers
	}
	if req.MaxStorage != nil {
		tenant.MaxStorage = *req.MaxStorage
	}

	if err := s.repo.Update(tenant); err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}

	s.syncBilling(tenant)

	return s.toResponse(tenant, nil), nil
}

// Delete deletes a tenant and everything scoped to it
func (s *TenantService) Delete(id uuid.UUID) error {
	tenant, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTenantNotFound
		}
		return fmt.Errorf("failed to get tenant: %w", err)
	}

	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}

	if tenant.StripeCustomerID != "" {
		if err := s.billing.DeleteCustomer(tenant.StripeCustomerID); err != nil {
			logrus.WithError(err).WithField("tenant", tenant.Slug).Warn("billing customer cleanup failed")
		}
	}
	return nil
}

// AddDomain attaches a domain to a tenant. The first domain of a tenant
// becomes primary automatically.
func (s *TenantService) AddDomain(tenantID uuid.UUID, req *AddDomainRequest) (*DomainResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.repo.GetByID(tenantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	method := models.DomainVerificationDNS
	if req.VerificationMethod == string(models.DomainVerificationFile) {
		method = models.DomainVerificationFile
	}

	domain := &models.Domain{
		TenantID:           tenantID,
		Domain:             strings.ToLower(req.Domain),
		VerificationMethod: method,
		VerificationToken:  uuid.NewString(),
	}
	if err := s.domainRepo.Create(domain); err != nil {
		return nil, translateDuplicate(err, apperrors.ErrDomainExists, "failed to create domain")
	}

	return s.toDomainResponse(domain), nil
}

// SetPrimaryDomain atomically makes the given domain the tenant's primary,
// clearing the flag on all siblings in the same transaction
func (s *TenantService) SetPrimaryDomain(tenantID, domainID uuid.UUID) error {
	if err := s.domainRepo.SetPrimary(tenantID, domainID); err != nil {
		if apperrors.IsNotFound(err) || apperrors.IsConflict(err) {
			return err
		}
		return fmt.Errorf("failed to set primary domain: %w", err)
	}
	return nil
}

// DeleteDomain removes a tenant's domain, promoting a sibling when the
// primary goes away. A domain belonging to another tenant reads as not found.
func (s *TenantService) DeleteDomain(tenantID, domainID uuid.UUID) error {
	domain, err := s.domainRepo.GetByID(domainID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrDomainNotFound
		}
		return fmt.Errorf("failed to get domain: %w", err)
	}
	if domain.TenantID != tenantID {
		return apperrors.ErrDomainNotFound
	}

	if err := s.domainRepo.Delete(domainID); err != nil {
		if apperrors.IsNotFound(err) || apperrors.IsConflict(err) {
			return err
		}
		return fmt.Errorf("failed to delete domain: %w", err)
	}
	return nil
}

// ListDomains lists a tenant's domains, primary first
func (s *TenantService) ListDomains(tenantID uuid.UUID) ([]DomainResponse, error) {
	domains, err := s.domainRepo.GetByTenantID(tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	responses := make([]DomainResponse, len(domains))
	for i := range domains {
		responses[i] = *s.toDomainResponse(&domains[i])
	}
	return responses, nil
}

// syncBilling pushes the tenant to the payment processor. Fire-and-forget:
// errors are logged, never returned, and the call happens outside any
// transaction.
func (s *TenantService) syncBilling(tenant *models.Tenant) {
	customerID, err := s.billing.SyncCustomer(tenant)
	if err != nil {
		logrus.WithError(err).WithField("tenant", tenant.Slug).Warn("billing sync failed")
		return
	}
	if customerID != "" && customerID != tenant.StripeCustomerID {
		tenant.StripeCustomerID = customerID
		if err := s.repo.Update(tenant); err != nil {
			logrus.WithError(err).WithField("tenant", tenant.Slug).Warn("failed to persist billing customer id")
		}
	}
}

func (s *TenantService) toResponse(tenant *models.Tenant, domains []models.Domain) *TenantResponse {
	resp := &TenantResponse{
		ID:                 tenant.ID,
		Name:               tenant.Name,
		Slug:               tenant.Slug,
		Email:              tenant.Email,
		IsActive:           tenant.IsActive,
		SubscriptionPlan:   tenant.SubscriptionPlan,
		SubscriptionStatus: string(tenant.SubscriptionStatus),
		MaxUsers:           tenant.MaxUsers,
		MaxStorage:         tenant.MaxStorage,
		CreatedAt:          tenant.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          tenant.UpdatedAt.Format(time.RFC3339),
	}
	for i := range domains {
		resp.Domains = append(resp.Domains, *s.toDomainResponse(&domains[i]))
	}
	return resp
}

func (s *TenantService) toDomainResponse(domain *models.Domain) *DomainResponse {
	return &DomainResponse{
		ID:        domain.ID,
		TenantID:  domain.TenantID,
		Domain:    domain.Domain,
		IsPrimary: domain.IsPrimary,
		Verified:  domain.Verified,
		CreatedAt: domain.CreatedAt.Format(time.RFC3339),
	}
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// translateDuplicate maps storage-level unique violations onto the error
// taxonomy instead of leaking raw driver errors
func translateDuplicate(err error, exists error, context string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key value") {
		return exists
	}
	return fmt.Errorf("%s: %w", context, err)
}
