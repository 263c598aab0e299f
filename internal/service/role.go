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
	"gorm.io/gorm"
)

// RoleService owns role definitions and user-role bindings, and computes the
// effective permission set a user holds inside their tenant
type RoleService struct {
	repo         repository.RoleRepositoryInterface
	userRepo     repository.UserRepositoryInterface
	userRoleRepo repository.UserRoleRepositoryInterface
	validator    *validator.Validate
	notifier     Notifier
}

// NewRoleService creates a new role service
func NewRoleService(
	repo repository.RoleRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	userRoleRepo repository.UserRoleRepositoryInterface,
	validator *validator.Validate,
	notifier Notifier,
) *RoleService {
	return &RoleService{
		repo:         repo,
		userRepo:     userRepo,
		userRoleRepo: userRoleRepo,
		validator:    validator,
		notifier:     notifier,
	}
}

// CreateRoleRequest represents the request to create a role
type CreateRoleRequest struct {
	TenantID          uuid.UUID              `json:"tenant_id" validate:"required"`
	Name              string                 `json:"name" validate:"required,min=2,max=100"`
	Description       string                 `json:"description,omitempty" validate:"omitempty,max=500"`
	CanManageUsers    bool                   `json:"can_manage_users"`
	CanManageRoles    bool                   `json:"can_manage_roles"`
	CanManageClients  bool                   `json:"can_manage_clients"`
	CanManageProjects bool                   `json:"can_manage_projects"`
	CanManageInvoices bool                   `json:"can_manage_invoices"`
	CanManageExpenses bool                   `json:"can_manage_expenses"`
	CanManageSettings bool                   `json:"can_manage_settings"`
	CanManageLeads    bool                   `json:"can_manage_leads"`
	CanViewReports    bool                   `json:"can_view_reports"`
	CanExportData     bool                   `json:"can_export_data"`
	CustomPermissions map[string]interface{} `json:"custom_permissions,omitempty"`
}

// UpdateRoleRequest represents the request to update a role
type UpdateRoleRequest struct {
	Description       *string                `json:"description,omitempty" validate:"omitempty,max=500"`
	CanManageUsers    *bool                  `json:"can_manage_users,omitempty"`
	CanManageRoles    *bool                  `json:"can_manage_roles,omitempty"`
	CanManageClients  *bool                  `json:"can_manage_clients,omitempty"`
	CanManageProjects *bool                  `json:"can_manage_projects,omitempty"`
	CanManageInvoices *bool                  `json:"can_manage_invoices,omitempty"`
	CanManageExpenses *bool                  `json:"can_manage_expenses,omitempty"`
	CanManageSettings *bool                  `json:"can_manage_settings,omitempty"`
	CanManageLeads    *bool                  `json:"can_manage_leads,omitempty"`
	CanViewReports    *bool                  `json:"can_view_reports,omitempty"`
	CanExportData     *bool                  `json:"can_export_data,omitempty"`
	CustomPermissions map[string]interface{} `json:"custom_permissions,omitempty"`
}

// AssignRoleRequest represents the request to bind a role to a user
type AssignRoleRequest struct {
	UserID       uuid.UUID  `json:"user_id" validate:"required"`
	RoleID       uuid.UUID  `json:"role_id" validate:"required"`
	AssignedByID *uuid.UUID `json:"assigned_by_id,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// RoleResponse represents the response for role operations
type RoleResponse struct {
	ID                uuid.UUID              `json:"id"`
	TenantID          uuid.UUID              `json:"tenant_id"`
	Name              string                 `json:"name"`
	Description       string                 `json:"description,omitempty"`
	CanManageUsers    bool                   `json:"can_manage_users"`
	CanManageRoles    bool                   `json:"can_manage_roles"`
	CanManageClients  bool                   `json:"can_manage_clients"`
	CanManageProjects bool                   `json:"can_manage_projects"`
	CanManageInvoices bool                   `json:"can_manage_invoices"`
	CanManageExpenses bool                   `json:"can_manage_expenses"`
	CanManageSettings bool                   `json:"can_manage_settings"`
	CanManageLeads    bool                   `json:"can_manage_leads"`
	CanViewReports    bool                   `json:"can_view_reports"`
	CanExportData     bool                   `json:"can_export_data"`
	CustomPermissions map[string]interface{} `json:"custom_permissions,omitempty"`
	CreatedAt         string                 `json:"created_at"`
}

// RoleListResponse represents a paginated list of roles
type RoleListResponse struct {
	Roles    []RoleResponse `json:"roles"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// RoleBindingResponse represents one user-role binding
type RoleBindingResponse struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	RoleID       uuid.UUID  `json:"role_id"`
	RoleName     string     `json:"role_name,omitempty"`
	AssignedByID *uuid.UUID `json:"assigned_by_id,omitempty"`
	AssignedAt   string     `json:"assigned_at"`
	ExpiresAt    *string    `json:"expires_at,omitempty"`
	IsActive     bool       `json:"is_active"`
}

// EffectivePermissions is the union of a user's active, unexpired role
// bindings: capability flags are OR-ed, custom keys merge with
// later-assigned roles overriding earlier ones
type EffectivePermissions struct {
	CanManageUsers    bool                   `json:"can_manage_users"`
	CanManageRoles    bool                   `json:"can_manage_roles"`
	CanManageClients  bool                   `json:"can_manage_clients"`
	CanManageProjects bool                   `json:"can_manage_projects"`
	CanManageInvoices bool                   `json:"can_manage_invoices"`
	CanManageExpenses bool                   `json:"can_manage_expenses"`
	CanManageSettings bool                   `json:"can_manage_settings"`
	CanManageLeads    bool                   `json:"can_manage_leads"`
	CanViewReports    bool                   `json:"can_view_reports"`
	CanExportData     bool                   `json:"can_export_data"`
	Custom            map[string]interface{} `json:"custom"`
	RoleNames         []string               `json:"role_names"`
}

// HasCapability reports whether the merged flag for a named capability is set
func (p *EffectivePermissions) HasCapability(capability string) bool {
	switch capability {
	case models.CapabilityManageUsers:
		return p.CanManageUsers
	case models.CapabilityManageRoles:
		return p.CanManageRoles
	case models.CapabilityManageClients:
		return p.CanManageClients
	case models.CapabilityManageProjects:
		return p.CanManageProjects
	case models.CapabilityManageInvoices:
		return p.CanManageInvoices
	case models.CapabilityManageExpenses:
		return p.CanManageExpenses
	case models.CapabilityManageLeads:
		return p.CanManageLeads
	case models.CapabilityViewReports:
		return p.CanViewReports
	case models.CapabilityExportData:
		return p.CanExportData
	case models.CapabilityManageSettings:
		return p.CanManageSettings
	default:
		return false
	}
}

// Create creates a role. Role names are unique per tenant, compared
// case-insensitively.
func (s *RoleService) Create(req *CreateRoleRequest) (*RoleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	existing, err := s.repo.GetByName(req.TenantID, strings.TrimSpace(req.Name))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing role: %w", err)
	}
	if existing != nil {
		return nil, apperrors.ErrRoleExists
	}

	role := &models.Role{
		TenantID:          req.TenantID,
		Name:              strings.TrimSpace(req.Name),
		Description:       req.Description,
		CanManageUsers:    req.CanManageUsers,
		CanManageRoles:    req.CanManageRoles,
		CanManageClients:  req.CanManageClients,
		CanManageProjects: req.CanManageProjects,
		CanManageInvoices: req.CanManageInvoices,
		CanManageExpenses: req.CanManageExpenses,
		CanManageSettings: req.CanManageSettings,
		CanManageLeads:    req.CanManageLeads,
		CanViewReports:    req.CanViewReports,
		CanExportData:     req.CanExportData,
		CustomPermissions: models.JSONMap(req.CustomPermissions),
	}

	if err := s.repo.Create(role); err != nil {
		return nil, translateDuplicate(err, apperrors.ErrRoleExists, "failed to create role")
	}

	return s.toResponse(role), nil
}

// GetByID retrieves a role by ID
func (s *RoleService) GetByID(id uuid.UUID) (*RoleResponse, error) {
	role, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return s.toResponse(role), nil
}

// GetByTenant retrieves the roles defined for a tenant with pagination
func (s *RoleService) GetByTenant(tenantID uuid.UUID, page, pageSize int) (*RoleListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	roles, total, err := s.repo.GetByTenantID(tenantID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get roles: %w", err)
	}

	responses := make([]RoleResponse, len(roles))
	for i := range roles {
		responses[i] = *s.toResponse(&roles[i])
	}
	return &RoleListResponse{
		Roles:    responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Update updates a role's description, capability flags and custom permission
// map. The name and tenant are immutable.
func (s *RoleService) Update(id uuid.UUID, req *UpdateRoleRequest) (*RoleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	role, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	if req.Description != nil {
		role.Description = *req.Description
	}
	if req.CanManageUsers != nil {
		role.CanManageUsers = *req.CanManageUsers
	}
	if req.CanManageRoles != nil {
		role.CanManageRoles = *req.CanManageRoles
	}
	if req.CanManageClients != nil {
		role.CanManageClients = *req.CanManageClients
	}
	if req.CanManageProjects != nil {
		role.CanManageProjects = *req.CanManageProjects
	}
	if req.CanManageInvoices != nil {
		role.CanManageInvoices = *req.CanManageInvoices
	}
	if req.CanManageExpenses != nil {
		role.CanManageExpenses = *req.CanManageExpenses
	}
	if req.CanManageLeads != nil {
		role.CanManageLeads = *req.CanManageLeads
	}
	if req.CanViewReports != nil {
		role.CanViewReports = *req.CanViewReports
	}
	if req.CanExportData != nil {
		role.CanExportData = *req.CanExportData
	}
	if req.CanManageSettings != nil {
		role.CanManageSettings = *req.CanManageSettings
	}
	if req.CustomPermissions != nil {
		role.CustomPermissions = models.JSONMap(req.CustomPermissions)
	}

	if err := s.repo.Update(role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return s.toResponse(role), nil
}

// Delete deletes a role and, via the schema's cascade, its bindings
func (s *RoleService) Delete(id uuid.UUID) error {
	if _, err := s.repo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrRoleNotFound
		}
		return fmt.Errorf("failed to get role: %w", err)
	}
	return s.repo.Delete(id)
}

// Assign binds a role to a user. The user and role must belong to the same
// tenant; a superuser cannot hold tenant roles. Re-assigning an existing pair
// overwrites the previous binding's metadata.
func (s *RoleService) Assign(req *AssignRoleRequest) (*RoleBindingResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.userRepo.GetByID(req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	role, err := s.repo.GetByID(req.RoleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	if user.IsSuperuser || user.TenantID == nil || *user.TenantID != role.TenantID {
		return nil, apperrors.ErrCrossTenantAssignment
	}

	if req.ExpiresAt != nil && !req.ExpiresAt.After(time.Now()) {
		return nil, apperrors.NewValidationError("expires_at", "must be in the future")
	}

	binding := &models.UserRole{
		UserID:       req.UserID,
		RoleID:       req.RoleID,
		AssignedByID: req.AssignedByID,
		AssignedAt:   time.Now(),
		ExpiresAt:    req.ExpiresAt,
		IsActive:     true,
	}

	if err := s.userRoleRepo.Upsert(binding); err != nil {
		return nil, fmt.Errorf("failed to assign role: %w", err)
	}

	s.notifier.RoleAssigned(user, role)

	return s.toBindingResponse(binding, role.Name), nil
}

// Revoke deactivates a binding without deleting it, preserving the audit
// trail
func (s *RoleService) Revoke(userID, roleID uuid.UUID) error {
	if err := s.userRoleRepo.Deactivate(userID, roleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrRoleBindingNotFound
		}
		return fmt.Errorf("failed to revoke role: %w", err)
	}
	return nil
}

// GetBindings retrieves all of a user's bindings including inactive and
// expired ones, newest first
func (s *RoleService) GetBindings(userID uuid.UUID) ([]RoleBindingResponse, error) {
	bindings, err := s.userRoleRepo.GetByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get role bindings: %w", err)
	}
	responses := make([]RoleBindingResponse, len(bindings))
	for i := range bindings {
		name := ""
		if bindings[i].Role != nil {
			name = bindings[i].Role.Name
		}
		responses[i] = *s.toBindingResponse(&bindings[i], name)
	}
	return responses, nil
}

// GetEffectivePermissions merges the user's active, unexpired bindings in
// assignment order. An expired binding contributes nothing even while its row
// still reads active.
func (s *RoleService) GetEffectivePermissions(userID uuid.UUID) (*EffectivePermissions, error) {
	bindings, err := s.userRoleRepo.GetActiveByUser(userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to get active role bindings: %w", err)
	}

	perms := &EffectivePermissions{
		Custom:    make(map[string]interface{}),
		RoleNames: make([]string, 0, len(bindings)),
	}
	for i := range bindings {
		role := bindings[i].Role
		if role == nil {
			continue
		}
		perms.CanManageUsers = perms.CanManageUsers || role.CanManageUsers
		perms.CanManageRoles = perms.CanManageRoles || role.CanManageRoles
		perms.CanManageClients = perms.CanManageClients || role.CanManageClients
		perms.CanManageProjects = perms.CanManageProjects || role.CanManageProjects
		perms.CanManageInvoices = perms.CanManageInvoices || role.CanManageInvoices
		perms.CanManageExpenses = perms.CanManageExpenses || role.CanManageExpenses
		perms.CanManageLeads = perms.CanManageLeads || role.CanManageLeads
		perms.CanViewReports = perms.CanViewReports || role.CanViewReports
		perms.CanExportData = perms.CanExportData || role.CanExportData
		perms.CanManageSettings = perms.CanManageSettings || role.CanManageSettings
		for k, v := range role.CustomPermissions {
			perms.Custom[k] = v
		}
		perms.RoleNames = append(perms.RoleNames, role.Name)
	}
	return perms, nil
}

func (s *RoleService) toResponse(role *models.Role) *RoleResponse {
	return &RoleResponse{
		ID:                role.ID,
		TenantID:          role.TenantID,
		Name:              role.Name,
		Description:       role.Description,
		CanManageUsers:    role.CanManageUsers,
		CanManageRoles:    role.CanManageRoles,
		CanManageClients:  role.CanManageClients,
		CanManageProjects: role.CanManageProjects,
		CanManageInvoices: role.CanManageInvoices,
		CanManageExpenses: role.CanManageExpenses,
		CanManageSettings: role.CanManageSettings,
		CanManageLeads:    role.CanManageLeads,
		CanViewReports:    role.CanViewReports,
		CanExportData:     role.CanExportData,
		CustomPermissions: role.CustomPermissions,
		CreatedAt:         role.CreatedAt.Format(time.RFC3339),
	}
}

func (s *RoleService) toBindingResponse(binding *models.UserRole, roleName string) *RoleBindingResponse {
	resp := &RoleBindingResponse{
		ID:           binding.ID,
		UserID:       binding.UserID,
		RoleID:       binding.RoleID,
		RoleName:     roleName,
		AssignedByID: binding.AssignedByID,
		AssignedAt:   binding.AssignedAt.Format(time.RFC3339),
		IsActive:     binding.IsActive,
	}
	if binding.ExpiresAt != nil {
		formatted := binding.ExpiresAt.Format(time.RFC3339)
		resp.ExpiresAt = &formatted
	}
	return resp
}
