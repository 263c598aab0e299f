package repository

import (
	"crm-saas-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleRepository handles database operations for roles
type RoleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// Create creates a new role
func (r *RoleRepository) Create(role *models.Role) error {
	return r.db.Create(role).Error
}

// GetByID retrieves a role by ID
func (r *RoleRepository) GetByID(id uuid.UUID) (*models.Role, error) {
	var role models.Role
	err := r.db.First(&role, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// GetByName retrieves a role by name within a tenant, case-insensitively
func (r *RoleRepository) GetByName(tenantID uuid.UUID, name string) (*models.Role, error) {
	var role models.Role
	err := r.db.First(&role, "tenant_id = ? AND LOWER(name) = LOWER(?)", tenantID, name).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// GetByTenantID retrieves all roles of a tenant with pagination
func (r *RoleRepository) GetByTenantID(tenantID uuid.UUID, limit, offset int) ([]models.Role, int64, error) {
	var roles []models.Role
	var total int64

	if err := r.db.Model(&models.Role{}).Where("tenant_id = ?", tenantID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Limit(limit).Offset(offset).
		Find(&roles).Error
	if err != nil {
		return nil, 0, err
	}

	return roles, total, nil
}

// Update updates a role
func (r *RoleRepository) Update(role *models.Role) error {
	return r.db.Save(role).Error
}

// Delete deletes a role; bindings cascade away
func (r *RoleRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Role{}, "id = ?", id).Error
}
