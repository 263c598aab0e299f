package repository

import (
	"crm-saas-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TenantRepository handles database operations for tenants
type TenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// CreateWithSettings creates a tenant together with its cascaded settings
// record in a single transaction. Callers cannot create a tenant without one.
func (r *TenantRepository) CreateWithSettings(tenant *models.Tenant, settings *models.TenantSettings) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tenant).Error; err != nil {
			return err
		}
		settings.TenantID = tenant.ID
		return tx.Create(settings).Error
	})
}

// GetByID retrieves a tenant by ID
func (r *TenantRepository) GetByID(id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.First(&tenant, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetBySlug retrieves a tenant by slug
func (r *TenantRepository) GetBySlug(slug string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.First(&tenant, "slug = ?", slug).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetByDomainName resolves a tenant from one of its attached domains
func (r *TenantRepository) GetByDomainName(hostname string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.
		Joins("JOIN domains ON domains.tenant_id = tenants.id").
		Where("domains.domain = ?", hostname).
		First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetWithDomains retrieves a tenant with its domains
func (r *TenantRepository) GetWithDomains(id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.Preload("Domains").First(&tenant, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetWithSettings retrieves a tenant with its settings record
func (r *TenantRepository) GetWithSettings(id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.Preload("Settings").First(&tenant, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetAll retrieves all tenants with pagination
func (r *TenantRepository) GetAll(limit, offset int) ([]models.Tenant, int64, error) {
	var tenants []models.Tenant
	var total int64

	if err := r.db.Model(&models.Tenant{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Limit(limit).Offset(offset).Order("name ASC").Find(&tenants).Error
	if err != nil {
		return nil, 0, err
	}

	return tenants, total, nil
}

// CountUsers returns the number of users attached to a tenant
func (r *TenantRepository) CountUsers(id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("tenant_id = ?", id).Count(&count).Error
	return count, err
}

// Update updates a tenant
func (r *TenantRepository) Update(tenant *models.Tenant) error {
	return r.db.Save(tenant).Error
}

// UpdateSettings updates a tenant's settings record
func (r *TenantRepository) UpdateSettings(settings *models.TenantSettings) error {
	return r.db.Save(settings).Error
}

// Delete deletes a tenant and, via cascade, its domains, settings, users,
// roles, clients and leads
func (r *TenantRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Tenant{}, "id = ?", id).Error
}
