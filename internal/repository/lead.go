package repository

import (
	"crm-saas-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LeadRepository handles database operations for leads
type LeadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create creates a new lead
func (r *LeadRepository) Create(lead *models.Lead) error {
	return r.db.Create(lead).Error
}

// GetByID retrieves a lead scoped to a tenant
func (r *LeadRepository) GetByID(tenantID, id uuid.UUID) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.First(&lead, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// GetByTenantID retrieves a tenant's leads with pagination, optionally
// filtered by status
func (r *LeadRepository) GetByTenantID(tenantID uuid.UUID, status models.LeadStatus, limit, offset int) ([]models.Lead, int64, error) {
	var leads []models.Lead
	var total int64

	query := r.db.Model(&models.Lead{}).Where("tenant_id = ?", tenantID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&leads).Error
	if err != nil {
		return nil, 0, err
	}

	return leads, total, nil
}

// ConvertToClient creates the client and marks the lead converted in one
// transaction
func (r *LeadRepository) ConvertToClient(lead *models.Lead, client *models.Client) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(client).Error; err != nil {
			return err
		}
		return tx.Model(&models.Lead{}).
			Where("id = ?", lead.ID).
			Updates(map[string]interface{}{
				"status":              models.LeadStatusConverted,
				"converted_client_id": client.ID,
			}).Error
	})
}

// Update updates a lead
func (r *LeadRepository) Update(lead *models.Lead) error {
	return r.db.Save(lead).Error
}

// Delete deletes a lead scoped to a tenant
func (r *LeadRepository) Delete(tenantID, id uuid.UUID) error {
	result := r.db.Delete(&models.Lead{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
