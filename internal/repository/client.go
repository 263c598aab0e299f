package repository

import (
	"crm-saas-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientRepository handles database operations for clients and their contacts
type ClientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// Create creates a new client
func (r *ClientRepository) Create(client *models.Client) error {
	return r.db.Create(client).Error
}

// GetByID retrieves a client scoped to a tenant. A client belonging to another
// tenant reads as not found.
func (r *ClientRepository) GetByID(tenantID, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	err := r.db.First(&client, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// GetByName retrieves a client by name within a tenant
func (r *ClientRepository) GetByName(tenantID uuid.UUID, name string) (*models.Client, error) {
	var client models.Client
	err := r.db.First(&client, "tenant_id = ? AND name = ?", tenantID, name).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// GetByTenantID retrieves a tenant's clients with pagination
func (r *ClientRepository) GetByTenantID(tenantID uuid.UUID, limit, offset int) ([]models.Client, int64, error) {
	var clients []models.Client
	var total int64

	if err := r.db.Model(&models.Client{}).Where("tenant_id = ?", tenantID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Limit(limit).Offset(offset).
		Find(&clients).Error
	if err != nil {
		return nil, 0, err
	}

	return clients, total, nil
}

// GetWithContacts retrieves a client with its contacts
func (r *ClientRepository) GetWithContacts(tenantID, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	err := r.db.Preload("Contacts").First(&client, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// Update updates a client
func (r *ClientRepository) Update(client *models.Client) error {
	return r.db.Save(client).Error
}

// Delete deletes a client scoped to a tenant; contacts cascade away
func (r *ClientRepository) Delete(tenantID, id uuid.UUID) error {
	result := r.db.Delete(&models.Client{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateContact creates a new contact under a client
func (r *ClientRepository) CreateContact(contact *models.Contact) error {
	return r.db.Create(contact).Error
}

// GetContactByEmail retrieves a contact by email within a tenant
func (r *ClientRepository) GetContactByEmail(tenantID uuid.UUID, email string) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.First(&contact, "tenant_id = ? AND email = ?", tenantID, email).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}
