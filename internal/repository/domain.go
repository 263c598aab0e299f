package repository

import (
	"errors"

	"crm-saas-backend/internal/database/models"
	apperrors "crm-saas-backend/internal/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DomainRepository handles database operations for tenant domains.
//
// The primary-domain invariant (at most one primary per tenant, exactly one
// when the tenant has domains) is maintained entirely inside the transactional
// methods below. There is no method to write the primary flag on its own; the
// clear-then-set sequence always runs under a row lock on the tenant's domain
// set so concurrent mutations serialize per tenant.
type DomainRepository struct {
	db *gorm.DB
}

// NewDomainRepository creates a new domain repository
func NewDomainRepository(db *gorm.DB) *DomainRepository {
	return &DomainRepository{db: db}
}

// lockTenantDomains serializes primary-flag mutations per tenant and returns
// the tenant's domain rows. Locking only the domain rows is not enough: a
// tenant with no domains yet has nothing to lock, and two concurrent
// first-domain creates would both see an empty set and both insert a primary.
// The parent tenant row is therefore locked first.
func lockTenantDomains(tx *gorm.DB, tenantID uuid.UUID) ([]models.Domain, error) {
	var tenant models.Tenant
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&tenant, "id = ?", tenantID).Error; err != nil {
		return nil, err
	}

	var domains []models.Domain
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ?", tenantID).
		Order("domain ASC").
		Find(&domains).Error
	return domains, err
}

// Create attaches a domain to its tenant. If it is the tenant's only domain it
// becomes primary; otherwise the incoming primary flag is ignored and cleared.
func (r *DomainRepository) Create(domain *models.Domain) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		existing, err := lockTenantDomains(tx, domain.TenantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrTenantNotFound
			}
			return err
		}
		domain.IsPrimary = len(existing) == 0
		return tx.Create(domain).Error
	})
}

// GetByID retrieves a domain by ID
func (r *DomainRepository) GetByID(id uuid.UUID) (*models.Domain, error) {
	var domain models.Domain
	err := r.db.First(&domain, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &domain, nil
}

// GetByName retrieves a domain by its hostname
func (r *DomainRepository) GetByName(name string) (*models.Domain, error) {
	var domain models.Domain
	err := r.db.First(&domain, "domain = ?", name).Error
	if err != nil {
		return nil, err
	}
	return &domain, nil
}

// GetByTenantID retrieves all domains of a tenant, primary first
func (r *DomainRepository) GetByTenantID(tenantID uuid.UUID) ([]models.Domain, error) {
	var domains []models.Domain
	err := r.db.
		Where("tenant_id = ?", tenantID).
		Order("is_primary DESC, domain ASC").
		Find(&domains).Error
	return domains, err
}

// GetPrimaryByTenantID retrieves the tenant's primary domain
func (r *DomainRepository) GetPrimaryByTenantID(tenantID uuid.UUID) (*models.Domain, error) {
	var domain models.Domain
	err := r.db.First(&domain, "tenant_id = ? AND is_primary = true", tenantID).Error
	if err != nil {
		return nil, err
	}
	return &domain, nil
}

// SetPrimary atomically clears the primary flag on every other domain of the
// tenant and sets it on the target. Returns ErrDomainNotFound when the domain
// does not exist under the tenant.
func (r *DomainRepository) SetPrimary(tenantID, domainID uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		domains, err := lockTenantDomains(tx, tenantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrDomainNotFound
			}
			return err
		}

		found := false
		for i := range domains {
			if domains[i].ID == domainID {
				found = true
				break
			}
		}
		if !found {
			return apperrors.ErrDomainNotFound
		}

		if err := tx.Model(&models.Domain{}).
			Where("tenant_id = ? AND id <> ?", tenantID, domainID).
			Update("is_primary", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.Domain{}).
			Where("id = ?", domainID).
			Update("is_primary", true).Error
	})
}

// Delete removes a domain. If the deleted domain was primary, the remaining
// domain with the lowest name is promoted so the invariant holds; a tenant
// whose last domain is removed legally ends up with no primary.
func (r *DomainRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Unlocked read just to learn the tenant; the authoritative state is
		// re-read under the tenant lock below. Locking the tenant before any
		// domain row keeps the lock order identical to Create and SetPrimary.
		var peek models.Domain
		if err := tx.First(&peek, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrDomainNotFound
			}
			return err
		}

		siblings, err := lockTenantDomains(tx, peek.TenantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrDomainNotFound
			}
			return err
		}

		var domain *models.Domain
		for i := range siblings {
			if siblings[i].ID == id {
				domain = &siblings[i]
				break
			}
		}
		if domain == nil {
			return apperrors.ErrDomainNotFound
		}

		if err := tx.Delete(&models.Domain{}, "id = ?", id).Error; err != nil {
			return err
		}

		if !domain.IsPrimary {
			return nil
		}

		// Promote the lowest remaining domain name, deterministically
		for i := range siblings {
			if siblings[i].ID == id {
				continue
			}
			return tx.Model(&models.Domain{}).
				Where("id = ?", siblings[i].ID).
				Update("is_primary", true).Error
		}
		return nil
	})
}

// Update updates the verification state of a domain. The primary flag is
// deliberately excluded; it is only written by Create, SetPrimary and Delete.
func (r *DomainRepository) Update(domain *models.Domain) error {
	return r.db.Model(&models.Domain{}).
		Where("id = ?", domain.ID).
		Select("verified", "verification_method", "verification_token", "updated_at").
		Updates(domain).Error
}
