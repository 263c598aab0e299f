package repository

import (
	"time"

	"crm-saas-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRoleRepository handles database operations for role bindings
type UserRoleRepository struct {
	db *gorm.DB
}

// NewUserRoleRepository creates a new user-role repository
func NewUserRoleRepository(db *gorm.DB) *UserRoleRepository {
	return &UserRoleRepository{db: db}
}

// Upsert inserts a binding or, when one already exists for the (user, role)
// pair, updates it in place. A single ON CONFLICT statement, not an
// exists-check-then-insert, so concurrent assignments cannot produce duplicate
// rows; the last committed write wins.
func (r *UserRoleRepository) Upsert(binding *models.UserRole) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "role_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"assigned_by_id", "assigned_at", "expires_at", "is_active", "updated_at",
		}),
	}).Create(binding).Error
}

// GetByUserAndRole retrieves the binding for a (user, role) pair
func (r *UserRoleRepository) GetByUserAndRole(userID, roleID uuid.UUID) (*models.UserRole, error) {
	var binding models.UserRole
	err := r.db.First(&binding, "user_id = ? AND role_id = ?", userID, roleID).Error
	if err != nil {
		return nil, err
	}
	return &binding, nil
}

// GetActiveByUser retrieves the user's currently effective bindings with their
// roles preloaded: active, and either without expiry or expiring after now.
// Expired-but-flagged-active rows are excluded here, at read time; no
// background job flips the flag. Ordered by assignment time ascending so that
// merge logic visiting them in order lets the later assignment win.
func (r *UserRoleRepository) GetActiveByUser(userID uuid.UUID, now time.Time) ([]models.UserRole, error) {
	var bindings []models.UserRole
	err := r.db.Preload("Role").
		Where("user_id = ? AND is_active = true AND (expires_at IS NULL OR expires_at > ?)", userID, now).
		Order("assigned_at ASC").
		Find(&bindings).Error
	return bindings, err
}

// GetByUser retrieves all bindings of a user, including revoked and expired
// ones, newest assignment first. Used by audit consumers.
func (r *UserRoleRepository) GetByUser(userID uuid.UUID) ([]models.UserRole, error) {
	var bindings []models.UserRole
	err := r.db.Preload("Role").
		Where("user_id = ?", userID).
		Order("assigned_at DESC").
		Find(&bindings).Error
	return bindings, err
}

// Deactivate soft-revokes the binding for a (user, role) pair, preserving the
// row for audit history
func (r *UserRoleRepository) Deactivate(userID, roleID uuid.UUID) error {
	result := r.db.Model(&models.UserRole{}).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
