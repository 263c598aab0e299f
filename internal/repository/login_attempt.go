package repository

import (
	"time"

	"crm-saas-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoginAttemptRepository handles database operations for the login audit log.
// Records are append-only: there is no update method, and deletion is limited
// to rows older than a cutoff supplied by the service.
type LoginAttemptRepository struct {
	db *gorm.DB
}

// NewLoginAttemptRepository creates a new login-attempt repository
func NewLoginAttemptRepository(db *gorm.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db}
}

// Create appends a login attempt
func (r *LoginAttemptRepository) Create(attempt *models.LoginAttempt) error {
	return r.db.Create(attempt).Error
}

// GetByUser retrieves a user's attempts, newest first
func (r *LoginAttemptRepository) GetByUser(userID uuid.UUID, limit, offset int) ([]models.LoginAttempt, int64, error) {
	var attempts []models.LoginAttempt
	var total int64

	if err := r.db.Model(&models.LoginAttempt{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&attempts).Error
	if err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

// GetByEmail retrieves attempts recorded against an email, newest first.
// Covers failed attempts where no user row matched.
func (r *LoginAttemptRepository) GetByEmail(email string, limit, offset int) ([]models.LoginAttempt, int64, error) {
	var attempts []models.LoginAttempt
	var total int64

	if err := r.db.Model(&models.LoginAttempt{}).Where("email = ?", email).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Where("email = ?", email).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&attempts).Error
	if err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

// CountRecentFailures counts failed attempts against an email since the given
// instant, for lockout signalling
func (r *LoginAttemptRepository) CountRecentFailures(email string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.LoginAttempt{}).
		Where("email = ? AND successful = false AND created_at > ?", email, since).
		Count(&count).Error
	return count, err
}

// DeleteOlderThan removes attempts created before the cutoff and returns how
// many rows went away
func (r *LoginAttemptRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&models.LoginAttempt{})
	return result.RowsAffected, result.Error
}
