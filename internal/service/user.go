package service

import (
	"crypto/rand"
	"encoding/base32"
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
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginAttemptRetention is the minimum age of login-audit rows before they may
// be purged
const LoginAttemptRetention = 90 * 24 * time.Hour

// UserService owns the identity store: account lifecycle, password and 2FA
// state, and the append-only login audit trail
type UserService struct {
	repo        repository.UserRepositoryInterface
	tenantRepo  repository.TenantRepositoryInterface
	attemptRepo repository.LoginAttemptRepositoryInterface
	validator   *validator.Validate
	notifier    Notifier
	bcryptCost  int
}

// NewUserService creates a new user service
func NewUserService(
	repo repository.UserRepositoryInterface,
	tenantRepo repository.TenantRepositoryInterface,
	attemptRepo repository.LoginAttemptRepositoryInterface,
	validator *validator.Validate,
	notifier Notifier,
	bcryptCost int,
) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{
		repo:        repo,
		tenantRepo:  tenantRepo,
		attemptRepo: attemptRepo,
		validator:   validator,
		notifier:    notifier,
		bcryptCost:  bcryptCost,
	}
}

// CreateUserRequest represents the request to create a user
type CreateUserRequest struct {
	Email         string     `json:"email" validate:"required,email,max=255"`
	Password      string     `json:"password" validate:"required,min=8,max=128"`
	TenantID      *uuid.UUID `json:"tenant_id,omitempty"`
	FirstName     string     `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName      string     `json:"last_name,omitempty" validate:"omitempty,max=100"`
	Phone         string     `json:"phone,omitempty" validate:"omitempty,e164"`
	JobTitle      string     `json:"job_title,omitempty" validate:"omitempty,max=100"`
	Department    string     `json:"department,omitempty" validate:"omitempty,max=100"`
	IsSuperuser   bool       `json:"is_superuser,omitempty"`
	IsTenantAdmin bool       `json:"is_tenant_admin,omitempty"`
}

// UpdateUserRequest represents the request to update a user
type UpdateUserRequest struct {
	FirstName     string `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName      string `json:"last_name,omitempty" validate:"omitempty,max=100"`
	Phone         string `json:"phone,omitempty" validate:"omitempty,e164"`
	JobTitle      string `json:"job_title,omitempty" validate:"omitempty,max=100"`
	Department    string `json:"department,omitempty" validate:"omitempty,max=100"`
	IsActive      *bool  `json:"is_active,omitempty"`
	IsTenantAdmin *bool  `json:"is_tenant_admin,omitempty"`
}

// UserResponse represents the response for user operations
type UserResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Email               string     `json:"email"`
	TenantID            *uuid.UUID `json:"tenant_id,omitempty"`
	FirstName           string     `json:"first_name,omitempty"`
	LastName            string     `json:"last_name,omitempty"`
	IsActive            bool       `json:"is_active"`
	IsSuperuser         bool       `json:"is_superuser"`
	IsTenantAdmin       bool       `json:"is_tenant_admin"`
	TwoFactorEnabled    bool       `json:"two_factor_enabled"`
	ForcePasswordChange bool       `json:"force_password_change"`
	APIAccessEnabled    bool       `json:"api_access_enabled"`
	LastLoginIP         string     `json:"last_login_ip,omitempty"`
	CreatedAt           string     `json:"created_at"`
}

// UserListResponse represents a paginated list of users
type UserListResponse struct {
	Users    []UserResponse `json:"users"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// LoginAttemptResponse represents one row of a user's login history
type LoginAttemptResponse struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	IPAddress     string    `json:"ip_address"`
	UserAgent     string    `json:"user_agent,omitempty"`
	Successful    bool      `json:"successful"`
	FailureReason string    `json:"failure_reason,omitempty"`
	CreatedAt     string    `json:"created_at"`
}

// NormalizeEmail case-folds the domain portion of an address, the part that is
// insensitive per the mail RFCs, and trims surrounding whitespace. The local
// part is preserved as given.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

// Create creates a user: normalized unique email, bcrypt password hash, fresh
// API key, password-changed stamp. A superuser request must not carry a
// tenant; a tenant-bound request fails when the tenant is missing, inactive or
// at its user limit.
func (s *UserService) Create(req *CreateUserRequest) (*UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if req.IsSuperuser && req.TenantID != nil {
		return nil, apperrors.ErrSuperuserWithTenant
	}

	email := NormalizeEmail(req.Email)
	existing, err := s.repo.GetByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user by email: %w", err)
	}
	if existing != nil {
		return nil, apperrors.ErrUserExists
	}

	if req.TenantID != nil {
		tenant, err := s.tenantRepo.GetByID(*req.TenantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrTenantNotFound
			}
			return nil, fmt.Errorf("failed to get tenant: %w", err)
		}
		if !tenant.IsActive {
			return nil, apperrors.ErrTenantInactive
		}
		count, err := s.tenantRepo.CountUsers(tenant.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count tenant users: %w", err)
		}
		if count >= int64(tenant.MaxUsers) {
			return nil, apperrors.ErrUserLimitReached
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		Email:             email,
		TenantID:          req.TenantID,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Phone:             req.Phone,
		JobTitle:          req.JobTitle,
		Department:        req.Department,
		IsActive:          true,
		IsSuperuser:       req.IsSuperuser,
		IsTenantAdmin:     req.IsTenantAdmin,
		PasswordHash:      string(hash),
		PasswordChangedAt: &now,
		APIKey:            uuid.New(),
		Language:          "en",
		Timezone:          "UTC",
	}

	if err := s.repo.Create(user); err != nil {
		return nil, translateDuplicate(err, apperrors.ErrUserExists, "failed to create user")
	}

	s.notifier.UserInvited(user)

	return s.toResponse(user), nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(id uuid.UUID) (*UserResponse, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return s.toResponse(user), nil
}

// GetByEmail retrieves a user by their normalized email
func (s *UserService) GetByEmail(email string) (*UserResponse, error) {
	user, err := s.repo.GetByEmail(NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return s.toResponse(user), nil
}

// GetByTenant retrieves a tenant's users with pagination
func (s *UserService) GetByTenant(tenantID uuid.UUID, page, pageSize int) (*UserListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	offset := (page - 1) * pageSize
	users, total, err := s.repo.GetByTenantID(tenantID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = *s.toResponse(&users[i])
	}

	return &UserListResponse{
		Users:    responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Update updates a user's profile and flags
func (s *UserService) Update(id uuid.UUID, req *UpdateUserRequest) (*UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.JobTitle != "" {
		user.JobTitle = req.JobTitle
	}
	if req.Department != "" {
		user.Department = req.Department
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.IsTenantAdmin != nil {
		user.IsTenantAdmin = *req.IsTenantAdmin
	}

	if err := s.repo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return s.toResponse(user), nil
}

// ChangePassword rehashes the password, stamps the change time and clears the
// forced-change flag
func (s *UserService) ChangePassword(id uuid.UUID, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.NewValidationError("password", "must be at least 8 characters")
	}

	user, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user.PasswordHash = string(hash)
	user.PasswordChangedAt = &now
	user.ForcePasswordChange = false

	if err := s.repo.Update(user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	s.notifier.SecurityEvent(user, "password_changed")
	return nil
}

// VerifyPassword checks a candidate password against the stored hash
func (s *UserService) VerifyPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// RecordLogin appends a login attempt and, on success, stamps the user's
// session-tracking fields. The attempt row is written even when the user is
// unknown.
func (s *UserService) RecordLogin(user *models.User, email, ip, userAgent string, success bool, reason string) error {
	attempt := &models.LoginAttempt{
		Email:         NormalizeEmail(email),
		IPAddress:     ip,
		UserAgent:     userAgent,
		Successful:    success,
		FailureReason: reason,
	}
	if user != nil {
		attempt.UserID = &user.ID
	}

	if err := s.attemptRepo.Create(attempt); err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}

	if success && user != nil {
		if err := s.repo.UpdateLoginInfo(user.ID, ip, time.Now()); err != nil {
			return fmt.Errorf("failed to update login info: %w", err)
		}
	}
	return nil
}

// LoginHistory retrieves a user's login attempts, newest first
func (s *UserService) LoginHistory(userID uuid.UUID, page, pageSize int) ([]LoginAttemptResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	attempts, total, err := s.attemptRepo.GetByUser(userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get login history: %w", err)
	}

	responses := make([]LoginAttemptResponse, len(attempts))
	for i := range attempts {
		responses[i] = LoginAttemptResponse{
			ID:            attempts[i].ID,
			Email:         attempts[i].Email,
			IPAddress:     attempts[i].IPAddress,
			UserAgent:     attempts[i].UserAgent,
			Successful:    attempts[i].Successful,
			FailureReason: attempts[i].FailureReason,
			CreatedAt:     attempts[i].CreatedAt.Format(time.RFC3339),
		}
	}
	return responses, total, nil
}

// PurgeLoginAttempts removes audit rows older than the retention threshold.
// Callers cannot shorten the window.
func (s *UserService) PurgeLoginAttempts(olderThan time.Duration) (int64, error) {
	if olderThan < LoginAttemptRetention {
		return 0, apperrors.ErrRetentionNotElapsed
	}
	deleted, err := s.attemptRepo.DeleteOlderThan(time.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("failed to purge login attempts: %w", err)
	}
	if deleted > 0 {
		logrus.WithField("deleted", deleted).Info("purged expired login attempts")
	}
	return deleted, nil
}

// EnableTwoFactor generates and stores a fresh shared secret, returning it for
// enrollment. Verification of one-time codes happens at the session boundary.
func (s *UserService) EnableTwoFactor(id uuid.UUID) (string, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	secret, err := generateTwoFactorSecret()
	if err != nil {
		return "", fmt.Errorf("failed to generate 2FA secret: %w", err)
	}

	user.TwoFactorEnabled = true
	user.TwoFactorSecret = secret
	if err := s.repo.Update(user); err != nil {
		return "", fmt.Errorf("failed to update user: %w", err)
	}

	s.notifier.SecurityEvent(user, "two_factor_enabled")
	return secret, nil
}

// DisableTwoFactor clears the user's 2FA state
func (s *UserService) DisableTwoFactor(id uuid.UUID) error {
	user, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	user.TwoFactorEnabled = false
	user.TwoFactorSecret = ""
	if err := s.repo.Update(user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	s.notifier.SecurityEvent(user, "two_factor_disabled")
	return nil
}

// Delete deletes a user
func (s *UserService) Delete(id uuid.UUID) error {
	if _, err := s.repo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	return s.repo.Delete(id)
}

func (s *UserService) toResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:                  user.ID,
		Email:               user.Email,
		TenantID:            user.TenantID,
		FirstName:           user.FirstName,
		LastName:            user.LastName,
		IsActive:            user.IsActive,
		IsSuperuser:         user.IsSuperuser,
		IsTenantAdmin:       user.IsTenantAdmin,
		TwoFactorEnabled:    user.TwoFactorEnabled,
		ForcePasswordChange: user.ForcePasswordChange,
		APIAccessEnabled:    user.APIAccessEnabled,
		LastLoginIP:         user.LastLoginIP,
		CreatedAt:           user.CreatedAt.Format(time.RFC3339),
	}
}

// generateTwoFactorSecret returns a 160-bit base32 secret suitable for TOTP
// enrollment
func generateTwoFactorSecret() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf), nil
}
