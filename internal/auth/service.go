package auth

import (
	"errors"
	"fmt"
	"time"

	"crm-saas-backend/internal/database/models"
	apperrors "crm-saas-backend/internal/errors"
	"crm-saas-backend/internal/repository"
	"crm-saas-backend/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	tokenIssuer   = "crm-saas-backend"
	tokenAudience = "crm-saas"

	failureBadPassword  = "bad_password"
	failureUnknownEmail = "unknown_email"
	failureInactive     = "user_inactive"
	failureTenantOff    = "tenant_inactive"
)

// AuthClaims represents JWT token claims
type AuthClaims struct {
	UserID        uuid.UUID  `json:"user_id"`
	Email         string     `json:"email" example:"jane.doe@example.com"`
	TenantID      *uuid.UUID `json:"tenant_id,omitempty"`
	IsSuperuser   bool       `json:"is_superuser"`
	IsTenantAdmin bool       `json:"is_tenant_admin"`
	jwt.RegisteredClaims
}

// AuthService issues and validates access tokens and drives the login flow,
// recording every attempt in the audit trail
type AuthService struct {
	userRepo   repository.UserRepositoryInterface
	tenantRepo repository.TenantRepositoryInterface
	users      service.UserServiceInterface
	secret     []byte
	expiry     time.Duration
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo repository.UserRepositoryInterface,
	tenantRepo repository.TenantRepositoryInterface,
	users service.UserServiceInterface,
	secret string,
	expiry time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tenantRepo: tenantRepo,
		users:      users,
		secret:     []byte(secret),
		expiry:     expiry,
	}
}

// LoginRequest represents the request to authenticate
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a successful authentication
type LoginResponse struct {
	AccessToken         string     `json:"access_token"`
	TokenType           string     `json:"token_type" example:"bearer"`
	ExpiresIn           int64      `json:"expires_in"`
	UserID              uuid.UUID  `json:"user_id"`
	TenantID            *uuid.UUID `json:"tenant_id,omitempty"`
	ForcePasswordChange bool       `json:"force_password_change"`
	TwoFactorRequired   bool       `json:"two_factor_required"`
}

// Login verifies credentials and issues a token. Failures are recorded with a
// reason; the caller gets the same invalid-credentials error whether the email
// is unknown or the password wrong.
func (s *AuthService) Login(req *LoginRequest, ip, userAgent string) (*LoginResponse, error) {
	email := service.NormalizeEmail(req.Email)

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if recErr := s.users.RecordLogin(nil, email, ip, userAgent, false, failureUnknownEmail); recErr != nil {
				logrus.WithError(recErr).Warn("failed to record login attempt")
			}
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.users.VerifyPassword(user, req.Password) {
		if recErr := s.users.RecordLogin(user, email, ip, userAgent, false, failureBadPassword); recErr != nil {
			logrus.WithError(recErr).Warn("failed to record login attempt")
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		if recErr := s.users.RecordLogin(user, email, ip, userAgent, false, failureInactive); recErr != nil {
			logrus.WithError(recErr).Warn("failed to record login attempt")
		}
		return nil, apperrors.ErrUserInactive
	}

	if user.TenantID != nil {
		tenant, err := s.tenantRepo.GetByID(*user.TenantID)
		if err != nil {
			return nil, fmt.Errorf("failed to get tenant: %w", err)
		}
		if !tenant.IsActive {
			if recErr := s.users.RecordLogin(user, email, ip, userAgent, false, failureTenantOff); recErr != nil {
				logrus.WithError(recErr).Warn("failed to record login attempt")
			}
			return nil, apperrors.ErrTenantInactive
		}
	}

	if err := s.users.RecordLogin(user, email, ip, userAgent, true, ""); err != nil {
		return nil, err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		AccessToken:         token,
		TokenType:           "bearer",
		ExpiresIn:           int64(s.expiry.Seconds()),
		UserID:              user.ID,
		TenantID:            user.TenantID,
		ForcePasswordChange: user.ForcePasswordChange,
		TwoFactorRequired:   user.TwoFactorEnabled,
	}, nil
}

// IssueToken signs an access token carrying the user's identity and tenant
// scope
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &AuthClaims{
		UserID:        user.ID,
		Email:         user.Email,
		TenantID:      user.TenantID,
		IsSuperuser:   user.IsSuperuser,
		IsTenantAdmin: user.IsTenantAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateJWT parses and validates an access token
func (s *AuthService) ValidateJWT(tokenString string) (*AuthClaims, error) {
	claims := &AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithAudience(tokenAudience))
	if err != nil || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}
