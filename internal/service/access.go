package service

import (
	"errors"
	"fmt"

	apperrors "crm-saas-backend/internal/errors"
	"crm-saas-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PermissionChecker resolves a user's merged permission set
type PermissionChecker interface {
	GetEffectivePermissions(userID uuid.UUID) (*EffectivePermissions, error)
}

// AccessService answers capability questions about a user. Checks short-
// circuit in a fixed order: an inactive account is always denied, a superuser
// is always allowed, a tenant admin is allowed everything inside their own
// tenant, and everyone else falls through to their effective role
// permissions.
type AccessService struct {
	userRepo repository.UserRepositoryInterface
	perms    PermissionChecker
}

// NewAccessService creates a new access service
func NewAccessService(userRepo repository.UserRepositoryInterface, perms PermissionChecker) *AccessService {
	return &AccessService{userRepo: userRepo, perms: perms}
}

// AccessDecision carries the outcome of a capability check along with the
// rule that produced it
type AccessDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

const (
	decisionInactive    = "user_inactive"
	decisionSuperuser   = "superuser"
	decisionTenantAdmin = "tenant_admin"
	decisionRoleGrant   = "role_grant"
	decisionNoGrant     = "no_grant"
)

// Can evaluates whether the user may exercise a capability. Custom permission
// keys are honored alongside the built-in capability flags: a custom entry
// grants when it is present and not explicitly false.
func (s *AccessService) Can(userID uuid.UUID, capability string) (*AccessDecision, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.IsActive {
		return &AccessDecision{Allowed: false, Reason: decisionInactive}, nil
	}
	if user.IsSuperuser {
		return &AccessDecision{Allowed: true, Reason: decisionSuperuser}, nil
	}
	if user.IsTenantAdmin {
		return &AccessDecision{Allowed: true, Reason: decisionTenantAdmin}, nil
	}

	perms, err := s.perms.GetEffectivePermissions(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve permissions: %w", err)
	}

	if perms.HasCapability(capability) || customGrants(perms.Custom, capability) {
		return &AccessDecision{Allowed: true, Reason: decisionRoleGrant}, nil
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"capability": capability,
	}).Debug("capability denied")
	return &AccessDecision{Allowed: false, Reason: decisionNoGrant}, nil
}

// CanAccessTenant reports whether the user may touch resources of the given
// tenant. Superusers cross tenant boundaries; everyone else is confined to
// their own.
func (s *AccessService) CanAccessTenant(userID, tenantID uuid.UUID) (bool, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperrors.ErrUserNotFound
		}
		return false, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.IsActive {
		return false, nil
	}
	if user.IsSuperuser {
		return true, nil
	}
	return user.TenantID != nil && *user.TenantID == tenantID, nil
}

func customGrants(custom map[string]interface{}, capability string) bool {
	v, ok := custom[capability]
	if !ok {
		return false
	}
	if b, isBool := v.(bool); isBool {
		return b
	}
	return true
}
