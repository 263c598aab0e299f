package errors

import (
	"errors"
	"fmt"
)

// NotFoundError represents an error when an entity is not found, or is out of
// the caller's tenant scope. Out-of-scope lookups report not-found rather than
// leaking existence.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// Is enables errors.Is() comparison for NotFoundError
func (e *NotFoundError) Is(target error) bool {
	t, ok := target.(*NotFoundError)
	if !ok {
		return false
	}
	return e.Entity == t.Entity
}

// AlreadyExistsError represents a uniqueness violation
type AlreadyExistsError struct {
	Entity  string
	Context string // Additional context like "in tenant"
}

func (e *AlreadyExistsError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s already exists %s", e.Entity, e.Context)
	}
	return fmt.Sprintf("%s already exists", e.Entity)
}

// Is enables errors.Is() comparison for AlreadyExistsError
func (e *AlreadyExistsError) Is(target error) bool {
	t, ok := target.(*AlreadyExistsError)
	if !ok {
		return false
	}
	return e.Entity == t.Entity
}

// ValidationError represents a user-correctable format or constraint violation,
// surfaced with field-level detail
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ConflictError represents an invariant race detected at write time, such as
// two concurrent primary-domain updates. Recoverable by retry.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// AuthenticationError represents authentication-related errors
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// AuthorizationError represents authorization-related errors
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// Entity Not Found Errors
var (
	ErrTenantNotFound       = &NotFoundError{Entity: "tenant"}
	ErrDomainNotFound       = &NotFoundError{Entity: "domain"}
	ErrUserNotFound         = &NotFoundError{Entity: "user"}
	ErrRoleNotFound         = &NotFoundError{Entity: "role"}
	ErrRoleBindingNotFound  = &NotFoundError{Entity: "role binding"}
	ErrClientNotFound       = &NotFoundError{Entity: "client"}
	ErrContactNotFound      = &NotFoundError{Entity: "contact"}
	ErrLeadNotFound         = &NotFoundError{Entity: "lead"}
	ErrLoginAttemptNotFound = &NotFoundError{Entity: "login attempt"}
)

// Already Exists Errors
var (
	ErrTenantExists  = &AlreadyExistsError{Entity: "tenant", Context: "with this slug"}
	ErrDomainExists  = &AlreadyExistsError{Entity: "domain", Context: "with this name"}
	ErrUserExists    = &AlreadyExistsError{Entity: "user", Context: "with this email"}
	ErrRoleExists    = &AlreadyExistsError{Entity: "role", Context: "with this name in the tenant"}
	ErrClientExists  = &AlreadyExistsError{Entity: "client", Context: "with this name in the tenant"}
	ErrContactExists = &AlreadyExistsError{Entity: "contact", Context: "with this email in the tenant"}
)

// Business Logic Errors
var (
	ErrCrossTenantAssignment = &ValidationError{Field: "role", Message: "user and role belong to different tenants"}
	ErrSuperuserWithTenant   = &ValidationError{Field: "tenant", Message: "a superuser cannot belong to a tenant"}
	ErrInvalidLeadStatus     = errors.New("invalid lead status")
	ErrLeadAlreadyConverted  = errors.New("lead has already been converted")
	ErrRetentionNotElapsed   = errors.New("login attempts can only be purged past the retention threshold")
	ErrPrimaryDomainConflict = &ConflictError{Message: "concurrent primary-domain update detected"}
	ErrUserLimitReached      = errors.New("tenant has reached its user limit")
	ErrTenantInactive        = errors.New("tenant is not active")
)

// Authentication Errors
var (
	ErrInvalidCredentials = &AuthenticationError{Message: "invalid email or password"}
	ErrUserInactive       = &AuthenticationError{Message: "user account is disabled"}
	ErrTwoFactorRequired  = &AuthenticationError{Message: "two-factor verification required"}
	ErrInvalidToken       = &AuthenticationError{Message: "invalid or expired token"}
	ErrUserEmailNotInCtx  = &AuthenticationError{Message: "user email not found in context"}
	ErrCapabilityDenied   = &AuthorizationError{Message: "capability check failed"}
)

// Helper Functions

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsAlreadyExists checks if an error is an AlreadyExistsError
func IsAlreadyExists(err error) bool {
	var existsErr *AlreadyExistsError
	return errors.As(err, &existsErr)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsConflict checks if an error is a ConflictError
func IsConflict(err error) bool {
	var conflictErr *ConflictError
	return errors.As(err, &conflictErr)
}

// IsAuthentication checks if an error is an AuthenticationError
func IsAuthentication(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}

// IsAuthorization checks if an error is an AuthorizationError
func IsAuthorization(err error) bool {
	var authzErr *AuthorizationError
	return errors.As(err, &authzErr)
}

// NewNotFoundError creates a new NotFoundError for a custom entity
func NewNotFoundError(entity string) error {
	return &NotFoundError{Entity: entity}
}

// NewAlreadyExistsError creates a new AlreadyExistsError for a custom entity
func NewAlreadyExistsError(entity, context string) error {
	return &AlreadyExistsError{Entity: entity, Context: context}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConflictError creates a new ConflictError
func NewConflictError(message string) error {
	return &ConflictError{Message: message}
}

// NewAuthenticationError creates a new AuthenticationError
func NewAuthenticationError(message string) error {
	return &AuthenticationError{Message: message}
}

// NewAuthorizationError creates a new AuthorizationError
func NewAuthorizationError(message string) error {
	return &AuthorizationError{Message: message}
}
