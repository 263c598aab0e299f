package service_test

import (
	"testing"
	"time"

	"crm-saas-backend/internal/database/models"
	apperrors "crm-saas-backend/internal/errors"
	"crm-saas-backend/internal/mocks"
	"crm-saas-backend/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserServiceTestSuite defines the test suite for UserService
type UserServiceTestSuite struct {
	suite.Suite
	ctrl            *gomock.Controller
	mockUserRepo    *mocks.MockUserRepositoryInterface
	mockTenantRepo  *mocks.MockTenantRepositoryInterface
	mockAttemptRepo *mocks.MockLoginAttemptRepositoryInterface
	userService     *service.UserService
	validator       *validator.Validate
}

// SetupTest sets up the test suite
func (suite *UserServiceTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockUserRepo = mocks.NewMockUserRepositoryInterface(suite.ctrl)
	suite.mockTenantRepo = mocks.NewMockTenantRepositoryInterface(suite.ctrl)
	suite.mockAttemptRepo = mocks.NewMockLoginAttemptRepositoryInterface(suite.ctrl)
	suite.validator = validator.New()

	suite.userService = service.NewUserService(
		suite.mockUserRepo,
		suite.mockTenantRepo,
		suite.mockAttemptRepo,
		suite.validator,
		service.NewLogNotifier(),
		bcrypt.MinCost,
	)
}

// TearDownTest cleans up after each test
func (suite *UserServiceTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

// TestNormalizeEmail tests domain-only case folding
func (suite *UserServiceTestSuite) TestNormalizeEmail() {
	cases := map[string]string{
		"  Alice@Example.COM ": "Alice@example.com",
		"Bob@Corp.io":          "Bob@corp.io",
		"no-at-sign":           "no-at-sign",
		"a@b@Example.COM":      "a@b@example.com",
	}
	for input, expected := range cases {
		assert.Equal(suite.T(), expected, service.NormalizeEmail(input))
	}
}

// TestCreateUser tests creating a tenant-bound user
func (suite *UserServiceTestSuite) TestCreateUser() {
	tenantID := uuid.New()
	tenant := &models.Tenant{Slug: "acme", IsActive: true, MaxUsers: 5}
	tenant.ID = tenantID

	req := &service.CreateUserRequest{
		Email:    "Alice@Acme.COM",
		Password: "password123",
		TenantID: &tenantID,
	}

	suite.mockUserRepo.EXPECT().
		GetByEmail("Alice@acme.com").
		Return(nil, gorm.ErrRecordNotFound).
		Times(1)

	suite.mockTenantRepo.EXPECT().
		GetByID(tenantID).
		Return(tenant, nil).
		Times(1)

	suite.mockTenantRepo.EXPECT().
		CountUsers(tenantID).
		Return(int64(2), nil).
		Times(1)

	suite.mockUserRepo.EXPECT().
		Create(gomock.Any()).
		DoAndReturn(func(user *models.User) error {
			assert.Equal(suite.T(), "Alice@acme.com", user.Email)
			assert.True(suite.T(), user.IsActive)
			assert.NotEqual(suite.T(), uuid.Nil, user.APIKey)
			assert.NotNil(suite.T(), user.PasswordChangedAt)
			assert.NoError(suite.T(), bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
			return nil
		}).
		Times(1)

	response, err := suite.userService.Create(req)

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), response)
	assert.Equal(suite.T(), "Alice@acme.com", response.Email)
}

// TestCreateSuperuserWithTenant tests that a superuser cannot carry a tenant
func (suite *UserServiceTestSuite) TestCreateSuperuserWithTenant() {
	tenantID := uuid.New()
	req := &service.CreateUserRequest{
		Email:       "root@example.com",
		Password:    "password123",
		TenantID:    &tenantID,
		IsSuperuser: true,
	}

	response, err := suite.userService.Create(req)

	assert.Nil(suite.T(), response)
	assert.ErrorIs(suite.T(), err, apperrors.ErrSuperuserWithTenant)
}

// TestCreateUserDuplicateEmail tests creating a user with a taken email
func (suite *UserServiceTestSuite) TestCreateUserDuplicateEmail() {
	req := &service.CreateUserRequest{
		Email:    "alice@acme.com",
		Password: "password123",
	}

	suite.mockUserRepo.EXPECT().
		GetByEmail("alice@acme.com").
		Return(&models.User{Email: "alice@acme.com"}, nil).
		Times(1)

	response, err := suite.userService.Create(req)

	assert.Nil(suite.T(), response)
	assert.ErrorIs(suite.T(), err, apperrors.ErrUserExists)
}

// TestCreateUserTenantInactive tests creating a user under a disabled tenant
func (suite *UserServiceTestSuite) TestCreateUserTenantInactive() {
	tenantID := uuid.New()
	tenant := &models.Tenant{Slug: "acme", IsActive: false, MaxUsers: 5}
	tenant.ID = tenantID

	req := &service.CreateUserRequest{
		Email:    "alice@acme.com",
		Password: "password123",
		TenantID: &tenantID,
	}

	suite.mockUserRepo.EXPECT().
		GetByEmail("alice@acme.com").
		Return(nil, gorm.ErrRecordNotFound).
		Times(1)

	suite.mockTenantRepo.EXPECT().
		GetByID(tenantID).
		Return(tenant, nil).
		Times(1)

	response, err := suite.userService.Create(req)

	assert.Nil(suite.T(), response)
	assert.ErrorIs(suite.T(), err, apperrors.ErrTenantInactive)
}

// TestCreateUserLimitReached tests the tenant seat limit
func (suite *UserServiceTestSuite) TestCreateUserLimitReached() {
	tenantID := uuid.New()
	tenant := &models.Tenant{Slug: "acme", IsActive: true, MaxUsers: 5}
	tenant.ID = tenantID

	req := &service.CreateUserRequest{
		Email:    "alice@acme.com",
		Password: "password123",
		TenantID: &tenantID,
	}

	suite.mockUserRepo.EXPECT().
		GetByEmail("alice@acme.com").
		Return(nil, gorm.ErrRecordNotFound).
		Times(1)

	suite.mockTenantRepo.EXPECT().
		GetByID(tenantID).
		Return(tenant, nil).
		Times(1)

	suite.mockTenantRepo.EXPECT().
		CountUsers(tenantID).
		Return(int64(5), nil).
		Times(1)

	response, err := suite.userService.Create(req)

	assert.Nil(suite.T(), response)
	assert.ErrorIs(suite.T(), err, apperrors.ErrUserLimitReached)
}

// TestCreateUserShortPassword tests password length validation
func (suite *UserServiceTestSuite) TestCreateUserShortPassword() {
	req := &service.CreateUserRequest{
		Email:    "alice@acme.com",
		Password: "short",
	}

	response, err := suite.userService.Create(req)

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), response)
	assert.Contains(suite.T(), err.Error(), "validation failed")
}

// TestGetUserByEmailNormalizes tests lookup through the normalized address
func (suite *UserServiceTestSuite) TestGetUserByEmailNormalizes() {
	user := &models.User{Email: "alice@acme.com", IsActive: true}
	user.ID = uuid.New()

	suite.mockUserRepo.EXPECT().
		GetByEmail("alice@acme.com").
		Return(user, nil).
		Times(1)

	response, err := suite.userService.GetByEmail("alice@ACME.COM")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "alice@acme.com", response.Email)
}

// TestChangePasswordTooShort tests the minimum length check
func (suite *UserServiceTestSuite) TestChangePasswordTooShort() {
	err := suite.userService.ChangePassword(uuid.New(), "short")

	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "at least 8 characters")
}

// TestChangePassword tests rehashing and clearing the forced-change flag
func (suite *UserServiceTestSuite) TestChangePassword() {
	userID := uuid.New()
	user := &models.User{Email: "alice@acme.com", ForcePasswordChange: true}
	user.ID = userID

	suite.mockUserRepo.EXPECT().
		GetByID(userID).
		Return(user, nil).
		Times(1)

	suite.mockUserRepo.EXPECT().
		Update(gomock.Any()).
		DoAndReturn(func(updated *models.User) error {
			assert.False(suite.T(), updated.ForcePasswordChange)
			assert.NotNil(suite.T(), updated.PasswordChangedAt)
			assert.NoError(suite.T(), bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("brand-new-secret")))
			return nil
		}).
		Times(1)

	err := suite.userService.ChangePassword(userID, "brand-new-secret")

	assert.NoError(suite.T(), err)
}

// TestVerifyPassword tests checking a candidate against the stored hash
func (suite *UserServiceTestSuite) TestVerifyPassword() {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	assert.NoError(suite.T(), err)
	user := &models.User{PasswordHash: string(hash)}

	assert.True(suite.T(), suite.userService.VerifyPassword(user, "password123"))
	assert.False(suite.T(), suite.userService.VerifyPassword(user, "wrong"))
}

// TestRecordLoginSuccess tests the audit row plus session stamp on success
func (suite *UserServiceTestSuite) TestRecordLoginSuccess() {
	user := &models.User{Email: "alice@acme.com"}
	user.ID = uuid.New()

	suite.mockAttemptRepo.EXPECT().
		Create(gomock.Any()).
		DoAndReturn(func(attempt *models.LoginAttempt) error {
			assert.Equal(suite.T(), "alice@acme.com", attempt.Email)
			assert.True(suite.T(), attempt.Successful)
			assert.Equal(suite.T(), user.ID, *attempt.UserID)
			return nil
		}).
		Times(1)

	suite.mockUserRepo.EXPECT().
		UpdateLoginInfo(user.ID, "203.0.113.9", gomock.Any()).
		Return(nil).
		Times(1)

	err := suite.userService.RecordLogin(user, "alice@ACME.com", "203.0.113.9", "curl/8.0", true, "")

	assert.NoError(suite.T(), err)
}

// TestRecordLoginUnknownUser tests that an attempt is written even without a
// matching account
func (suite *UserServiceTestSuite) TestRecordLoginUnknownUser() {
	suite.mockAttemptRepo.EXPECT().
		Create(gomock.Any()).
		DoAndReturn(func(attempt *models.LoginAttempt) error {
			assert.Nil(suite.T(), attempt.UserID)
			assert.False(suite.T(), attempt.Successful)
			assert.Equal(suite.T(), "unknown_email", attempt.FailureReason)
			return nil
		}).
		Times(1)

	err := suite.userService.RecordLogin(nil, "ghost@acme.com", "203.0.113.9", "curl/8.0", false, "unknown_email")

	assert.NoError(suite.T(), err)
}

// TestRecordLoginFailureSkipsStamp tests that a failed attempt never touches
// the user row
func (suite *UserServiceTestSuite) TestRecordLoginFailureSkipsStamp() {
	user := &models.User{Email: "alice@acme.com"}
	user.ID = uuid.New()

	suite.mockAttemptRepo.EXPECT().
		Create(gomock.Any()).
		Return(nil).
		Times(1)

	err := suite.userService.RecordLogin(user, "alice@acme.com", "203.0.113.9", "curl/8.0", false, "invalid_password")

	assert.NoError(suite.T(), err)
}

// TestPurgeLoginAttemptsRetentionGuard tests that the window cannot be
// shortened
func (suite *UserServiceTestSuite) TestPurgeLoginAttemptsRetentionGuard() {
	deleted, err := suite.userService.PurgeLoginAttempts(24 * time.Hour)

	assert.Zero(suite.T(), deleted)
	assert.ErrorIs(suite.T(), err, apperrors.ErrRetentionNotElapsed)
}

// TestPurgeLoginAttempts tests purging past the retention threshold
func (suite *UserServiceTestSuite) TestPurgeLoginAttempts() {
	suite.mockAttemptRepo.EXPECT().
		DeleteOlderThan(gomock.Any()).
		Return(int64(3), nil).
		Times(1)

	deleted, err := suite.userService.PurgeLoginAttempts(service.LoginAttemptRetention)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(3), deleted)
}

// TestEnableTwoFactor tests secret generation and persistence
func (suite *UserServiceTestSuite) TestEnableTwoFactor() {
	userID := uuid.New()
	user := &models.User{Email: "alice@acme.com"}
	user.ID = userID

	suite.mockUserRepo.EXPECT().
		GetByID(userID).
		Return(user, nil).
		Times(1)

	suite.mockUserRepo.EXPECT().
		Update(gomock.Any()).
		DoAndReturn(func(updated *models.User) error {
			assert.True(suite.T(), updated.TwoFactorEnabled)
			assert.NotEmpty(suite.T(), updated.TwoFactorSecret)
			return nil
		}).
		Times(1)

	secret, err := suite.userService.EnableTwoFactor(userID)

	assert.NoError(suite.T(), err)
	// 160-bit secret, base32 without padding
	assert.Len(suite.T(), secret, 32)
}

// TestDisableTwoFactor tests clearing the 2FA state
func (suite *UserServiceTestSuite) TestDisableTwoFactor() {
	userID := uuid.New()
	user := &models.User{Email: "alice@acme.com", TwoFactorEnabled: true, TwoFactorSecret: "SECRET"}
	user.ID = userID

	suite.mockUserRepo.EXPECT().
		GetByID(userID).
		Return(user, nil).
		Times(1)

	suite.mockUserRepo.EXPECT().
		Update(gomock.Any()).
		DoAndReturn(func(updated *models.User) error {
			assert.False(suite.T(), updated.TwoFactorEnabled)
			assert.Empty(suite.T(), updated.TwoFactorSecret)
			return nil
		}).
		Times(1)

	err := suite.userService.DisableTwoFactor(userID)

	assert.NoError(suite.T(), err)
}

// TestDeleteUserNotFound tests deleting a missing user
func (suite *UserServiceTestSuite) TestDeleteUserNotFound() {
	userID := uuid.New()

	suite.mockUserRepo.EXPECT().
		GetByID(userID).
		Return(nil, gorm.ErrRecordNotFound).
		Times(1)

	err := suite.userService.Delete(userID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrUserNotFound)
}

// TestUserServiceTestSuite runs the test suite
func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
