package auth

import (
	"testing"
	"time"

	"crm-saas-backend/internal/database/models"
	apperrors "crm-saas-backend/internal/errors"
	"crm-saas-backend/internal/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

func newTestAuthService(t *testing.T) (*AuthService, *mocks.MockUserRepositoryInterface, *mocks.MockTenantRepositoryInterface, *mocks.MockUserServiceInterface) {
	ctrl := gomock.NewController(t)
	userRepo := mocks.NewMockUserRepositoryInterface(ctrl)
	tenantRepo := mocks.NewMockTenantRepositoryInterface(ctrl)
	users := mocks.NewMockUserServiceInterface(ctrl)
	svc := NewAuthService(userRepo, tenantRepo, users, "test-signing-key", time.Hour)
	return svc, userRepo, tenantRepo, users
}

func TestTokens(t *testing.T) {
	t.Run("issue and validate roundtrip", func(t *testing.T) {
		svc, _, _, _ := newTestAuthService(t)

		tenantID := uuid.New()
		user := &models.User{
			Email:         "alice@acme.com",
			TenantID:      &tenantID,
			IsTenantAdmin: true,
		}
		user.ID = uuid.New()

		token, err := svc.IssueToken(user)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := svc.ValidateJWT(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, "alice@acme.com", claims.Email)
		assert.Equal(t, tenantID, *claims.TenantID)
		assert.True(t, claims.IsTenantAdmin)
		assert.False(t, claims.IsSuperuser)
		assert.Equal(t, user.ID.String(), claims.Subject)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		svc, _, _, _ := newTestAuthService(t)

		claims, err := svc.ValidateJWT("not-a-token")
		assert.Nil(t, claims)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("rejects token signed with another key", func(t *testing.T) {
		svc, _, _, _ := newTestAuthService(t)
		other, _, _, _ := newTestAuthService(t)
		other.secret = []byte("some-other-key")

		user := &models.User{Email: "alice@acme.com"}
		user.ID = uuid.New()

		token, err := other.IssueToken(user)
		require.NoError(t, err)

		claims, err := svc.ValidateJWT(token)
		assert.Nil(t, claims)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		svc, _, _, _ := newTestAuthService(t)
		svc.expiry = -time.Minute

		user := &models.User{Email: "alice@acme.com"}
		user.ID = uuid.New()

		token, err := svc.IssueToken(user)
		require.NoError(t, err)

		claims, err := svc.ValidateJWT(token)
		assert.Nil(t, claims)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}

func TestLogin(t *testing.T) {
	req := &LoginRequest{Email: "Alice@Acme.COM", Password: "password123"}

	t.Run("unknown email records the attempt", func(t *testing.T) {
		svc, userRepo, _, users := newTestAuthService(t)

		userRepo.EXPECT().
			GetByEmail("Alice@acme.com").
			Return(nil, gorm.ErrRecordNotFound).
			Times(1)
		users.EXPECT().
			RecordLogin(nil, "Alice@acme.com", "203.0.113.9", "curl/8.0", false, "unknown_email").
			Return(nil).
			Times(1)

		resp, err := svc.Login(req, "203.0.113.9", "curl/8.0")
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("bad password records the attempt", func(t *testing.T) {
		svc, userRepo, _, users := newTestAuthService(t)

		user := &models.User{Email: "alice@acme.com", IsActive: true}
		user.ID = uuid.New()

		userRepo.EXPECT().
			GetByEmail("Alice@acme.com").
			Return(user, nil).
			Times(1)
		users.EXPECT().
			VerifyPassword(user, "password123").
			Return(false).
			Times(1)
		users.EXPECT().
			RecordLogin(user, "Alice@acme.com", "203.0.113.9", "curl/8.0", false, "bad_password").
			Return(nil).
			Times(1)

		resp, err := svc.Login(req, "203.0.113.9", "curl/8.0")
		assert.Nil(t, resp)
		// Indistinguishable from an unknown email
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("inactive user is rejected", func(t *testing.T) {
		svc, userRepo, _, users := newTestAuthService(t)

		user := &models.User{Email: "alice@acme.com"}
		user.ID = uuid.New()

		userRepo.EXPECT().
			GetByEmail("Alice@acme.com").
			Return(user, nil).
			Times(1)
		users.EXPECT().
			VerifyPassword(user, "password123").
			Return(true).
			Times(1)
		users.EXPECT().
			RecordLogin(user, "Alice@acme.com", "203.0.113.9", "curl/8.0", false, "user_inactive").
			Return(nil).
			Times(1)

		resp, err := svc.Login(req, "203.0.113.9", "curl/8.0")
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, apperrors.ErrUserInactive)
	})

	t.Run("inactive tenant is rejected", func(t *testing.T) {
		svc, userRepo, tenantRepo, users := newTestAuthService(t)

		tenantID := uuid.New()
		tenant := &models.Tenant{Slug: "acme"}
		tenant.ID = tenantID
		user := &models.User{Email: "alice@acme.com", IsActive: true, TenantID: &tenantID}
		user.ID = uuid.New()

		userRepo.EXPECT().
			GetByEmail("Alice@acme.com").
			Return(user, nil).
			Times(1)
		users.EXPECT().
			VerifyPassword(user, "password123").
			Return(true).
			Times(1)
		tenantRepo.EXPECT().
			GetByID(tenantID).
			Return(tenant, nil).
			Times(1)
		users.EXPECT().
			RecordLogin(user, "Alice@acme.com", "203.0.113.9", "curl/8.0", false, "tenant_inactive").
			Return(nil).
			Times(1)

		resp, err := svc.Login(req, "203.0.113.9", "curl/8.0")
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, apperrors.ErrTenantInactive)
	})

	t.Run("successful login issues a token", func(t *testing.T) {
		svc, userRepo, tenantRepo, users := newTestAuthService(t)

		tenantID := uuid.New()
		tenant := &models.Tenant{Slug: "acme", IsActive: true}
		tenant.ID = tenantID
		user := &models.User{
			Email:            "alice@acme.com",
			IsActive:         true,
			TenantID:         &tenantID,
			TwoFactorEnabled: true,
		}
		user.ID = uuid.New()

		userRepo.EXPECT().
			GetByEmail("Alice@acme.com").
			Return(user, nil).
			Times(1)
		users.EXPECT().
			VerifyPassword(user, "password123").
			Return(true).
			Times(1)
		tenantRepo.EXPECT().
			GetByID(tenantID).
			Return(tenant, nil).
			Times(1)
		users.EXPECT().
			RecordLogin(user, "Alice@acme.com", "203.0.113.9", "curl/8.0", true, "").
			Return(nil).
			Times(1)

		resp, err := svc.Login(req, "203.0.113.9", "curl/8.0")
		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, "bearer", resp.TokenType)
		assert.Equal(t, int64(3600), resp.ExpiresIn)
		assert.Equal(t, user.ID, resp.UserID)
		assert.True(t, resp.TwoFactorRequired)

		claims, err := svc.ValidateJWT(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
	})
}
