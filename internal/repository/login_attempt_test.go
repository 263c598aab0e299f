//go:build integration

package repository

import (
	"testing"
	"time"

	"crm-saas-backend/internal/database/models"
	"crm-saas-backend/internal/testutils"

	"github.com/stretchr/testify/suite"
)

// LoginAttemptRepositoryTestSuite tests the LoginAttemptRepository
type LoginAttemptRepositoryTestSuite struct {
	suite.Suite
	baseTestSuite *testutils.BaseTestSuite
	repo          *LoginAttemptRepository
	tenantRepo    *TenantRepository
	userRepo      *UserRepository
	factories     *testutils.FactorySet
}

// SetupSuite runs before all tests in the suite
func (suite *LoginAttemptRepositoryTestSuite) SetupSuite() {
	suite.baseTestSuite = testutils.SetupTestSuite(suite.T())

	suite.repo = NewLoginAttemptRepository(suite.baseTestSuite.DB)
	suite.tenantRepo = NewTenantRepository(suite.baseTestSuite.DB)
	suite.userRepo = NewUserRepository(suite.baseTestSuite.DB)
	suite.factories = testutils.NewFactorySet()
}

// TearDownSuite runs after all tests in the suite
func (suite *LoginAttemptRepositoryTestSuite) TearDownSuite() {
	suite.baseTestSuite.TeardownTestSuite()
}

// SetupTest runs before each test
func (suite *LoginAttemptRepositoryTestSuite) SetupTest() {
	suite.baseTestSuite.SetupTest()
}

// TearDownTest runs after each test
func (suite *LoginAttemptRepositoryTestSuite) TearDownTest() {
	suite.baseTestSuite.TearDownTest()
}

func (suite *LoginAttemptRepositoryTestSuite) createUser() *models.User {
	tenant := suite.factories.Tenant.Create()
	suite.Require().NoError(suite.tenantRepo.CreateWithSettings(tenant, &models.TenantSettings{}))
	user := suite.factories.User.WithTenant(tenant.ID)
	suite.Require().NoError(suite.userRepo.Create(user))
	return user
}

func (suite *LoginAttemptRepositoryTestSuite) newAttempt(userID *models.User, email string, successful bool) *models.LoginAttempt {
	attempt := &models.LoginAttempt{
		Email:      email,
		IPAddress:  "203.0.113.10",
		UserAgent:  "test-agent",
		Successful: successful,
	}
	if userID != nil {
		attempt.UserID = &userID.ID
	}
	if !successful {
		attempt.FailureReason = "bad_password"
	}
	return attempt
}

// TestCreateWithoutUser tests recording a failure against an unknown identity
func (suite *LoginAttemptRepositoryTestSuite) TestCreateWithoutUser() {
	attempt := suite.newAttempt(nil, "ghost@test.com", false)
	attempt.FailureReason = "unknown_email"

	err := suite.repo.Create(attempt)
	suite.NoError(err)

	attempts, total, err := suite.repo.GetByEmail("ghost@test.com", 10, 0)
	suite.NoError(err)
	suite.Equal(int64(1), total)
	suite.Require().Len(attempts, 1)
	suite.Nil(attempts[0].UserID)
	suite.Equal("unknown_email", attempts[0].FailureReason)
}

// TestGetByUserNewestFirst tests per-user history ordering
func (suite *LoginAttemptRepositoryTestSuite) TestGetByUserNewestFirst() {
	user := suite.createUser()

	older := suite.newAttempt(user, user.Email, false)
	older.CreatedAt = time.Now().Add(-time.Hour)
	suite.Require().NoError(suite.repo.Create(older))

	newer := suite.newAttempt(user, user.Email, true)
	suite.Require().NoError(suite.repo.Create(newer))

	attempts, total, err := suite.repo.GetByUser(user.ID, 10, 0)
	suite.NoError(err)
	suite.Equal(int64(2), total)
	suite.Require().Len(attempts, 2)
	suite.True(attempts[0].Successful)
	suite.False(attempts[1].Successful)
}

// TestCountRecentFailures tests the lockout signal
func (suite *LoginAttemptRepositoryTestSuite) TestCountRecentFailures() {
	user := suite.createUser()

	// Two recent failures, one old failure, one recent success
	suite.Require().NoError(suite.repo.Create(suite.newAttempt(user, user.Email, false)))
	suite.Require().NoError(suite.repo.Create(suite.newAttempt(user, user.Email, false)))

	old := suite.newAttempt(user, user.Email, false)
	old.CreatedAt = time.Now().Add(-2 * time.Hour)
	suite.Require().NoError(suite.repo.Create(old))

	suite.Require().NoError(suite.repo.Create(suite.newAttempt(user, user.Email, true)))

	count, err := suite.repo.CountRecentFailures(user.Email, time.Now().Add(-time.Hour))
	suite.NoError(err)
	suite.Equal(int64(2), count)
}

// TestDeleteOlderThan tests retention pruning
func (suite *LoginAttemptRepositoryTestSuite) TestDeleteOlderThan() {
	user := suite.createUser()

	ancient := suite.newAttempt(user, user.Email, false)
	ancient.CreatedAt = time.Now().Add(-100 * 24 * time.Hour)
	suite.Require().NoError(suite.repo.Create(ancient))

	recent := suite.newAttempt(user, user.Email, true)
	suite.Require().NoError(suite.repo.Create(recent))

	deleted, err := suite.repo.DeleteOlderThan(time.Now().Add(-90 * 24 * time.Hour))
	suite.NoError(err)
	suite.Equal(int64(1), deleted)

	_, total, err := suite.repo.GetByUser(user.ID, 10, 0)
	suite.NoError(err)
	suite.Equal(int64(1), total)
}

// TestLoginAttemptRepositoryTestSuite runs the test suite
func TestLoginAttemptRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(LoginAttemptRepositoryTestSuite))
}
