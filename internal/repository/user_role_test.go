//go:build integration

package repository

import (
	"sync"
	"testing"
	"time"

	"crm-saas-backend/internal/database/models"
	"crm-saas-backend/internal/testutils"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// UserRoleRepositoryTestSuite tests the UserRoleRepository
type UserRoleRepositoryTestSuite struct {
	suite.Suite
	baseTestSuite *testutils.BaseTestSuite
	repo          *UserRoleRepository
	tenantRepo    *TenantRepository
	userRepo      *UserRepository
	roleRepo      *RoleRepository
	factories     *testutils.FactorySet
}

// SetupSuite runs before all tests in the suite
func (suite *UserRoleRepositoryTestSuite) SetupSuite() {
	suite.baseTestSuite = testutils.SetupTestSuite(suite.T())

	suite.repo = NewUserRoleRepository(suite.baseTestSuite.DB)
	suite.tenantRepo = NewTenantRepository(suite.baseTestSuite.DB)
	suite.userRepo = NewUserRepository(suite.baseTestSuite.DB)
	suite.roleRepo = NewRoleRepository(suite.baseTestSuite.DB)
	suite.factories = testutils.NewFactorySet()
}

// TearDownSuite runs after all tests in the suite
func (suite *UserRoleRepositoryTestSuite) TearDownSuite() {
	suite.baseTestSuite.TeardownTestSuite()
}

// SetupTest runs before each test
func (suite *UserRoleRepositoryTestSuite) SetupTest() {
	suite.baseTestSuite.SetupTest()
}

// TearDownTest runs after each test
func (suite *UserRoleRepositoryTestSuite) TearDownTest() {
	suite.baseTestSuite.TearDownTest()
}

// createFixtures persists a tenant with one user and one role
func (suite *UserRoleRepositoryTestSuite) createFixtures() (*models.User, *models.Role) {
	tenant := suite.factories.Tenant.Create()
	suite.Require().NoError(suite.tenantRepo.CreateWithSettings(tenant, &models.TenantSettings{}))

	user := suite.factories.User.WithTenant(tenant.ID)
	suite.Require().NoError(suite.userRepo.Create(user))

	role := suite.factories.Role.WithTenant(tenant.ID)
	suite.Require().NoError(suite.roleRepo.Create(role))

	return user, role
}

// TestUpsertInsert tests the insert path
func (suite *UserRoleRepositoryTestSuite) TestUpsertInsert() {
	user, role := suite.createFixtures()

	binding := suite.factories.UserRole.Create(user.ID, role.ID)
	err := suite.repo.Upsert(binding)

	suite.NoError(err)

	stored, err := suite.repo.GetByUserAndRole(user.ID, role.ID)
	suite.NoError(err)
	suite.True(stored.IsActive)
}

// TestUpsertUpdatesExisting tests that re-assigning an existing pair rewrites
// the binding in place instead of adding a row
func (suite *UserRoleRepositoryTestSuite) TestUpsertUpdatesExisting() {
	user, role := suite.createFixtures()

	first := suite.factories.UserRole.Create(user.ID, role.ID)
	suite.Require().NoError(suite.repo.Upsert(first))

	// Re-assign with an expiry; the (user, role) key conflicts
	expiry := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	second := suite.factories.UserRole.Create(user.ID, role.ID)
	second.ExpiresAt = &expiry
	suite.Require().NoError(suite.repo.Upsert(second))

	bindings, err := suite.repo.GetByUser(user.ID)
	suite.NoError(err)
	suite.Require().Len(bindings, 1)
	suite.Require().NotNil(bindings[0].ExpiresAt)
	suite.WithinDuration(expiry, *bindings[0].ExpiresAt, time.Second)
}

// TestUpsertReactivates tests that assigning over a revoked binding brings it
// back to life
func (suite *UserRoleRepositoryTestSuite) TestUpsertReactivates() {
	user, role := suite.createFixtures()

	binding := suite.factories.UserRole.Create(user.ID, role.ID)
	suite.Require().NoError(suite.repo.Upsert(binding))
	suite.Require().NoError(suite.repo.Deactivate(user.ID, role.ID))

	again := suite.factories.UserRole.Create(user.ID, role.ID)
	suite.Require().NoError(suite.repo.Upsert(again))

	stored, err := suite.repo.GetByUserAndRole(user.ID, role.ID)
	suite.NoError(err)
	suite.True(stored.IsActive)
}

// TestGetActiveByUserFiltersExpiredAndInactive tests the effective-binding
// read used by the permission engine
func (suite *UserRoleRepositoryTestSuite) TestGetActiveByUserFiltersExpiredAndInactive() {
	tenant := suite.factories.Tenant.Create()
	suite.Require().NoError(suite.tenantRepo.CreateWithSettings(tenant, &models.TenantSettings{}))

	user := suite.factories.User.WithTenant(tenant.ID)
	suite.Require().NoError(suite.userRepo.Create(user))

	activeRole := suite.factories.Role.WithName(tenant.ID, "active-role")
	suite.Require().NoError(suite.roleRepo.Create(activeRole))
	expiredRole := suite.factories.Role.WithName(tenant.ID, "expired-role")
	suite.Require().NoError(suite.roleRepo.Create(expiredRole))
	revokedRole := suite.factories.Role.WithName(tenant.ID, "revoked-role")
	suite.Require().NoError(suite.roleRepo.Create(revokedRole))

	suite.Require().NoError(suite.repo.Upsert(suite.factories.UserRole.Create(user.ID, activeRole.ID)))
	suite.Require().NoError(suite.repo.Upsert(suite.factories.UserRole.Expired(user.ID, expiredRole.ID)))
	suite.Require().NoError(suite.repo.Upsert(suite.factories.UserRole.Inactive(user.ID, revokedRole.ID)))

	bindings, err := suite.repo.GetActiveByUser(user.ID, time.Now())
	suite.NoError(err)
	suite.Require().Len(bindings, 1)
	suite.Equal(activeRole.ID, bindings[0].RoleID)
	suite.Require().NotNil(bindings[0].Role)
	suite.Equal("active-role", bindings[0].Role.Name)
}

// TestGetActiveByUserOrdersByAssignment tests that bindings come back oldest
// assignment first so later grants win in the merge
func (suite *UserRoleRepositoryTestSuite) TestGetActiveByUserOrdersByAssignment() {
	tenant := suite.factories.Tenant.Create()
	suite.Require().NoError(suite.tenantRepo.CreateWithSettings(tenant, &models.TenantSettings{}))

	user := suite.factories.User.WithTenant(tenant.ID)
	suite.Require().NoError(suite.userRepo.Create(user))

	older := suite.factories.Role.WithName(tenant.ID, "older")
	suite.Require().NoError(suite.roleRepo.Create(older))
	newer := suite.factories.Role.WithName(tenant.ID, "newer")
	suite.Require().NoError(suite.roleRepo.Create(newer))

	first := suite.factories.UserRole.Create(user.ID, older.ID)
	first.AssignedAt = time.Now().Add(-time.Hour)
	suite.Require().NoError(suite.repo.Upsert(first))

	second := suite.factories.UserRole.Create(user.ID, newer.ID)
	suite.Require().NoError(suite.repo.Upsert(second))

	bindings, err := suite.repo.GetActiveByUser(user.ID, time.Now())
	suite.NoError(err)
	suite.Require().Len(bindings, 2)
	suite.Equal(older.ID, bindings[0].RoleID)
	suite.Equal(newer.ID, bindings[1].RoleID)
}

// TestDeactivate tests soft revocation
func (suite *UserRoleRepositoryTestSuite) TestDeactivate() {
	user, role := suite.createFixtures()

	binding := suite.factories.UserRole.Create(user.ID, role.ID)
	suite.Require().NoError(suite.repo.Upsert(binding))

	err := suite.repo.Deactivate(user.ID, role.ID)
	suite.NoError(err)

	// The row survives for audit history
	stored, err := suite.repo.GetByUserAndRole(user.ID, role.ID)
	suite.NoError(err)
	suite.False(stored.IsActive)

	active, err := suite.repo.GetActiveByUser(user.ID, time.Now())
	suite.NoError(err)
	suite.Empty(active)
}

// TestDeactivateNotFound tests revoking a binding that never existed
func (suite *UserRoleRepositoryTestSuite) TestDeactivateNotFound() {
	user, role := suite.createFixtures()

	err := suite.repo.Deactivate(user.ID, role.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

// TestConcurrentUpsertsKeepOneRow tests that two simultaneous assignments of
// the same pair race down to a single binding carrying one of the two expiries
func (suite *UserRoleRepositoryTestSuite) TestConcurrentUpsertsKeepOneRow() {
	user, role := suite.createFixtures()

	expiryA := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	expiryB := time.Now().Add(48 * time.Hour).Truncate(time.Second)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, expiry := range []time.Time{expiryA, expiryB} {
		wg.Add(1)
		go func(i int, expiry time.Time) {
			defer wg.Done()
			binding := suite.factories.UserRole.Create(user.ID, role.ID)
			binding.ExpiresAt = &expiry
			errs[i] = suite.repo.Upsert(binding)
		}(i, expiry)
	}
	wg.Wait()

	suite.NoError(errs[0])
	suite.NoError(errs[1])

	bindings, err := suite.repo.GetByUser(user.ID)
	suite.NoError(err)
	suite.Require().Len(bindings, 1)
	suite.Require().NotNil(bindings[0].ExpiresAt)

	// Whichever transaction committed last wins; either way exactly one
	// binding survives with one of the two written expiries.
	got := bindings[0].ExpiresAt.Truncate(time.Second)
	suite.True(got.Equal(expiryA) || got.Equal(expiryB))
}

// TestUserRoleRepositoryTestSuite runs the test suite
func TestUserRoleRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(UserRoleRepositoryTestSuite))
}
