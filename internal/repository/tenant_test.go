//go:build integration

package repository

import (
	"testing"

	"crm-saas-backend/internal/database/models"
	"crm-saas-backend/internal/testutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// TenantRepositoryTestSuite tests the TenantRepository
type TenantRepositoryTestSuite struct {
	suite.Suite
	baseTestSuite *testutils.BaseTestSuite
	repo          *TenantRepository
	domainRepo    *DomainRepository
	userRepo      *UserRepository
	factories     *testutils.FactorySet
}

// SetupSuite runs before all tests in the suite
func (suite *TenantRepositoryTestSuite) SetupSuite() {
	suite.baseTestSuite = testutils.SetupTestSuite(suite.T())

	suite.repo = NewTenantRepository(suite.baseTestSuite.DB)
	suite.domainRepo = NewDomainRepository(suite.baseTestSuite.DB)
	suite.userRepo = NewUserRepository(suite.baseTestSuite.DB)
	suite.factories = testutils.NewFactorySet()
}

// TearDownSuite runs after all tests in the suite
func (suite *TenantRepositoryTestSuite) TearDownSuite() {
	suite.baseTestSuite.TeardownTestSuite()
}

// SetupTest runs before each test
func (suite *TenantRepositoryTestSuite) SetupTest() {
	suite.baseTestSuite.SetupTest()
}

// TearDownTest runs after each test
func (suite *TenantRepositoryTestSuite) TearDownTest() {
	suite.baseTestSuite.TearDownTest()
}

// TestCreateWithSettings tests that tenant and settings land together
func (suite *TenantRepositoryTestSuite) TestCreateWithSettings() {
	tenant := suite.factories.Tenant.Create()

	err := suite.repo.CreateWithSettings(tenant, &models.TenantSettings{PasswordExpiryDays: 90})

	suite.NoError(err)
	suite.NotEqual(uuid.Nil, tenant.ID)

	stored, err := suite.repo.GetWithSettings(tenant.ID)
	suite.NoError(err)
	suite.Require().NotNil(stored.Settings)
	suite.Equal(tenant.ID, stored.Settings.TenantID)
	suite.Equal(90, stored.Settings.PasswordExpiryDays)
}

// TestCreateDuplicateSlug tests the slug uniqueness constraint
func (suite *TenantRepositoryTestSuite) TestCreateDuplicateSlug() {
	first := suite.factories.Tenant.WithSlug("acme")
	suite.Require().NoError(suite.repo.CreateWithSettings(first, &models.TenantSettings{}))

	second := suite.factories.Tenant.WithSlug("acme")
	err := suite.repo.CreateWithSettings(second, &models.TenantSettings{})

	suite.Error(err)
	suite.Contains(err.Error(), "duplicate key value")
}

// TestGetBySlug tests slug lookup
func (suite *TenantRepositoryTestSuite) TestGetBySlug() {
	tenant := suite.factories.Tenant.WithSlug("globex")
	suite.Require().NoError(suite.repo.CreateWithSettings(tenant, &models.TenantSettings{}))

	found, err := suite.repo.GetBySlug("globex")
	suite.NoError(err)
	suite.Equal(tenant.ID, found.ID)

	_, err = suite.repo.GetBySlug("missing")
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

// TestGetByDomainName tests resolving a tenant through an attached hostname
func (suite *TenantRepositoryTestSuite) TestGetByDomainName() {
	tenant := suite.factories.Tenant.Create()
	suite.Require().NoError(suite.repo.CreateWithSettings(tenant, &models.TenantSettings{}))

	domain := suite.factories.Domain.WithName(tenant.ID, "crm.acme.com")
	suite.Require().NoError(suite.domainRepo.Create(domain))

	found, err := suite.repo.GetByDomainName("crm.acme.com")
	suite.NoError(err)
	suite.Equal(tenant.ID, found.ID)

	_, err = suite.repo.GetByDomainName("unknown.example.com")
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

// TestGetAll tests tenant listing with pagination
func (suite *TenantRepositoryTestSuite) TestGetAll() {
	for _, slug := range []string{"alpha", "bravo", "charlie"} {
		tenant := suite.factories.Tenant.WithSlug(slug)
		tenant.Name = slug
		suite.Require().NoError(suite.repo.CreateWithSettings(tenant, &models.TenantSettings{}))
	}

	tenants, total, err := suite.repo.GetAll(2, 0)
	suite.NoError(err)
	suite.Equal(int64(3), total)
	suite.Require().Len(tenants, 2)
	suite.Equal("alpha", tenants[0].Name)

	tenants, total, err = suite.repo.GetAll(2, 2)
	suite.NoError(err)
	suite.Equal(int64(3), total)
	suite.Require().Len(tenants, 1)
	suite.Equal("charlie", tenants[0].Name)
}

// TestCountUsers tests the per-tenant user count used for limit enforcement
func (suite *TenantRepositoryTestSuite) TestCountUsers() {
	tenant := suite.factories.Tenant.Create()
	suite.Require().NoError(suite.repo.CreateWithSettings(tenant, &models.TenantSettings{}))

	count, err := suite.repo.CountUsers(tenant.ID)
	suite.NoError(err)
	suite.Equal(int64(0), count)

	for i := 0; i < 2; i++ {
		user := suite.factories.User.WithTenant(tenant.ID)
		suite.Require().NoError(suite.userRepo.Create(user))
	}

	count, err = suite.repo.CountUsers(tenant.ID)
	suite.NoError(err)
	suite.Equal(int64(2), count)
}

// TestDeleteCascades tests that removing a tenant removes its scoped rows
func (suite *TenantRepositoryTestSuite) TestDeleteCascades() {
	tenant := suite.factories.Tenant.Create()
	suite.Require().NoError(suite.repo.CreateWithSettings(tenant, &models.TenantSettings{}))

	domain := suite.factories.Domain.WithTenant(tenant.ID)
	suite.Require().NoError(suite.domainRepo.Create(domain))

	user := suite.factories.User.WithTenant(tenant.ID)
	suite.Require().NoError(suite.userRepo.Create(user))

	err := suite.repo.Delete(tenant.ID)
	suite.NoError(err)

	_, err = suite.repo.GetByID(tenant.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)

	_, err = suite.domainRepo.GetByID(domain.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)

	_, err = suite.userRepo.GetByID(user.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

// TestUpdate tests tenant field updates
func (suite *TenantRepositoryTestSuite) TestUpdate() {
	tenant := suite.factories.Tenant.Create()
	suite.Require().NoError(suite.repo.CreateWithSettings(tenant, &models.TenantSettings{}))

	tenant.Name = "Renamed Tenant"
	tenant.IsActive = false
	suite.NoError(suite.repo.Update(tenant))

	stored, err := suite.repo.GetByID(tenant.ID)
	suite.NoError(err)
	suite.Equal("Renamed Tenant", stored.Name)
	suite.False(stored.IsActive)
}

// TestTenantRepositoryTestSuite runs the test suite
func TestTenantRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(TenantRepositoryTestSuite))
}
