//go:build integration

package repository

import (
	"testing"

	"crm-saas-backend/internal/database/models"
	"crm-saas-backend/internal/testutils"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// ClientRepositoryTestSuite tests the ClientRepository
type ClientRepositoryTestSuite struct {
	suite.Suite
	baseTestSuite *testutils.BaseTestSuite
	repo          *ClientRepository
	tenantRepo    *TenantRepository
	factories     *testutils.FactorySet
}

// SetupSuite runs before all tests in the suite
func (suite *ClientRepositoryTestSuite) SetupSuite() {
	suite.baseTestSuite = testutils.SetupTestSuite(suite.T())

	suite.repo = NewClientRepository(suite.baseTestSuite.DB)
	suite.tenantRepo = NewTenantRepository(suite.baseTestSuite.DB)
	suite.factories = testutils.NewFactorySet()
}

// TearDownSuite runs after all tests in the suite
func (suite *ClientRepositoryTestSuite) TearDownSuite() {
	suite.baseTestSuite.TeardownTestSuite()
}

// SetupTest runs before each test
func (suite *ClientRepositoryTestSuite) SetupTest() {
	suite.baseTestSuite.SetupTest()
}

// TearDownTest runs after each test
func (suite *ClientRepositoryTestSuite) TearDownTest() {
	suite.baseTestSuite.TearDownTest()
}

func (suite *ClientRepositoryTestSuite) createTenant() *models.Tenant {
	tenant := suite.factories.Tenant.Create()
	suite.Require().NoError(suite.tenantRepo.CreateWithSettings(tenant, &models.TenantSettings{}))
	return tenant
}

// TestCreate tests creating a client
func (suite *ClientRepositoryTestSuite) TestCreate() {
	tenant := suite.createTenant()
	client := suite.factories.Client.WithTenant(tenant.ID)

	err := suite.repo.Create(client)
	suite.NoError(err)
	suite.NotZero(client.CreatedAt)
}

// TestGetByIDScopedToTenant tests that another tenant's client reads as not
// found
func (suite *ClientRepositoryTestSuite) TestGetByIDScopedToTenant() {
	tenantA := suite.createTenant()
	tenantB := suite.createTenant()

	client := suite.factories.Client.WithTenant(tenantA.ID)
	suite.Require().NoError(suite.repo.Create(client))

	found, err := suite.repo.GetByID(tenantA.ID, client.ID)
	suite.NoError(err)
	suite.Equal(client.ID, found.ID)

	_, err = suite.repo.GetByID(tenantB.ID, client.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

// TestSameNameAcrossTenants tests that the name constraint is per tenant
func (suite *ClientRepositoryTestSuite) TestSameNameAcrossTenants() {
	tenantA := suite.createTenant()
	tenantB := suite.createTenant()

	suite.NoError(suite.repo.Create(suite.factories.Client.WithName(tenantA.ID, "Initech")))
	suite.NoError(suite.repo.Create(suite.factories.Client.WithName(tenantB.ID, "Initech")))

	dup := suite.factories.Client.WithName(tenantA.ID, "Initech")
	err := suite.repo.Create(dup)
	suite.Error(err)
	suite.Contains(err.Error(), "duplicate key value")
}

// TestGetByTenantID tests tenant-scoped listing with pagination
func (suite *ClientRepositoryTestSuite) TestGetByTenantID() {
	tenant := suite.createTenant()

	for _, name := range []string{"Acme", "Globex", "Initech"} {
		suite.Require().NoError(suite.repo.Create(suite.factories.Client.WithName(tenant.ID, name)))
	}

	clients, total, err := suite.repo.GetByTenantID(tenant.ID, 2, 0)
	suite.NoError(err)
	suite.Equal(int64(3), total)
	suite.Require().Len(clients, 2)
	suite.Equal("Acme", clients[0].Name)
}

// TestContacts tests attaching and resolving contacts
func (suite *ClientRepositoryTestSuite) TestContacts() {
	tenant := suite.createTenant()

	client := suite.factories.Client.WithTenant(tenant.ID)
	suite.Require().NoError(suite.repo.Create(client))

	contact := suite.factories.Contact.Create(tenant.ID, client.ID)
	suite.Require().NoError(suite.repo.CreateContact(contact))

	withContacts, err := suite.repo.GetWithContacts(tenant.ID, client.ID)
	suite.NoError(err)
	suite.Require().Len(withContacts.Contacts, 1)
	suite.Equal(contact.Email, withContacts.Contacts[0].Email)

	found, err := suite.repo.GetContactByEmail(tenant.ID, contact.Email)
	suite.NoError(err)
	suite.Equal(contact.ID, found.ID)
}

// TestContactEmailUniquePerTenant tests the per-tenant contact email constraint
func (suite *ClientRepositoryTestSuite) TestContactEmailUniquePerTenant() {
	tenant := suite.createTenant()

	client := suite.factories.Client.WithTenant(tenant.ID)
	suite.Require().NoError(suite.repo.Create(client))

	contact := suite.factories.Contact.Create(tenant.ID, client.ID)
	contact.Email = "dup@test.com"
	suite.Require().NoError(suite.repo.CreateContact(contact))

	dup := suite.factories.Contact.Create(tenant.ID, client.ID)
	dup.Email = "dup@test.com"
	err := suite.repo.CreateContact(dup)

	suite.Error(err)
	suite.Contains(err.Error(), "duplicate key value")
}

// TestDeleteScopedToTenant tests that deletion respects the tenant boundary
// and cascades contacts
func (suite *ClientRepositoryTestSuite) TestDeleteScopedToTenant() {
	tenantA := suite.createTenant()
	tenantB := suite.createTenant()

	client := suite.factories.Client.WithTenant(tenantA.ID)
	suite.Require().NoError(suite.repo.Create(client))

	contact := suite.factories.Contact.Create(tenantA.ID, client.ID)
	suite.Require().NoError(suite.repo.CreateContact(contact))

	err := suite.repo.Delete(tenantB.ID, client.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)

	err = suite.repo.Delete(tenantA.ID, client.ID)
	suite.NoError(err)

	_, err = suite.repo.GetContactByEmail(tenantA.ID, contact.Email)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

// TestClientRepositoryTestSuite runs the test suite
func TestClientRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(ClientRepositoryTestSuite))
}
