package service_test

import (
	"testing"

	"crm-saas-backend/internal/database/models"
	apperrors "crm-saas-backend/internal/errors"
	"crm-saas-backend/internal/mocks"
	"crm-saas-backend/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

// TenantServiceTestSuite defines the test suite for TenantService
type TenantServiceTestSuite struct {
	suite.Suite
	ctrl           *gomock.Controller
	mockTenantRepo *mocks.MockTenantRepositoryInterface
	mockDomainRepo *mocks.MockDomainRepositoryInterface
	tenantService  *service.TenantService
	validator      *validator.Validate
}

// SetupTest sets up the test suite
func (suite *TenantServiceTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockTenantRepo = mocks.NewMockTenantRepositoryInterface(suite.ctrl)
	suite.mockDomainRepo = mocks.NewMockDomainRepositoryInterface(suite.ctrl)
	suite.validator = validator.New()

	suite.tenantService = service.NewTenantService(
		suite.mockTenantRepo,
		suite.mockDomainRepo,
		suite.validator,
		service.NewLogNotifier(),
		service.NewNoopBillingGateway(),
	)
}

// TearDownTest cleans up after each test
func (suite *TenantServiceTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

// TestCreateTenant tests creating a tenant
func (suite *TenantServiceTestSuite) TestCreateTenant() {
	req := &service.CreateTenantRequest{
		Name:  "Acme Corp",
		Slug:  "Acme",
		Email: "owner@acme.com",
	}

	// No tenant exists with the normalized slug
	suite.mockTenantRepo.EXPECT().
		GetBySlug("acme").
		Return(nil, gorm.ErrRecordNotFound).
		Times(1)

	suite.mockTenantRepo.EXPECT().
		CreateWithSettings(gomock.Any(), gomock.Any()).
		DoAndReturn(func(tenant *models.Tenant, settings *models.TenantSettings) error {
			assert.Equal(suite.T(), "acme", tenant.Slug)
			assert.True(suite.T(), tenant.IsActive)
			assert.Equal(suite.T(), "free", tenant.SubscriptionPlan)
			assert.Equal(suite.T(), "UTC", tenant.Timezone)
			assert.NotNil(suite.T(), settings)
			return nil
		}).
		Times(1)

	response, err := suite.tenantService.Create(req)

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), response)
	assert.Equal(suite.T(), "acme", response.Slug)
	assert.Equal(suite.T(), req.Name, response.Name)
}

// TestCreateTenantWithInitialDomain tests that the initial domain is attached
func (suite *TenantServiceTestSuite) TestCreateTenantWithInitialDomain() {
	req := &service.CreateTenantRequest{
		Name:          "Acme Corp",
		Slug:          "acme",
		Email:         "owner@acme.com",
		InitialDomain: "CRM.Acme.com",
	}

	suite.mockTenantRepo.EXPECT().
		GetBySlug("acme").
		Return(nil, gorm.ErrRecordNotFound).
		Times(1)

	suite.mockTenantRepo.EXPECT().
		CreateWithSettings(gomock.Any(), gomock.Any()).
		Return(nil).
		Times(1)

	suite.mockDomainRepo.EXPECT().
		Create(gomock.Any()).
		DoAndReturn(func(domain *models.Domain) error {
			assert.Equal(suite.T(), "crm.acme.com", domain.Domain)
			return nil
		}).
		Times(1)

	response, err := suite.tenantService.Create(req)

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), response)
}

// TestCreateTenantDuplicateSlug tests creating a tenant with a taken slug
func (suite *TenantServiceTestSuite) TestCreateTenantDuplicateSlug() {
	req := &service.CreateTenantRequest{
		Name:  "Acme Corp",
		Slug:  "acme",
		Email: "owner@acme.com",
	}

	suite.mockTenantRepo.EXPECT().
		GetBySlug("acme").
		Return(&models.Tenant{Slug: "acme"}, nil).
		Times(1)

	response, err := suite.tenantService.Create(req)

	assert.Nil(suite.T(), response)
	assert.ErrorIs(suite.T(), err, apperrors.ErrTenantExists)
}

// TestCreateTenantValidationError tests creating a tenant with a bad request
func (suite *TenantServiceTestSuite) TestCreateTenantValidationError() {
	req := &service.CreateTenantRequest{
		Name:  "Acme Corp",
		Slug:  "acme",
		Email: "not-an-email",
	}

	response, err := suite.tenantService.Create(req)

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), response)
	assert.Contains(suite.T(), err.Error(), "validation failed")
}

// TestGetTenantByID tests retrieving a tenant with its domains
func (suite *TenantServiceTestSuite) TestGetTenantByID() {
	tenantID := uuid.New()
	tenant := &models.Tenant{
		Name: "Acme Corp",
		Slug: "acme",
		Domains: []models.Domain{
			{TenantID: tenantID, Domain: "acme.com", IsPrimary: true},
		},
	}
	tenant.ID = tenantID

	suite.mockTenantRepo.EXPECT().
		GetWithDomains(tenantID).
		Return(tenant, nil).
		Times(1)

	response, err := suite.tenantService.GetByID(tenantID)

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), response)
	assert.Equal(suite.T(), "acme", response.Slug)
	assert.Len(suite.T(), response.Domains, 1)
	assert.True(suite.T(), response.Domains[0].IsPrimary)
}

// TestGetTenantByIDNotFound tests retrieving a missing tenant
func (suite *TenantServiceTestSuite) TestGetTenantByIDNotFound() {
	tenantID := uuid.New()

	suite.mockTenantRepo.EXPECT().
		GetWithDomains(tenantID).
		Return(nil, gorm.ErrRecordNotFound).
		Times(1)

	response, err := suite.tenantService.GetByID(tenantID)

	assert.Nil(suite.T(), response)
	assert.ErrorIs(suite.T(), err, apperrors.ErrTenantNotFound)
}

// TestResolveByDomain tests resolving a tenant from a request hostname
func (suite *TenantServiceTestSuite) TestResolveByDomain() {
	tenant := &models.Tenant{Name: "Acme Corp", Slug: "acme"}
	tenant.ID = uuid.New()

	// The port suffix is stripped and the host lowercased before lookup
	suite.mockTenantRepo.EXPECT().
		GetByDomainName("crm.acme.com").
		Return(tenant, nil).
		Times(1)

	response, err := suite.tenantService.ResolveByDomain("CRM.Acme.com:8443")

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), response)
	assert.Equal(suite.T(), "acme", response.Slug)
}

// TestResolveByDomainNotFound tests resolving an unknown hostname
func (suite *TenantServiceTestSuite) TestResolveByDomainNotFound() {
	suite.mockTenantRepo.EXPECT().
		GetByDomainName("unknown.example.com").
		Return(nil, gorm.ErrRecordNotFound).
		Times(1)

	response, err := suite.tenantService.ResolveByDomain("unknown.example.com")

	assert.Nil(suite.T(), response)
	assert.ErrorIs(suite.T(), err, apperrors.ErrTenantNotFound)
}

// TestGetAllTenantsClampsPagination tests that out-of-range paging is clamped
func (suite *TenantServiceTestSuite) TestGetAllTenantsClampsPagination() {
	suite.mockTenantRepo.EXPECT().
		GetAll(20, 0).
		Return([]models.Tenant{}, int64(0), nil).
		Times(1)

	response, err := suite.tenantService.GetAll(0, 500)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, response.Page)
	assert.Equal(suite.T(), 20, response.PageSize)
}

// TestUpdateTenant tests patching a tenant
func (suite *TenantServiceTestSuite) TestUpdateTenant() {
	tenantID := uuid.New()
	tenant := &models.Tenant{Name: "Acme Corp", Slug: "acme", MaxUsers: 5}
	tenant.ID = tenantID

	maxUsers := 25
	inactive := false
	req := &service.UpdateTenantRequest{
		Name:     "Acme Corporation",
		MaxUsers: &maxUsers,
		IsActive: &inactive,
	}

	suite.mockTenantRepo.EXPECT().
		GetByID(tenantID).
		Return(tenant, nil).
		Times(1)

	suite.mockTenantRepo.EXPECT().
		Update(gomock.Any()).
		DoAndReturn(func(updated *models.Tenant) error {
			assert.Equal(suite.T(), "Acme Corporation", updated.Name)
			assert.Equal(suite.T(), 25, updated.MaxUsers)
			assert.False(suite.T(), updated.IsActive)
			return nil
		}).
		Times(1)

	response, err := suite.tenantService.Update(tenantID, req)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Acme Corporation", response.Name)
	assert.Equal(suite.T(), 25, response.MaxUsers)
}

// TestDeleteTenantNotFound tests deleting a missing tenant
func (suite *TenantServiceTestSuite) TestDeleteTenantNotFound() {
	tenantID := uuid.New()

	suite.mockTenantRepo.EXPECT().
		GetByID(tenantID).
		Return(nil, gorm.ErrRecordNotFound).
		Times(1)

	err := suite.tenantService.Delete(tenantID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrTenantNotFound)
}

// TestAddDomain tests attaching a domain to a tenant
func (suite *TenantServiceTestSuite) TestAddDomain() {
	tenantID := uuid.New()
	tenant := &models.Tenant{Slug: "acme"}
	tenant.ID = tenantID

	req := &service.AddDomainRequest{Domain: "Portal.Acme.com", VerificationMethod: "file"}

	suite.mockTenantRepo.EXPECT().
		GetByID(tenantID).
		Return(tenant, nil).
		Times(1)

	suite.mockDomainRepo.EXPECT().
		Create(gomock.Any()).
		DoAndReturn(func(domain *models.Domain) error {
			assert.Equal(suite.T(), "portal.acme.com", domain.Domain)
			assert.Equal(suite.T(), models.DomainVerificationFile, domain.VerificationMethod)
			assert.NotEmpty(suite.T(), domain.VerificationToken)
			return nil
		}).
		Times(1)

	response, err := suite.tenantService.AddDomain(tenantID, req)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "portal.acme.com", response.Domain)
}

// TestAddDomainTenantNotFound tests attaching a domain to a missing tenant
func (suite *TenantServiceTestSuite) TestAddDomainTenantNotFound() {
	tenantID := uuid.New()
	req := &service.AddDomainRequest{Domain: "portal.acme.com"}

	suite.mockTenantRepo.EXPECT().
		GetByID(tenantID).
		Return(nil, gorm.ErrRecordNotFound).
		Times(1)

	response, err := suite.tenantService.AddDomain(tenantID, req)

	assert.Nil(suite.T(), response)
	assert.ErrorIs(suite.T(), err, apperrors.ErrTenantNotFound)
}

// TestSetPrimaryDomainPassesNotFoundThrough tests that repository sentinels
// survive the service layer
func (suite *TenantServiceTestSuite) TestSetPrimaryDomainPassesNotFoundThrough() {
	tenantID := uuid.New()
	domainID := uuid.New()

	suite.mockDomainRepo.EXPECT().
		SetPrimary(tenantID, domainID).
		Return(apperrors.ErrDomainNotFound).
		Times(1)

	err := suite.tenantService.SetPrimaryDomain(tenantID, domainID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrDomainNotFound)
}

// TestDeleteDomainWrongTenant tests that another tenant's domain reads as
// not found
func (suite *TenantServiceTestSuite) TestDeleteDomainWrongTenant() {
	tenantID := uuid.New()
	domainID := uuid.New()
	domain := &models.Domain{TenantID: uuid.New(), Domain: "other.example.com"}
	domain.ID = domainID

	suite.mockDomainRepo.EXPECT().
		GetByID(domainID).
		Return(domain, nil).
		Times(1)

	err := suite.tenantService.DeleteDomain(tenantID, domainID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrDomainNotFound)
}

// TestDeleteDomain tests deleting an owned domain
func (suite *TenantServiceTestSuite) TestDeleteDomain() {
	tenantID := uuid.New()
	domainID := uuid.New()
	domain := &models.Domain{TenantID: tenantID, Domain: "acme.com"}
	domain.ID = domainID

	suite.mockDomainRepo.EXPECT().
		GetByID(domainID).
		Return(domain, nil).
		Times(1)

	suite.mockDomainRepo.EXPECT().
		Delete(domainID).
		Return(nil).
		Times(1)

	err := suite.tenantService.DeleteDomain(tenantID, domainID)

	assert.NoError(suite.T(), err)
}

// TestListDomains tests listing a tenant's domains
func (suite *TenantServiceTestSuite) TestListDomains() {
	tenantID := uuid.New()
	domains := []models.Domain{
		{TenantID: tenantID, Domain: "acme.com", IsPrimary: true},
		{TenantID: tenantID, Domain: "acme.io"},
	}

	suite.mockDomainRepo.EXPECT().
		GetByTenantID(tenantID).
		Return(domains, nil).
		Times(1)

	responses, err := suite.tenantService.ListDomains(tenantID)

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), responses, 2)
	assert.True(suite.T(), responses[0].IsPrimary)
	assert.False(suite.T(), responses[1].IsPrimary)
}

// TestTenantServiceTestSuite runs the test suite
func TestTenantServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TenantServiceTestSuite))
}
