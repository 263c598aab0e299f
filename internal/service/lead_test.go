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

// LeadServiceTestSuite defines the test suite for LeadService
type LeadServiceTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockLeadRepo *mocks.MockLeadRepositoryInterface
	leadService  *service.LeadService
	validator    *validator.Validate
}

// SetupTest sets up the test suite
func (suite *LeadServiceTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockLeadRepo = mocks.NewMockLeadRepositoryInterface(suite.ctrl)
	suite.validator = validator.New()

	suite.leadService = service.NewLeadService(suite.mockLeadRepo, suite.validator)
}

// TearDownTest cleans up after each test
func (suite *LeadServiceTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

// TestCreateLead tests creating a lead in the initial status
func (suite *LeadServiceTestSuite) TestCreateLead() {
	tenantID := uuid.New()
	req := &service.CreateLeadRequest{
		FirstName:      "Jane",
		LastName:       "Doe",
		Email:          "jane@prospect.example.com",
		Company:        "Prospect Inc",
		EstimatedValue: 15000,
	}

	suite.mockLeadRepo.EXPECT().
		Create(gomock.Any()).
		DoAndReturn(func(lead *models.Lead) error {
			assert.Equal(suite.T(), models.LeadStatusNew, lead.Status)
			assert.Equal(suite.T(), tenantID, lead.TenantID)
			return nil
		}).
		Times(1)

	response, err := suite.leadService.Create(tenantID, req)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "new", response.Status)
	assert.Equal(suite.T(), float64(15000), response.EstimatedValue)
}

// TestCreateLeadValidationError tests a negative estimated value
func (suite *LeadServiceTestSuite) TestCreateLeadValidationError() {
	req := &service.CreateLeadRequest{
		FirstName:      "Jane",
		LastName:       "Doe",
		EstimatedValue: -5,
	}

	response, err := suite.leadService.Create(uuid.New(), req)

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), response)
	assert.Contains(suite.T(), err.Error(), "validation failed")
}

// TestGetLeadsByTenantInvalidStatus tests the status filter guard
func (suite *LeadServiceTestSuite) TestGetLeadsByTenantInvalidStatus() {
	response, err := suite.leadService.GetByTenant(uuid.New(), "bogus", 1, 20)

	assert.Nil(suite.T(), response)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidLeadStatus)
}

// TestGetLeadsByTenantStatusFilter tests listing with a status filter
func (suite *LeadServiceTestSuite) TestGetLeadsByTenantStatusFilter() {
	tenantID := uuid.New()
	leads := []models.Lead{
		{TenantID: tenantID, FirstName: "Jane", LastName: "Doe", Status: models.LeadStatusQualified},
	}

	suite.mockLeadRepo.EXPECT().
		GetByTenantID(tenantID, models.LeadStatusQualified, 20, 0).
		Return(leads, int64(1), nil).
		Times(1)

	response, err := suite.leadService.GetByTenant(tenantID, "qualified", 1, 20)

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), response.Leads, 1)
	assert.Equal(suite.T(), "qualified", response.Leads[0].Status)
}

// TestUpdateLeadStatus tests moving a lead through the pipeline
func (suite *LeadServiceTestSuite) TestUpdateLeadStatus() {
	tenantID := uuid.New()
	leadID := uuid.New()
	lead := &models.Lead{TenantID: tenantID, FirstName: "Jane", LastName: "Doe", Status: models.LeadStatusNew}
	lead.ID = leadID

	req := &service.UpdateLeadRequest{Status: "contacted"}

	suite.mockLeadRepo.EXPECT().
		GetByID(tenantID, leadID).
		Return(lead, nil).
		Times(1)

	suite.mockLeadRepo.EXPECT().
		Update(gomock.Any()).
		DoAndReturn(func(updated *models.Lead) error {
			assert.Equal(suite.T(), models.LeadStatusContacted, updated.Status)
			return nil
		}).
		Times(1)

	response, err := suite.leadService.Update(tenantID, leadID, req)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "contacted", response.Status)
}

// TestUpdateLeadConvertedStatusRejected tests that "converted" cannot be set
// directly
func (suite *LeadServiceTestSuite) TestUpdateLeadConvertedStatusRejected() {
	tenantID := uuid.New()
	leadID := uuid.New()
	lead := &models.Lead{TenantID: tenantID, FirstName: "Jane", LastName: "Doe", Status: models.LeadStatusQualified}
	lead.ID = leadID

	suite.mockLeadRepo.EXPECT().
		GetByID(tenantID, leadID).
		Return(lead, nil).
		Times(1)

	response, err := suite.leadService.Update(tenantID, leadID, &service.UpdateLeadRequest{Status: "converted"})

	assert.Nil(suite.T(), response)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidLeadStatus)
}

// TestUpdateConvertedLeadFrozen tests that a converted lead cannot change
func (suite *LeadServiceTestSuite) TestUpdateConvertedLeadFrozen() {
	tenantID := uuid.New()
	leadID := uuid.New()
	lead := &models.Lead{TenantID: tenantID, FirstName: "Jane", LastName: "Doe", Status: models.LeadStatusConverted}
	lead.ID = leadID

	suite.mockLeadRepo.EXPECT().
		GetByID(tenantID, leadID).
		Return(lead, nil).
		Times(1)

	response, err := suite.leadService.Update(tenantID, leadID, &service.UpdateLeadRequest{Notes: "ping"})

	assert.Nil(suite.T(), response)
	assert.ErrorIs(suite.T(), err, apperrors.ErrLeadAlreadyConverted)
}

// TestConvertLeadUsesCompanyName tests that the client takes the company name
func (suite *LeadServiceTestSuite) TestConvertLeadUsesCompanyName() {
	tenantID := uuid.New()
	leadID := uuid.New()
	lead := &models.Lead{
		TenantID:  tenantID,
		FirstName: "Jane",
		LastName:  "Doe",
		Company:   "Prospect Inc",
		Email:     "jane@prospect.example.com",
		Status:    models.LeadStatusQualified,
	}
	lead.ID = leadID

	suite.mockLeadRepo.EXPECT().
		GetByID(tenantID, leadID).
		Return(lead, nil).
		Times(1)

	suite.mockLeadRepo.EXPECT().
		ConvertToClient(gomock.Any(), gomock.Any()).
		DoAndReturn(func(converted *models.Lead, client *models.Client) error {
			assert.Equal(suite.T(), "Prospect Inc", client.Name)
			assert.Equal(suite.T(), "jane@prospect.example.com", client.Email)
			client.ID = uuid.New()
			return nil
		}).
		Times(1)

	leadResp, clientResp, err := suite.leadService.Convert(tenantID, leadID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "converted", leadResp.Status)
	assert.Equal(suite.T(), "Prospect Inc", clientResp.Name)
	assert.Equal(suite.T(), clientResp.ID, *leadResp.ConvertedClientID)
}

// TestConvertLeadFallsBackToPersonName tests the naming fallback when no
// company was captured
func (suite *LeadServiceTestSuite) TestConvertLeadFallsBackToPersonName() {
	tenantID := uuid.New()
	leadID := uuid.New()
	lead := &models.Lead{
		TenantID:  tenantID,
		FirstName: "Jane",
		LastName:  "Doe",
		Status:    models.LeadStatusQualified,
	}
	lead.ID = leadID

	suite.mockLeadRepo.EXPECT().
		GetByID(tenantID, leadID).
		Return(lead, nil).
		Times(1)

	suite.mockLeadRepo.EXPECT().
		ConvertToClient(gomock.Any(), gomock.Any()).
		DoAndReturn(func(converted *models.Lead, client *models.Client) error {
			assert.Equal(suite.T(), "Jane Doe", client.Name)
			return nil
		}).
		Times(1)

	_, clientResp, err := suite.leadService.Convert(tenantID, leadID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Jane Doe", clientResp.Name)
}

// TestConvertLeadAlreadyConverted tests double conversion
func (suite *LeadServiceTestSuite) TestConvertLeadAlreadyConverted() {
	tenantID := uuid.New()
	leadID := uuid.New()
	lead := &models.Lead{TenantID: tenantID, FirstName: "Jane", LastName: "Doe", Status: models.LeadStatusConverted}
	lead.ID = leadID

	suite.mockLeadRepo.EXPECT().
		GetByID(tenantID, leadID).
		Return(lead, nil).
		Times(1)

	leadResp, clientResp, err := suite.leadService.Convert(tenantID, leadID)

	assert.Nil(suite.T(), leadResp)
	assert.Nil(suite.T(), clientResp)
	assert.ErrorIs(suite.T(), err, apperrors.ErrLeadAlreadyConverted)
}

// TestConvertLostLead tests that a lost lead is not convertible
func (suite *LeadServiceTestSuite) TestConvertLostLead() {
	tenantID := uuid.New()
	leadID := uuid.New()
	lead := &models.Lead{TenantID: tenantID, FirstName: "Jane", LastName: "Doe", Status: models.LeadStatusLost}
	lead.ID = leadID

	suite.mockLeadRepo.EXPECT().
		GetByID(tenantID, leadID).
		Return(lead, nil).
		Times(1)

	_, _, err := suite.leadService.Convert(tenantID, leadID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidLeadStatus)
}

// TestConvertLeadDuplicateClientName tests that a name collision surfaces as
// a client conflict
func (suite *LeadServiceTestSuite) TestConvertLeadDuplicateClientName() {
	tenantID := uuid.New()
	leadID := uuid.New()
	lead := &models.Lead{TenantID: tenantID, FirstName: "Jane", LastName: "Doe", Company: "Prospect Inc", Status: models.LeadStatusQualified}
	lead.ID = leadID

	suite.mockLeadRepo.EXPECT().
		GetByID(tenantID, leadID).
		Return(lead, nil).
		Times(1)

	suite.mockLeadRepo.EXPECT().
		ConvertToClient(gomock.Any(), gomock.Any()).
		Return(gorm.ErrDuplicatedKey).
		Times(1)

	_, _, err := suite.leadService.Convert(tenantID, leadID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrClientExists)
}

// TestDeleteLeadNotFound tests deleting a lead outside the tenant
func (suite *LeadServiceTestSuite) TestDeleteLeadNotFound() {
	tenantID := uuid.New()
	leadID := uuid.New()

	suite.mockLeadRepo.EXPECT().
		Delete(tenantID, leadID).
		Return(gorm.ErrRecordNotFound).
		Times(1)

	err := suite.leadService.Delete(tenantID, leadID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrLeadNotFound)
}

// TestLeadServiceTestSuite runs the test suite
func TestLeadServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LeadServiceTestSuite))
}
