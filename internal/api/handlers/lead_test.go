package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"crm-saas-backend/internal/api/handlers"
	apperrors "crm-saas-backend/internal/errors"
	"crm-saas-backend/internal/mocks"
	"crm-saas-backend/internal/service"
	"crm-saas-backend/internal/testutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

// LeadHandlerTestSuite defines the test suite for LeadHandler
type LeadHandlerTestSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockService *mocks.MockLeadServiceInterface
	handler     *handlers.LeadHandler
	httpSuite   *testutils.HTTPTestSuite
}

// SetupTest sets up the test suite
func (suite *LeadHandlerTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockService = mocks.NewMockLeadServiceInterface(suite.ctrl)
	suite.handler = handlers.NewLeadHandler(suite.mockService)
	suite.httpSuite = testutils.SetupHTTPTest()

	scoped := suite.httpSuite.Router.Group("/api/v1/tenants/:id")
	{
		scoped.POST("/leads", suite.handler.CreateLead)
		scoped.GET("/leads", suite.handler.ListLeads)
		scoped.GET("/leads/:leadId", suite.handler.GetLead)
		scoped.PUT("/leads/:leadId", suite.handler.UpdateLead)
		scoped.POST("/leads/:leadId/convert", suite.handler.ConvertLead)
		scoped.DELETE("/leads/:leadId", suite.handler.DeleteLead)
	}
}

// TearDownTest cleans up after each test
func (suite *LeadHandlerTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

// TestCreateLead tests the CreateLead handler
func (suite *LeadHandlerTestSuite) TestCreateLead() {
	suite.T().Run("Success", func(t *testing.T) {
		tenantID := uuid.New()
		requestBody := map[string]interface{}{
			"first_name": "Jane",
			"last_name":  "Doe",
			"company":    "Prospect Inc",
		}

		expectedResponse := &service.LeadResponse{
			ID:        uuid.New(),
			TenantID:  tenantID,
			FirstName: "Jane",
			LastName:  "Doe",
			Status:    "new",
		}

		suite.mockService.EXPECT().
			Create(tenantID, gomock.Any()).
			Return(expectedResponse, nil).
			Times(1)

		recorder := suite.httpSuite.MakeRequest("POST", fmt.Sprintf("/api/v1/tenants/%s/leads", tenantID), requestBody)

		var response service.LeadResponse
		testutils.AssertJSONResponse(t, recorder, http.StatusCreated, &response)
		assert.Equal(t, "new", response.Status)
	})

	suite.T().Run("InvalidTenantID", func(t *testing.T) {
		recorder := suite.httpSuite.MakeRequest("POST", "/api/v1/tenants/nope/leads", map[string]interface{}{})
		testutils.AssertErrorResponse(t, recorder, http.StatusBadRequest, "invalid UUID format")
	})
}

// TestListLeads tests the ListLeads handler
func (suite *LeadHandlerTestSuite) TestListLeads() {
	suite.T().Run("StatusFilter", func(t *testing.T) {
		tenantID := uuid.New()
		expectedResponse := &service.LeadListResponse{
			Leads:    []service.LeadResponse{{ID: uuid.New(), Status: "qualified"}},
			Total:    1,
			Page:     1,
			PageSize: 20,
		}

		suite.mockService.EXPECT().
			GetByTenant(tenantID, "qualified", 1, 20).
			Return(expectedResponse, nil).
			Times(1)

		recorder := suite.httpSuite.MakeRequest("GET", fmt.Sprintf("/api/v1/tenants/%s/leads?status=qualified", tenantID), nil)

		var response service.LeadListResponse
		testutils.AssertJSONResponse(t, recorder, http.StatusOK, &response)
		assert.Len(t, response.Leads, 1)
	})

	suite.T().Run("InvalidStatus", func(t *testing.T) {
		tenantID := uuid.New()

		suite.mockService.EXPECT().
			GetByTenant(tenantID, "bogus", 1, 20).
			Return(nil, apperrors.ErrInvalidLeadStatus).
			Times(1)

		recorder := suite.httpSuite.MakeRequest("GET", fmt.Sprintf("/api/v1/tenants/%s/leads?status=bogus", tenantID), nil)

		testutils.AssertErrorResponse(t, recorder, http.StatusBadRequest, "invalid lead status")
	})
}

// TestUpdateLead tests the UpdateLead handler
func (suite *LeadHandlerTestSuite) TestUpdateLead() {
	suite.T().Run("Success", func(t *testing.T) {
		tenantID := uuid.New()
		leadID := uuid.New()
		requestBody := map[string]interface{}{"status": "contacted"}

		expectedResponse := &service.LeadResponse{ID: leadID, TenantID: tenantID, Status: "contacted"}

		suite.mockService.EXPECT().
			Update(tenantID, leadID, gomock.Any()).
			Return(expectedResponse, nil).
			Times(1)

		recorder := suite.httpSuite.MakeRequest("PUT", fmt.Sprintf("/api/v1/tenants/%s/leads/%s", tenantID, leadID), requestBody)

		var response service.LeadResponse
		testutils.AssertJSONResponse(t, recorder, http.StatusOK, &response)
		assert.Equal(t, "contacted", response.Status)
	})

	suite.T().Run("AlreadyConverted", func(t *testing.T) {
		tenantID := uuid.New()
		leadID := uuid.New()

		suite.mockService.EXPECT().
			Update(tenantID, leadID, gomock.Any()).
			Return(nil, apperrors.ErrLeadAlreadyConverted).
			Times(1)

		recorder := suite.httpSuite.MakeRequest("PUT", fmt.Sprintf("/api/v1/tenants/%s/leads/%s", tenantID, leadID), map[string]interface{}{"notes": "ping"})

		testutils.AssertErrorResponse(t, recorder, http.StatusUnprocessableEntity, "already been converted")
	})

	suite.T().Run("NotFound", func(t *testing.T) {
		tenantID := uuid.New()
		leadID := uuid.New()

		suite.mockService.EXPECT().
			Update(tenantID, leadID, gomock.Any()).
			Return(nil, apperrors.ErrLeadNotFound).
			Times(1)

		recorder := suite.httpSuite.MakeRequest("PUT", fmt.Sprintf("/api/v1/tenants/%s/leads/%s", tenantID, leadID), map[string]interface{}{"notes": "ping"})

		testutils.AssertErrorResponse(t, recorder, http.StatusNotFound, "lead not found")
	})
}

// TestConvertLead tests the ConvertLead handler
func (suite *LeadHandlerTestSuite) TestConvertLead() {
	suite.T().Run("Success", func(t *testing.T) {
		tenantID := uuid.New()
		leadID := uuid.New()
		clientID := uuid.New()

		leadResp := &service.LeadResponse{ID: leadID, TenantID: tenantID, Status: "converted", ConvertedClientID: &clientID}
		clientResp := &service.ClientResponse{ID: clientID, TenantID: tenantID, Name: "Prospect Inc"}

		suite.mockService.EXPECT().
			Convert(tenantID, leadID).
			Return(leadResp, clientResp, nil).
			Times(1)

		recorder := suite.httpSuite.MakeRequest("POST", fmt.Sprintf("/api/v1/tenants/%s/leads/%s/convert", tenantID, leadID), nil)

		var response struct {
			Lead   service.LeadResponse   `json:"lead"`
			Client service.ClientResponse `json:"client"`
		}
		testutils.AssertJSONResponse(t, recorder, http.StatusOK, &response)
		assert.Equal(t, "converted", response.Lead.Status)
		assert.Equal(t, clientID, response.Client.ID)
	})

	suite.T().Run("AlreadyConverted", func(t *testing.T) {
		tenantID := uuid.New()
		leadID := uuid.New()

		suite.mockService.EXPECT().
			Convert(tenantID, leadID).
			Return(nil, nil, apperrors.ErrLeadAlreadyConverted).
			Times(1)

		recorder := suite.httpSuite.MakeRequest("POST", fmt.Sprintf("/api/v1/tenants/%s/leads/%s/convert", tenantID, leadID), nil)

		testutils.AssertErrorResponse(t, recorder, http.StatusUnprocessableEntity, "already been converted")
	})

	suite.T().Run("LostLead", func(t *testing.T) {
		tenantID := uuid.New()
		leadID := uuid.New()

		suite.mockService.EXPECT().
			Convert(tenantID, leadID).
			Return(nil, nil, apperrors.ErrInvalidLeadStatus).
			Times(1)

		recorder := suite.httpSuite.MakeRequest("POST", fmt.Sprintf("/api/v1/tenants/%s/leads/%s/convert", tenantID, leadID), nil)

		testutils.AssertErrorResponse(t, recorder, http.StatusBadRequest, "invalid lead status")
	})

	suite.T().Run("ClientNameTaken", func(t *testing.T) {
		tenantID := uuid.New()
		leadID := uuid.New()

		suite.mockService.EXPECT().
			Convert(tenantID, leadID).
			Return(nil, nil, apperrors.ErrClientExists).
			Times(1)

		recorder := suite.httpSuite.MakeRequest("POST", fmt.Sprintf("/api/v1/tenants/%s/leads/%s/convert", tenantID, leadID), nil)

		testutils.AssertErrorResponse(t, recorder, http.StatusConflict, "already exists")
	})
}

// TestDeleteLead tests the DeleteLead handler
func (suite *LeadHandlerTestSuite) TestDeleteLead() {
	tenantID := uuid.New()
	leadID := uuid.New()

	suite.mockService.EXPECT().
		Delete(tenantID, leadID).
		Return(nil).
		Times(1)

	recorder := suite.httpSuite.MakeRequest("DELETE", fmt.Sprintf("/api/v1/tenants/%s/leads/%s", tenantID, leadID), nil)

	assert.Equal(suite.T(), http.StatusNoContent, recorder.Code)
}

// TestLeadHandlerTestSuite runs the test suite
func TestLeadHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(LeadHandlerTestSuite))
}
