package handlers

import (
	"errors"
	"net/http"
	"strconv"

	apperrors "crm-saas-backend/internal/errors"
	"crm-saas-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LeadHandler handles HTTP requests for a tenant's lead pipeline
type LeadHandler struct {
	service service.LeadServiceInterface
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(service service.LeadServiceInterface) *LeadHandler {
	return &LeadHandler{service: service}
}

// CreateLead handles POST /api/v1/tenants/:id/leads
// @Summary Create a new lead
// @Description Create a lead in status "new"
// @Tags leads
// @Accept json
// @Produce json
// @Param id path string true "Tenant ID (UUID)"
// @Param lead body service.CreateLeadRequest true "Lead data"
// @Success 201 {object} service.LeadResponse "Successfully created lead"
// @Failure 400 {object} map[string]interface{} "Invalid request body"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /tenants/{id}/leads [post]
func (h *LeadHandler) CreateLead(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant ID: invalid UUID format"})
		return
	}

	var req service.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	lead, err := h.service.Create(tenantID, &req)
	if err != nil {
		if apperrors.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create lead", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, lead)
}

// GetLead handles GET /api/v1/tenants/:id/leads/:leadId
// @Summary Get lead by ID
// @Description Get a lead; leads of other tenants read as not found
// @Tags leads
// @Produce json
// @Param id path string true "Tenant ID (UUID)"
// @Param leadId path string true "Lead ID (UUID)"
// @Success 200 {object} service.LeadResponse "Successfully retrieved lead"
// @Failure 400 {object} map[string]interface{} "Invalid ID"
// @Failure 404 {object} map[string]interface{} "Lead not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /tenants/{id}/leads/{leadId} [get]
func (h *LeadHandler) GetLead(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant ID: invalid UUID format"})
		return
	}
	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lead ID: invalid UUID format"})
		return
	}

	lead, err := h.service.GetByID(tenantID, leadID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get lead", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, lead)
}

// ListLeads handles GET /api/v1/tenants/:id/leads?status=qualified
// @Summary List a tenant's leads
// @Description List the leads of a tenant with pagination, optionally filtered by status
// @Tags leads
// @Produce json
// @Param id path string true "Tenant ID (UUID)"
// @Param status query string false "Pipeline status filter"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} service.LeadListResponse "Successfully retrieved leads"
// @Failure 400 {object} map[string]interface{} "Invalid tenant ID or status"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /tenants/{id}/leads [get]
func (h *LeadHandler) ListLeads(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant ID: invalid UUID format"})
		return
	}

	status := c.Query("status")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	leads, err := h.service.GetByTenant(tenantID, status, page, pageSize)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidLeadStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list leads", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, leads)
}

// UpdateLead handles PUT /api/v1/tenants/:id/leads/:leadId
// @Summary Update a lead
// @Description Update a lead's fields or move it through the pipeline; converted leads are frozen
// @Tags leads
// @Accept json
// @Produce json
// @Param id path string true "Tenant ID (UUID)"
// @Param leadId path string true "Lead ID (UUID)"
// @Param lead body service.UpdateLeadRequest true "Fields to update"
// @Success 200 {object} service.LeadResponse "Successfully updated lead"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 404 {object} map[string]interface{} "Lead not found"
// @Failure 422 {object} map[string]interface{} "Lead already converted"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /tenants/{id}/leads/{leadId} [put]
func (h *LeadHandler) UpdateLead(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant ID: invalid UUID format"})
		return
	}
	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lead ID: invalid UUID format"})
		return
	}

	var req service.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	lead, err := h.service.Update(tenantID, leadID, &req)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, apperrors.ErrLeadAlreadyConverted) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, apperrors.ErrInvalidLeadStatus) || apperrors.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update lead", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, lead)
}

// ConvertLead handles POST /api/v1/tenants/:id/leads/:leadId/convert
// @Summary Convert a lead into a client
// @Description Create a client from the lead and mark the lead converted, atomically
// @Tags leads
// @Produce json
// @Param id path string true "Tenant ID (UUID)"
// @Param leadId path string true "Lead ID (UUID)"
// @Success 200 {object} map[string]interface{} "Converted lead and new client"
// @Failure 400 {object} map[string]interface{} "Invalid ID or lead is lost"
// @Failure 404 {object} map[string]interface{} "Lead not found"
// @Failure 409 {object} map[string]interface{} "Client name already taken"
// @Failure 422 {object} map[string]interface{} "Lead already converted"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /tenants/{id}/leads/{leadId}/convert [post]
func (h *LeadHandler) ConvertLead(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant ID: invalid UUID format"})
		return
	}
	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lead ID: invalid UUID format"})
		return
	}

	lead, client, err := h.service.Convert(tenantID, leadID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, apperrors.ErrLeadAlreadyConverted) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, apperrors.ErrInvalidLeadStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if apperrors.IsAlreadyExists(err) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to convert lead", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"lead": lead, "client": client})
}

// DeleteLead handles DELETE /api/v1/tenants/:id/leads/:leadId
// @Summary Delete a lead
// @Description Delete a lead
// @Tags leads
// @Produce json
// @Param id path string true "Tenant ID (UUID)"
// @Param leadId path string true "Lead ID (UUID)"
// @Success 204 {string} string "Lead deleted"
// @Failure 400 {object} map[string]interface{} "Invalid ID"
// @Failure 404 {object} map[string]interface{} "Lead not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /tenants/{id}/leads/{leadId} [delete]
func (h *LeadHandler) DeleteLead(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant ID: invalid UUID format"})
		return
	}
	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lead ID: invalid UUID format"})
		return
	}

	if err := h.service.Delete(tenantID, leadID); err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete lead", "details": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
