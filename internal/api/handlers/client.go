package handlers

import (
	"net/http"
	"strconv"

	apperrors "crm-saas-backend/internal/errors"
	"crm-saas-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ClientHandler handles HTTP requests for a tenant's clients and contacts
type ClientHandler struct {
	service service.ClientServiceInterface
}

// NewClientHandler creates a new client handler
func NewClientHandler(service service.ClientServiceInterface) *ClientHandler {
	return &ClientHandler{service: service}
}

// CreateClient handles POST /api/v1/tenants/:id/clients
// @Summary Create a new client
// @Description Create a client in a tenant; names are unique per tenant
// @Tags clients
// @Accept json
// @Produce json
// @Param id path string true "Tenant ID (UUID)"
// @Param client body service.CreateClientRequest true "Client data"
// @Success 201 {object} service.ClientResponse "Successfully created client"
// @Failure 400 {object} map[string]interface{} "Invalid request body"
// @Failure 409 {object} map[string]interface{} "Client already exists"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /tenants/{id}/clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant ID: invalid UUID format"})
		return
	}

	var req service.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	client, err := h.service.Create(tenantID, &req)
	if err != nil {
		if apperrors.IsAlreadyExists(err) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if apperrors.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create client", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, client)
}

// GetClient handles GET /api/v1/tenants/:id/clients/:clientId
// @Summary Get client by ID
// @Description Get a client with its contacts; clients of other tenants read as not found
// @Tags clients
// @Produce json
// @Param id path string true "Tenant ID (UUID)"
// @Param clientId path string true "Client ID (UUID)"
// @Success 200 {object} service.ClientResponse "Successfully retrieved client"
// @Failure 400 {object} map[string]interface{} "Invalid ID"
// @Failure 404 {object} map[string]interface{} "Client not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /tenants/{id}/clients/{clientId} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant ID: invalid UUID format"})
		return
	}
	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client ID: invalid UUID format"})
		return
	}

	client, err := h.service.GetByID(tenantID, clientID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get client", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, client)
}

// ListClients handles GET /api/v1/tenants/:id/clients
// @Summary List a tenant's clients
// @Description List the clients of a tenant with pagination
// @Tags clients
// @Produce json
// @Param id path string true "Tenant ID (UUID)"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} service.ClientListResponse "Successfully retrieved clients"
// @Failure 400 {object} map[string]interface{} "Invalid tenant ID"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /tenants/{id}/clients [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant ID: invalid UUID format"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	clients, err := h.service.GetByTenant(tenantID, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list clients", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, clients)
}

// UpdateClient handles PUT /api/v1/tenants/:id/clients/:clientId
// @Summary Update a client
// @Description Update a client's fields
// @Tags clients
// @Accept json
// @Produce json
// @Param id path string true "Tenant ID (UUID)"
// @Param clientId path string true "Client ID (UUID)"
// @Param client body service.UpdateClientRequest true "Fields to update"
// @Success 200 {object} service.ClientResponse "Successfully updated client"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 404 {object} map[string]interface{} "Client not found"
// @Failure 409 {object} map[string]interface{} "Name already taken"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /tenants/{id}/clients/{clientId} [put]
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant ID: invalid UUID format"})
		return
	}
	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client ID: invalid UUID format"})
		return
	}

	var req service.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	client, err := h.service.Update(tenantID, clientID, &req)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if apperrors.IsAlreadyExists(err) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if apperrors.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update client", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, client)
}

// DeleteClient handles DELETE /api/v1/tenants/:id/clients/:clientId
// @Summary Delete a client
// @Description Delete a client and its contacts
// @Tags clients
// @Produce json
// @Param id path string true "Tenant ID (UUID)"
// @Param clientId path string true "Client ID (UUID)"
// @Success 204 {string} string "Client deleted"
// @Failure 400 {object} map[string]interface{} "Invalid ID"
// @Failure 404 {object} map[string]interface{} "Client not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /tenants/{id}/clients/{clientId} [delete]
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant ID: invalid UUID format"})
		return
	}
	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client ID: invalid UUID format"})
		return
	}

	if err := h.service.Delete(tenantID, clientID); err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete client", "details": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// AddContact handles POST /api/v1/tenants/:id/clients/:clientId/contacts
// @Summary Add a contact to a client
// @Description Create a contact under a client; emails are unique per tenant
// @Tags clients
// @Accept json
// @Produce json
// @Param id path string true "Tenant ID (UUID)"
// @Param clientId path string true "Client ID (UUID)"
// @Param contact body service.CreateContactRequest true "Contact data"
// @Success 201 {object} service.ContactResponse "Successfully created contact"
// @Failure 400 {object} map[string]interface{} "Invalid request body"
// @Failure 404 {object} map[string]interface{} "Client not found"
// @Failure 409 {object} map[string]interface{} "Contact already exists"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /tenants/{id}/clients/{clientId}/contacts [post]
func (h *ClientHandler) AddContact(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant ID: invalid UUID format"})
		return
	}
	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client ID: invalid UUID format"})
		return
	}

	var req service.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	contact, err := h.service.AddContact(tenantID, clientID, &req)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if apperrors.IsAlreadyExists(err) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if apperrors.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contact", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, contact)
}
