package handlers

import (
	"net/http"
	"strconv"

	apperrors "crm-saas-backend/internal/errors"
	"crm-saas-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RoleHandler handles HTTP requests for roles, role bindings and access
// checks
type RoleHandler struct {
	service service.RoleServiceInterface
	access  service.AccessServiceInterface
}

// NewRoleHandler creates a new role handler
func NewRoleHandler(roleService service.RoleServiceInterface, access service.AccessServiceInterface) *RoleHandler {
	return &RoleHandler{service: roleService, access: access}
}

// CreateRole handles POST /api/v1/roles
// @Summary Create a new role
// @Description Create a role inside a tenant; names are unique per tenant, case-insensitively
// @Tags roles
// @Accept json
// @Produce json
// @Param role body service.CreateRoleRequest true "Role data"
// @Success 201 {object} service.RoleResponse "Successfully created role"
// @Failure 400 {object} map[string]interface{} "Invalid request body"
// @Failure 409 {object} map[string]interface{} "Role already exists"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /roles [post]
func (h *RoleHandler) CreateRole(c *gin.Context) {
	var req service.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	role, err := h.service.Create(&req)
	if err != nil {
		if apperrors.IsAlreadyExists(err) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if apperrors.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create role", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, role)
}

// GetRole handles GET /api/v1/roles/:id
// @Summary Get role by ID
// @Description Get a specific role by its UUID
// @Tags roles
// @Produce json
// @Param id path string true "Role ID (UUID)"
// @Success 200 {object} service.RoleResponse "Successfully retrieved role"
// @Failure 400 {object} map[string]interface{} "Invalid role ID"
// @Failure 404 {object} map[string]interface{} "Role not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /roles/{id} [get]
func (h *RoleHandler) GetRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role ID: invalid UUID format"})
		return
	}

	role, err := h.service.GetByID(id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get role", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, role)
}

// ListTenantRoles handles GET /api/v1/tenants/:id/roles
// @Summary List a tenant's roles
// @Description List the roles defined for a tenant with pagination
// @Tags roles
// @Produce json
// @Param id path string true "Tenant ID (UUID)"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} service.RoleListResponse "Successfully retrieved roles"
// @Failure 400 {object} map[string]interface{} "Invalid tenant ID"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /tenants/{id}/roles [get]
func (h *RoleHandler) ListTenantRoles(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant ID: invalid UUID format"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	roles, err := h.service.GetByTenant(tenantID, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list roles", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, roles)
}

// UpdateRole handles PUT /api/v1/roles/:id
// @Summary Update a role
// @Description Update a role's description, capability flags or custom permissions
// @Tags roles
// @Accept json
// @Produce json
// @Param id path string true "Role ID (UUID)"
// @Param role body service.UpdateRoleRequest true "Fields to update"
// @Success 200 {object} service.RoleResponse "Successfully updated role"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 404 {object} map[string]interface{} "Role not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /roles/{id} [put]
func (h *RoleHandler) UpdateRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role ID: invalid UUID format"})
		return
	}

	var req service.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	role, err := h.service.Update(id, &req)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if apperrors.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, role)
}

// DeleteRole handles DELETE /api/v1/roles/:id
// @Summary Delete a role
// @Description Delete a role; its bindings cascade away
// @Tags roles
// @Produce json
// @Param id path string true "Role ID (UUID)"
// @Success 204 {string} string "Role deleted"
// @Failure 400 {object} map[string]interface{} "Invalid role ID"
// @Failure 404 {object} map[string]interface{} "Role not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /roles/{id} [delete]
func (h *RoleHandler) DeleteRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role ID: invalid UUID format"})
		return
	}

	if err := h.service.Delete(id); err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete role", "details": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// AssignRole handles POST /api/v1/role-bindings
// @Summary Assign a role to a user
// @Description Bind a role to a user in the same tenant; re-assigning overwrites the previous binding
// @Tags roles
// @Accept json
// @Produce json
// @Param binding body service.AssignRoleRequest true "Binding data"
// @Success 201 {object} service.RoleBindingResponse "Successfully assigned role"
// @Failure 400 {object} map[string]interface{} "Invalid request or cross-tenant assignment"
// @Failure 404 {object} map[string]interface{} "User or role not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /role-bindings [post]
func (h *RoleHandler) AssignRole(c *gin.Context) {
	var req service.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	binding, err := h.service.Assign(&req)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if apperrors.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign role", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, binding)
}

// RevokeRole handles DELETE /api/v1/users/:id/roles/:roleId
// @Summary Revoke a role from a user
// @Description Deactivate the binding, keeping it for audit
// @Tags roles
// @Produce json
// @Param id path string true "User ID (UUID)"
// @Param roleId path string true "Role ID (UUID)"
// @Success 204 {string} string "Role revoked"
// @Failure 400 {object} map[string]interface{} "Invalid ID"
// @Failure 404 {object} map[string]interface{} "Binding not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /users/{id}/roles/{roleId} [delete]
func (h *RoleHandler) RevokeRole(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID: invalid UUID format"})
		return
	}
	roleID, err := uuid.Parse(c.Param("roleId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role ID: invalid UUID format"})
		return
	}

	if err := h.service.Revoke(userID, roleID); err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke role", "details": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// GetUserBindings handles GET /api/v1/users/:id/roles
// @Summary List a user's role bindings
// @Description List all of a user's bindings including inactive and expired ones
// @Tags roles
// @Produce json
// @Param id path string true "User ID (UUID)"
// @Success 200 {array} service.RoleBindingResponse "Successfully retrieved bindings"
// @Failure 400 {object} map[string]interface{} "Invalid user ID"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /users/{id}/roles [get]
func (h *RoleHandler) GetUserBindings(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID: invalid UUID format"})
		return
	}

	bindings, err := h.service.GetBindings(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get role bindings", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, bindings)
}

// GetEffectivePermissions handles GET /api/v1/users/:id/permissions
// @Summary Get a user's effective permissions
// @Description Merge the user's active, unexpired role bindings into a single permission set
// @Tags roles
// @Produce json
// @Param id path string true "User ID (UUID)"
// @Success 200 {object} service.EffectivePermissions "Merged permission set"
// @Failure 400 {object} map[string]interface{} "Invalid user ID"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /users/{id}/permissions [get]
func (h *RoleHandler) GetEffectivePermissions(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID: invalid UUID format"})
		return
	}

	perms, err := h.service.GetEffectivePermissions(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve permissions", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, perms)
}

// CheckAccess handles GET /api/v1/users/:id/can/:capability
// @Summary Check a capability
// @Description Evaluate whether the user may exercise a named capability
// @Tags roles
// @Produce json
// @Param id path string true "User ID (UUID)"
// @Param capability path string true "Capability name"
// @Success 200 {object} service.AccessDecision "Decision with reason"
// @Failure 400 {object} map[string]interface{} "Invalid user ID"
// @Failure 404 {object} map[string]interface{} "User not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /users/{id}/can/{capability} [get]
func (h *RoleHandler) CheckAccess(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID: invalid UUID format"})
		return
	}

	decision, err := h.access.Can(userID, c.Param("capability"))
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to evaluate access", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, decision)
}
