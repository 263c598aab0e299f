package auth

import (
	"net/http"
	"strconv"

	apperrors "crm-saas-backend/internal/errors"
	"crm-saas-backend/internal/service"

	"github.com/gin-gonic/gin"
)

func queryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

// AuthHandler handles HTTP requests for authentication
type AuthHandler struct {
	service *AuthService
	users   service.UserServiceInterface
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *AuthService, users service.UserServiceInterface) *AuthHandler {
	return &AuthHandler{service: authService, users: users}
}

// Login handles POST /api/v1/auth/login
// @Summary Authenticate a user
// @Description Verify credentials and issue a JWT access token. Every attempt is recorded in the login audit trail.
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} map[string]interface{} "Invalid request body"
// @Failure 401 {object} map[string]interface{} "Invalid credentials or disabled account"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	resp, err := h.service.Login(&req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if apperrors.IsAuthentication(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me handles GET /api/v1/auth/me
// @Summary Get the authenticated user
// @Description Return the profile of the user identified by the access token
// @Tags authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.UserResponse
// @Failure 401 {object} map[string]interface{} "Missing or invalid token"
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	user, err := h.users.GetByID(userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// ChangePasswordRequest represents the request to change the caller's password
type ChangePasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ChangePassword handles POST /api/v1/auth/change-password
// @Summary Change the caller's password
// @Description Rehash the password and clear any forced-change flag
// @Tags authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "New password"
// @Success 204 {string} string "Password changed"
// @Failure 400 {object} map[string]interface{} "Invalid request body"
// @Failure 401 {object} map[string]interface{} "Missing or invalid token"
// @Router /api/v1/auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.users.ChangePassword(userID, req.NewPassword); err != nil {
		if apperrors.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		return
	}

	c.Status(http.StatusNoContent)
}

// LoginHistory handles GET /api/v1/auth/login-history
// @Summary Get the caller's login history
// @Description Return the caller's login attempts, newest first
// @Tags authentication
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{} "Missing or invalid token"
// @Router /api/v1/auth/login-history [get]
func (h *AuthHandler) LoginHistory(c *gin.Context) {
	userID, ok := UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	attempts, total, err := h.users.LoginHistory(userID, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get login history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attempts":  attempts,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
