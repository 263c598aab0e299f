package auth

import (
	"net/http"
	"strings"

	"crm-saas-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	service *AuthService
	access  service.AccessServiceInterface
	tenants service.TenantServiceInterface
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService *AuthService, access service.AccessServiceInterface, tenants service.TenantServiceInterface) *AuthMiddleware {
	return &AuthMiddleware{service: authService, access: access, tenants: tenants}
}

// RequireAuth validates JWT tokens and sets user context
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := m.service.ValidateJWT(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("is_superuser", claims.IsSuperuser)
		c.Set("is_tenant_admin", claims.IsTenantAdmin)
		if claims.TenantID != nil {
			c.Set("tenant_id", *claims.TenantID)
		}
		c.Set("auth_claims", claims)

		c.Next()
	}
}

// RequireCapability denies the request unless the authenticated user holds
// the named capability. Must run after RequireAuth.
func (m *AuthMiddleware) RequireCapability(capability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		decision, err := m.access.Can(userID, capability)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to evaluate permissions"})
			c.Abort()
			return
		}
		if !decision.Allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions", "reason": decision.Reason})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireTenantAccess confines the request to the tenant named in the :id
// path parameter. Superusers pass; other users must belong to that tenant.
// Must run after RequireAuth.
func (m *AuthMiddleware) RequireTenantAccess(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		tenantID, err := uuid.Parse(c.Param(param))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant ID"})
			c.Abort()
			return
		}

		allowed, err := m.access.CanAccessTenant(userID, tenantID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to evaluate tenant access"})
			c.Abort()
			return
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access to this tenant is denied"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// TenantResolver maps the request's Host header to a tenant and stores it in
// the context under "resolved_tenant". Unknown hosts pass through unresolved
// so that host-agnostic routes keep working.
func (m *AuthMiddleware) TenantResolver() gin.HandlerFunc {
	return func(c *gin.Context) {
		if host := c.Request.Host; host != "" {
			if tenant, err := m.tenants.ResolveByDomain(host); err == nil {
				c.Set("resolved_tenant", tenant)
			}
		}
		c.Next()
	}
}

// UserIDFromContext extracts the authenticated user's ID set by RequireAuth
func UserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// TenantIDFromContext extracts the authenticated user's tenant scope, absent
// for superusers
func TenantIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("tenant_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
