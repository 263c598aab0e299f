package routes

import (
	"crm-saas-backend/internal/api/handlers"
	"crm-saas-backend/internal/api/middleware"
	"crm-saas-backend/internal/auth"
	"crm-saas-backend/internal/config"
	"crm-saas-backend/internal/database/models"
	"crm-saas-backend/internal/repository"
	"crm-saas-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// SetupRoutes configures all the routes for the application
func SetupRoutes(db *gorm.DB, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg))

	// Initialize validator
	validate := validator.New()

	// Initialize repositories
	tenantRepo := repository.NewTenantRepository(db)
	domainRepo := repository.NewDomainRepository(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	userRoleRepo := repository.NewUserRoleRepository(db)
	loginAttemptRepo := repository.NewLoginAttemptRepository(db)
	clientRepo := repository.NewClientRepository(db)
	leadRepo := repository.NewLeadRepository(db)

	// Initialize outbound boundaries; fall back to log/no-op when unconfigured
	var notifier service.Notifier = service.NewLogNotifier()
	if cfg.SMTPHost != "" {
		notifier = service.NewSMTPNotifier(service.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	}
	var billing service.BillingGateway = service.NewNoopBillingGateway()
	if cfg.StripeSecretKey != "" {
		billing = service.NewStripeBillingGateway(cfg.StripeSecretKey)
	}

	// Initialize services
	tenantService := service.NewTenantService(tenantRepo, domainRepo, validate, notifier, billing)
	userService := service.NewUserService(userRepo, tenantRepo, loginAttemptRepo, validate, notifier, cfg.BcryptCost)
	roleService := service.NewRoleService(roleRepo, userRepo, userRoleRepo, validate, notifier)
	accessService := service.NewAccessService(userRepo, roleService)
	clientService := service.NewClientService(clientRepo, validate)
	leadService := service.NewLeadService(leadRepo, validate)

	// Initialize auth
	authService := auth.NewAuthService(userRepo, tenantRepo, userService, cfg.JWTSecret, cfg.JWTExpiry())
	authHandler := auth.NewAuthHandler(authService, userService)
	authMiddleware := auth.NewAuthMiddleware(authService, accessService, tenantService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	tenantHandler := handlers.NewTenantHandler(tenantService)
	userHandler := handlers.NewUserHandler(userService)
	roleHandler := handlers.NewRoleHandler(roleService, accessService)
	clientHandler := handlers.NewClientHandler(clientService)
	leadHandler := handlers.NewLeadHandler(leadService)

	// Health endpoints
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/health/live", healthHandler.Live)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Resolve the request host to a tenant for every API route
	router.Use(authMiddleware.TenantResolver())

	v1 := router.Group("/api/v1")
	{
		// Authentication
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.GET("/me", authMiddleware.RequireAuth(), authHandler.Me)
			authGroup.POST("/change-password", authMiddleware.RequireAuth(), authHandler.ChangePassword)
			authGroup.GET("/login-history", authMiddleware.RequireAuth(), authHandler.LoginHistory)
		}

		// Public tenant resolution for login screens
		v1.GET("/tenants/resolve", tenantHandler.ResolveTenant)

		protected := v1.Group("")
		protected.Use(authMiddleware.RequireAuth())
		{
			// Tenants
			tenants := protected.Group("/tenants")
			{
				tenants.POST("", tenantHandler.CreateTenant)
				tenants.GET("", tenantHandler.ListTenants)
				tenants.GET("/by-slug/:slug", tenantHandler.GetTenantBySlug)

				scoped := tenants.Group("/:id", authMiddleware.RequireTenantAccess("id"))
				{
					scoped.GET("", tenantHandler.GetTenant)
					scoped.PUT("", authMiddleware.RequireCapability(models.CapabilityManageSettings), tenantHandler.UpdateTenant)
					scoped.DELETE("", tenantHandler.DeleteTenant)

					// Domains
					scoped.GET("/domains", tenantHandler.ListDomains)
					scoped.POST("/domains", authMiddleware.RequireCapability(models.CapabilityManageSettings), tenantHandler.AddDomain)
					scoped.PUT("/domains/:domainId/primary", authMiddleware.RequireCapability(models.CapabilityManageSettings), tenantHandler.SetPrimaryDomain)
					scoped.DELETE("/domains/:domainId", authMiddleware.RequireCapability(models.CapabilityManageSettings), tenantHandler.DeleteDomain)

					// Tenant-scoped users and roles
					scoped.GET("/users", userHandler.ListTenantUsers)
					scoped.GET("/roles", roleHandler.ListTenantRoles)

					// Clients and contacts
					scoped.POST("/clients", authMiddleware.RequireCapability(models.CapabilityManageClients), clientHandler.CreateClient)
					scoped.GET("/clients", clientHandler.ListClients)
					scoped.GET("/clients/:clientId", clientHandler.GetClient)
					scoped.PUT("/clients/:clientId", authMiddleware.RequireCapability(models.CapabilityManageClients), clientHandler.UpdateClient)
					scoped.DELETE("/clients/:clientId", authMiddleware.RequireCapability(models.CapabilityManageClients), clientHandler.DeleteClient)
					scoped.POST("/clients/:clientId/contacts", authMiddleware.RequireCapability(models.CapabilityManageClients), clientHandler.AddContact)

					// Leads
					scoped.POST("/leads", authMiddleware.RequireCapability(models.CapabilityManageLeads), leadHandler.CreateLead)
					scoped.GET("/leads", leadHandler.ListLeads)
					scoped.GET("/leads/:leadId", leadHandler.GetLead)
					scoped.PUT("/leads/:leadId", authMiddleware.RequireCapability(models.CapabilityManageLeads), leadHandler.UpdateLead)
					scoped.POST("/leads/:leadId/convert", authMiddleware.RequireCapability(models.CapabilityManageLeads), leadHandler.ConvertLead)
					scoped.DELETE("/leads/:leadId", authMiddleware.RequireCapability(models.CapabilityManageLeads), leadHandler.DeleteLead)
				}
			}

			// Users
			users := protected.Group("/users")
			{
				users.POST("", authMiddleware.RequireCapability(models.CapabilityManageUsers), userHandler.CreateUser)
				users.GET("/:id", userHandler.GetUser)
				users.PUT("/:id", authMiddleware.RequireCapability(models.CapabilityManageUsers), userHandler.UpdateUser)
				users.DELETE("/:id", authMiddleware.RequireCapability(models.CapabilityManageUsers), userHandler.DeleteUser)
				users.POST("/:id/two-factor", userHandler.EnableTwoFactor)
				users.DELETE("/:id/two-factor", userHandler.DisableTwoFactor)

				// Role bindings and access evaluation
				users.GET("/:id/roles", roleHandler.GetUserBindings)
				users.DELETE("/:id/roles/:roleId", authMiddleware.RequireCapability(models.CapabilityManageRoles), roleHandler.RevokeRole)
				users.GET("/:id/permissions", roleHandler.GetEffectivePermissions)
				users.GET("/:id/can/:capability", roleHandler.CheckAccess)
			}

			// Roles
			roles := protected.Group("/roles")
			{
				roles.POST("", authMiddleware.RequireCapability(models.CapabilityManageRoles), roleHandler.CreateRole)
				roles.GET("/:id", roleHandler.GetRole)
				roles.PUT("/:id", authMiddleware.RequireCapability(models.CapabilityManageRoles), roleHandler.UpdateRole)
				roles.DELETE("/:id", authMiddleware.RequireCapability(models.CapabilityManageRoles), roleHandler.DeleteRole)
			}

			protected.POST("/role-bindings", authMiddleware.RequireCapability(models.CapabilityManageRoles), roleHandler.AssignRole)

			// Login audit maintenance
			protected.DELETE("/login-attempts", userHandler.PurgeLoginAttempts)
		}
	}

	return router
}
