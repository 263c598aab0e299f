package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"crm-saas-backend/internal/config"
	"crm-saas-backend/internal/database"
	"crm-saas-backend/internal/database/models"
	"crm-saas-backend/internal/service"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Simple structures that directly match DB schema
type TenantData struct {
	Name             string   `yaml:"name"`
	Slug             string   `yaml:"slug"`
	Email            string   `yaml:"email"`
	Timezone         string   `yaml:"timezone,omitempty"`
	Currency         string   `yaml:"currency,omitempty"`
	SubscriptionPlan string   `yaml:"subscription_plan,omitempty"`
	MaxUsers         int      `yaml:"max_users,omitempty"`
	Domains          []string `yaml:"domains,omitempty"`
}

type UserData struct {
	Email         string `yaml:"email"`
	Password      string `yaml:"password"`
	TenantSlug    string `yaml:"tenant_slug,omitempty"`
	FirstName     string `yaml:"first_name"`
	LastName      string `yaml:"last_name"`
	IsSuperuser   bool   `yaml:"is_superuser,omitempty"`
	IsTenantAdmin bool   `yaml:"is_tenant_admin,omitempty"`
	Roles         []string `yaml:"roles,omitempty"`
}

type RoleData struct {
	Name              string                 `yaml:"name"`
	TenantSlug        string                 `yaml:"tenant_slug"`
	Description       string                 `yaml:"description,omitempty"`
	CanManageUsers    bool                   `yaml:"can_manage_users,omitempty"`
	CanManageRoles    bool                   `yaml:"can_manage_roles,omitempty"`
	CanManageClients  bool                   `yaml:"can_manage_clients,omitempty"`
	CanManageProjects bool                   `yaml:"can_manage_projects,omitempty"`
	CanManageInvoices bool                   `yaml:"can_manage_invoices,omitempty"`
	CanManageExpenses bool                   `yaml:"can_manage_expenses,omitempty"`
	CanManageLeads    bool                   `yaml:"can_manage_leads,omitempty"`
	CanViewReports    bool                   `yaml:"can_view_reports,omitempty"`
	CanExportData     bool                   `yaml:"can_export_data,omitempty"`
	CanManageSettings bool                   `yaml:"can_manage_settings,omitempty"`
	CustomPermissions map[string]interface{} `yaml:"custom_permissions,omitempty"`
}

// File structures
type TenantsFile struct {
	Tenants []TenantData `yaml:"tenants"`
}

type UsersFile struct {
	Users []UserData `yaml:"users"`
}

type RolesFile struct {
	Roles []RoleData `yaml:"roles"`
}

func main() {
	log.Println("🚀 Loading initial data from YAML files...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database with retry (for dockerized Postgres startup)
	db, err := connectWithRetry(cfg.DatabaseURL, 60, time.Second)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := loadDataFromYAMLFiles(db, "scripts/data", cfg.BcryptCost); err != nil {
		log.Fatalf("Failed to load data from YAML files: %v", err)
	}

	log.Println("✅ Initial data loaded successfully!")
}

// connectWithRetry attempts to initialize the DB with retries to wait for Postgres readiness.
func connectWithRetry(dsn string, maxAttempts int, delay time.Duration) (*gorm.DB, error) {
	opts := &database.Options{
		LogLevel:    logger.Silent,
		AutoMigrate: true,
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		db, err := database.Initialize(dsn, opts)
		if err == nil {
			return db, nil
		}
		if attempt%10 == 0 || attempt == maxAttempts {
			log.Printf("Database not ready (%d/%d): %v", attempt, maxAttempts, err)
		}
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("database not ready after %d attempts", maxAttempts)
}

func loadDataFromYAMLFiles(db *gorm.DB, dataDir string, bcryptCost int) error {
	tenants, err := loadTenants(dataDir)
	if err != nil {
		return fmt.Errorf("failed to load tenants: %w", err)
	}

	roles, err := loadRoles(dataDir)
	if err != nil {
		return fmt.Errorf("failed to load roles: %w", err)
	}

	users, err := loadUsers(dataDir)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	// Create tenants with their settings and domains
	tenantMap := make(map[string]*models.Tenant)
	tenantCreated := 0
	for _, tenantData := range tenants {
		tenant, created, err := createTenant(db, tenantData)
		if err != nil {
			return fmt.Errorf("failed to create tenant %s: %w", tenantData.Slug, err)
		}
		tenantMap[tenantData.Slug] = tenant
		if created {
			tenantCreated++
		}
	}
	log.Printf("📋 Tenants: %d created, %d total", tenantCreated, len(tenants))

	// Create roles
	roleMap := make(map[string]*models.Role)
	roleCreated := 0
	for _, roleData := range roles {
		role, created, err := createRole(db, roleData, tenantMap)
		if err != nil {
			return fmt.Errorf("failed to create role %s: %w", roleData.Name, err)
		}
		roleMap[roleData.TenantSlug+"/"+roleData.Name] = role
		if created {
			roleCreated++
		}
	}
	log.Printf("📋 Roles: %d created, %d total", roleCreated, len(roles))

	// Create users and their role bindings
	userCreated := 0
	for _, userData := range users {
		created, err := createUser(db, userData, tenantMap, roleMap, bcryptCost)
		if err != nil {
			return fmt.Errorf("failed to create user %s: %w", userData.Email, err)
		}
		if created {
			userCreated++
		}
	}
	log.Printf("📋 Users: %d created, %d total", userCreated, len(users))

	return nil
}

func loadTenants(dataDir string) ([]TenantData, error) {
	var file TenantsFile
	if err := readYAML(filepath.Join(dataDir, "tenants.yaml"), &file); err != nil {
		return nil, err
	}
	return file.Tenants, nil
}

func loadRoles(dataDir string) ([]RoleData, error) {
	var file RolesFile
	if err := readYAML(filepath.Join(dataDir, "roles.yaml"), &file); err != nil {
		return nil, err
	}
	return file.Roles, nil
}

func loadUsers(dataDir string) ([]UserData, error) {
	var file UsersFile
	if err := readYAML(filepath.Join(dataDir, "users.yaml"), &file); err != nil {
		return nil, err
	}
	return file.Users, nil
}

func readYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("⚠️  %s not found, skipping", path)
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, out)
}

func createTenant(db *gorm.DB, data TenantData) (*models.Tenant, bool, error) {
	var existing models.Tenant
	err := db.Where("slug = ?", data.Slug).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	tenant := &models.Tenant{
		Name:     data.Name,
		Slug:     data.Slug,
		Email:    data.Email,
		IsActive: true,
	}
	if data.Timezone != "" {
		tenant.Timezone = data.Timezone
	}
	if data.Currency != "" {
		tenant.Currency = data.Currency
	}
	if data.SubscriptionPlan != "" {
		tenant.SubscriptionPlan = data.SubscriptionPlan
	}
	if data.MaxUsers > 0 {
		tenant.MaxUsers = data.MaxUsers
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tenant).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.TenantSettings{TenantID: tenant.ID}).Error; err != nil {
			return err
		}
		for i, name := range data.Domains {
			domain := &models.Domain{
				TenantID:  tenant.ID,
				Domain:    name,
				IsPrimary: i == 0,
				Verified:  true,
			}
			if err := tx.Create(domain).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return tenant, true, nil
}

func createRole(db *gorm.DB, data RoleData, tenants map[string]*models.Tenant) (*models.Role, bool, error) {
	tenant, ok := tenants[data.TenantSlug]
	if !ok {
		return nil, false, fmt.Errorf("unknown tenant slug %q", data.TenantSlug)
	}

	var existing models.Role
	err := db.Where("tenant_id = ? AND LOWER(name) = LOWER(?)", tenant.ID, data.Name).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	role := &models.Role{
		TenantID:          tenant.ID,
		Name:              data.Name,
		Description:       data.Description,
		CanManageUsers:    data.CanManageUsers,
		CanManageRoles:    data.CanManageRoles,
		CanManageClients:  data.CanManageClients,
		CanManageProjects: data.CanManageProjects,
		CanManageInvoices: data.CanManageInvoices,
		CanManageExpenses: data.CanManageExpenses,
		CanManageLeads:    data.CanManageLeads,
		CanViewReports:    data.CanViewReports,
		CanExportData:     data.CanExportData,
		CanManageSettings: data.CanManageSettings,
		CustomPermissions: models.JSONMap(data.CustomPermissions),
	}
	if err := db.Create(role).Error; err != nil {
		return nil, false, err
	}
	return role, true, nil
}

func createUser(db *gorm.DB, data UserData, tenants map[string]*models.Tenant, roles map[string]*models.Role, bcryptCost int) (bool, error) {
	email := service.NormalizeEmail(data.Email)

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcryptCost)
	if err != nil {
		return false, err
	}

	now := time.Now()
	user := &models.User{
		Email:             email,
		FirstName:         data.FirstName,
		LastName:          data.LastName,
		IsActive:          true,
		IsSuperuser:       data.IsSuperuser,
		IsTenantAdmin:     data.IsTenantAdmin,
		PasswordHash:      string(hash),
		PasswordChangedAt: &now,
		APIKey:            uuid.New(),
		Language:          "en",
		Timezone:          "UTC",
	}
	if !data.IsSuperuser && data.TenantSlug != "" {
		tenant, ok := tenants[data.TenantSlug]
		if !ok {
			return false, fmt.Errorf("unknown tenant slug %q", data.TenantSlug)
		}
		user.TenantID = &tenant.ID
	}

	if err := db.Create(user).Error; err != nil {
		return false, err
	}

	for _, roleName := range data.Roles {
		role, ok := roles[data.TenantSlug+"/"+roleName]
		if !ok {
			return false, fmt.Errorf("unknown role %q for tenant %q", roleName, data.TenantSlug)
		}
		binding := &models.UserRole{
			UserID:     user.ID,
			RoleID:     role.ID,
			AssignedAt: now,
			IsActive:   true,
		}
		if err := db.Create(binding).Error; err != nil {
			return false, err
		}
	}
	return true, nil
}
