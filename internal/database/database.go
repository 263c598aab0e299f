package database

import (
	"fmt"
	"time"

	"crm-saas-backend/internal/database/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Options struct {
	LogLevel        logger.LogLevel
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	AutoMigrate     bool
}

// Initialize opens a Postgres connection and creates the schema from GORM models.
func Initialize(dsn string, opts *Options) (*gorm.DB, error) {
	// Defaults
	if opts == nil {
		opts = &Options{}
	}
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Error
	}
	if opts.MaxOpenConns == 0 {
		opts.MaxOpenConns = 20
	}
	if opts.MaxIdleConns == 0 {
		opts.MaxIdleConns = 10
	}
	if opts.ConnMaxLifetime == 0 {
		opts.ConnMaxLifetime = 30 * time.Minute
	}
	if opts.ConnMaxIdleTime == 0 {
		opts.ConnMaxIdleTime = 10 * time.Minute
	}
	if !opts.AutoMigrate {
		opts.AutoMigrate = true
	}

	// Open DB
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(opts.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}

	// Ensure required extension for UUID generation (used by BaseModel default gen_random_uuid())
	_ = db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error

	// AutoMigrate all models; parents before children so foreign keys resolve
	if opts.AutoMigrate {
		all := []interface{}{
			&models.Tenant{},
			&models.TenantSettings{},
			&models.Domain{},
			&models.User{},
			&models.Role{},
			&models.UserRole{},
			&models.LoginAttempt{},
			&models.Client{},
			&models.Contact{},
			&models.Lead{},
		}
		if err := db.AutoMigrate(all...); err != nil {
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}

		// Indexes gorm tags cannot express. The partial index is a hard
		// backstop for the one-primary-per-tenant invariant; the functional
		// one enforces case-insensitive role-name uniqueness at the schema
		// level rather than only in the service's pre-check.
		if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_domains_one_primary
			ON domains (tenant_id) WHERE is_primary`).Error; err != nil {
			return nil, fmt.Errorf("create primary-domain index: %w", err)
		}
		if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_roles_tenant_lower_name
			ON roles (tenant_id, LOWER(name))`).Error; err != nil {
			return nil, fmt.Errorf("create role-name index: %w", err)
		}
	}

	return db, nil
}
