// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ideabay/ideabay-backend/internal/config"
	"github.com/ideabay/ideabay-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.User{},
		&models.Idea{},
		&models.Purchase{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Server-side id defaults for rows inserted outside the ORM. The model
	// tags stay database-agnostic so the sqlite test databases migrate.
	for _, table := range []string{"users", "ideas", "purchases"} {
		stmt := fmt.Sprintf("ALTER TABLE %s ALTER COLUMN id SET DEFAULT gen_random_uuid()", table)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to set id default on %s: %w", table, err)
		}
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)",

		// Idea indexes
		"CREATE INDEX IF NOT EXISTS idx_ideas_seller ON ideas(seller_id)",
		"CREATE INDEX IF NOT EXISTS idx_ideas_status ON ideas(status)",
		"CREATE INDEX IF NOT EXISTS idx_ideas_created_at ON ideas(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_ideas_price ON ideas(price)",

		// Purchase indexes; the webhook reconciler looks purchases up by
		// shift_id first and falls back to a newest-first scan of pending rows.
		"CREATE INDEX IF NOT EXISTS idx_purchases_buyer ON purchases(buyer_id)",
		"CREATE INDEX IF NOT EXISTS idx_purchases_idea ON purchases(idea_id)",
		"CREATE INDEX IF NOT EXISTS idx_purchases_checkout ON purchases(checkout_id)",
		"CREATE INDEX IF NOT EXISTS idx_purchases_shift ON purchases(shift_id)",
		"CREATE INDEX IF NOT EXISTS idx_purchases_status_created ON purchases(status, created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
