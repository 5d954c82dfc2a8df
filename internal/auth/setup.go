package auth

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/opengov-ph/treasury-backend/internal/db"
)

func Init(conn *gorm.DB) error {
	if err := db.EnsureSchema(conn, "app_auth"); err != nil {
		return fmt.Errorf("ensure schema app_auth: %w", err)
	}

	if err := conn.AutoMigrate(&Official{}, &Session{}); err != nil {
		return fmt.Errorf("auto-migrate auth tables: %w", err)
	}
	return nil
}
