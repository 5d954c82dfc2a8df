package seeds

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/opengov-ph/treasury-backend/internal/auth"
)

// SeedOfficials creates the chairman and treasurer accounts if they do not
// exist yet. Passwords come from the environment so no credential is baked
// into the repository.
func SeedOfficials(conn *gorm.DB) error {
	termStart := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	termEnd := termStart.AddDate(3, 0, 0)

	officials := []struct {
		username  string
		fullName  string
		role      string
		passEnv   string
		walletEnv string
	}{
		{"chairman", "Barangay Chairman", auth.RoleChairman, "SEED_CHAIRMAN_PASSWORD", "SEED_CHAIRMAN_WALLET"},
		{"treasurer", "Barangay Treasurer", auth.RoleTreasurer, "SEED_TREASURER_PASSWORD", "SEED_TREASURER_WALLET"},
	}

	for _, o := range officials {
		var existing auth.Official
		if err := conn.First(&existing, "username = ?", o.username).Error; err == nil {
			log.Printf("[seeds] %s already exists, skipping", o.username)
			continue
		}

		password := os.Getenv(o.passEnv)
		if password == "" {
			return fmt.Errorf("%s is not set", o.passEnv)
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", o.username, err)
		}

		official := auth.Official{
			UserID:         uuid.NewString(),
			Username:       o.username,
			HashedPassword: string(hashed),
			FullName:       o.fullName,
			Role:           o.role,
			WalletAddress:  os.Getenv(o.walletEnv),
			TermStart:      termStart,
			TermEnd:        termEnd,
			IsActive:       true,
		}
		if err := conn.Create(&official).Error; err != nil {
			return fmt.Errorf("create %s: %w", o.username, err)
		}
		log.Printf("[seeds] created %s (%s)", o.username, o.role)
	}
	return nil
}
