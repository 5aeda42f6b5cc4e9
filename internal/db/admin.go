package db

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/atriumcms/atrium/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CreateDefaultAdmin creates an admin user on first start if ADMIN_EMAIL and
// ADMIN_PASSWORD are set and no users exist in the database.
func CreateDefaultAdmin(db *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")

	if email == "" || password == "" {
		slog.Info("No ADMIN_EMAIL or ADMIN_PASSWORD set, skipping default admin creation")
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		slog.Info("Users already exist, skipping default admin creation")
		return nil
	}

	return CreateAdmin(db, email, password)
}

// CreateAdmin creates a user with the admin role. Used by the default-admin
// bootstrap and by the create-admin CLI command.
func CreateAdmin(db *gorm.DB, email, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	var adminRole models.Role
	if err := db.Where("name = ?", "admin").First(&adminRole).Error; err != nil {
		return fmt.Errorf("admin role not found (did migrations run?): %w", err)
	}

	hash := string(hashed)
	user := models.User{
		Email:        email,
		PasswordHash: &hash,
		RoleID:       &adminRole.ID,
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	slog.Info("Admin user created", "email", email)
	return nil
}
