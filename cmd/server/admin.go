package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/atriumcms/atrium/internal/config"
	"github.com/atriumcms/atrium/internal/db"
	"github.com/atriumcms/atrium/internal/logger"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var createAdminEmail string

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin user",
	Long: `Create a user with the admin role. The password is read from the
ADMIN_PASSWORD environment variable, or prompted for interactively.`,
	RunE: runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVarP(&createAdminEmail, "email", "e", "", "Email address for the admin user (required)")
	createAdminCmd.MarkFlagRequired("email")
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Init(cfg.Log.Format, cfg.Log.Level)

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = string(raw)
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	database, err := db.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := db.CreateAdmin(database, createAdminEmail, password); err != nil {
		return err
	}

	fmt.Printf("Admin user %s created\n", createAdminEmail)
	return nil
}
