package main

import (
	"fmt"

	"github.com/atriumcms/atrium/internal/config"
	"github.com/atriumcms/atrium/internal/db"
	"github.com/atriumcms/atrium/internal/logger"
	"github.com/atriumcms/atrium/internal/session"
	"github.com/spf13/cobra"
)

var purgeSessionsCmd = &cobra.Command{
	Use:   "purge-sessions",
	Short: "Delete all expired sessions",
	Long: `Remove expired session rows from the database. The running server
does this periodically; this command is for one-off maintenance.`,
	Args: cobra.NoArgs,
	RunE: runPurgeSessions,
}

func runPurgeSessions(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Init(cfg.Log.Format, cfg.Log.Level)

	database, err := db.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	n, err := session.New(database).PurgeExpired()
	if err != nil {
		return fmt.Errorf("failed to purge sessions: %w", err)
	}

	fmt.Printf("Purged %d expired sessions\n", n)
	return nil
}
