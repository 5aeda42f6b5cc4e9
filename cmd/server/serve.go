package main

import (
	"fmt"
	"os"

	"github.com/atriumcms/atrium/internal/server"
	"github.com/spf13/cobra"
)

var servePort int

// @title Atrium API
// @version 1.0
// @description Content Management Backend API
// @host localhost:8430
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Atrium API server",
	Long: `Start the Atrium server.

Examples:
  atrium serve                  # Run with configured port
  atrium serve --port 8080      # Override port

Environment variables:
  ATRIUM_SERVER_PORT           Server port (default: 8430)
  ATRIUM_DATABASE_DRIVER       Database driver: sqlite, postgres
  ATRIUM_DATABASE_DSN          Database connection string
  ATRIUM_AUTH_ACCESS_SECRET    Access token signing secret
  ATRIUM_AUTH_REFRESH_SECRET   Refresh token signing secret
  ADMIN_EMAIL                  Bootstrap admin email
  ADMIN_PASSWORD               Bootstrap admin password`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := server.Config{
		Port:    servePort,
		Version: Version,
	}

	if err := server.RunWithSignalHandling(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
