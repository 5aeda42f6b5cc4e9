package main

import (
	"os"

	"github.com/spf13/cobra"

	_ "github.com/atriumcms/atrium/docs" // Load swagger docs
)

// Version is set via ldflags at build time
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "atrium",
	Short: "Atrium - Content management backend",
	Long: `Atrium is a content management backend with role-based access
control, session-backed authentication, and a REST API for posts,
categories, tags, services, recruitments, and media.`,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(purgeSessionsCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
