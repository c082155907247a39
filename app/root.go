// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gatebox",
	Short: "Gatebox is a pluggable authentication and authorization service",
	Long: `Gatebox is a pluggable authentication and authorization service
providing credential mechanisms, sessions with sliding expiration,
role and group population, and entitlement evaluation.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
