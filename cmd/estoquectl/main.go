// Command estoquectl is the operator CLI for the estoque service: database
// migrations and session token tooling.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "estoquectl",
		Short: "Operator tooling for the estoque service",
		Long: `estoquectl runs database migrations and issues or inspects the
signed session tokens carried in the auth_token cookie.

Configuration is read from the environment, after loading .env when present.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}

	rootCmd.AddCommand(
		migrateCmd(),
		tokenCmd(),
		versionCmd(),
	)

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
