package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the googlelink service
var rootCmd = &cobra.Command{
	Use:   "googlelink",
	Short: "Links messaging-bot users to their Google accounts",
	Long: `googlelink manages the OAuth lifecycle that connects a messaging-bot
user, identified by phone number, to their Google account: it builds
consent URLs, exchanges authorization codes, stores refresh tokens and
reconstitutes authorized Workspace clients on demand.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "googlelink version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
