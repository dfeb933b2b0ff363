package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helpdesk-io/helpdesk-web/internal/version"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "helpdesk-web",
	Short: "Web frontend for the helpdesk service",
	Long: `helpdesk-web serves the browser interface of the helpdesk.

It renders pages on the server and talks to the helpdesk REST backend on
behalf of the signed-in user.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Full())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "./config", "Directory holding default.yaml and config.yaml")
	rootCmd.AddCommand(serveCmd, routesCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
