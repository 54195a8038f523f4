package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// version will be set by main
var version = "dev"

// SetVersion sets the version reported by the CLI and the MCP server.
func SetVersion(v string) {
	version = v
}

// globalOptions are the persistent flags shared by all commands.
type globalOptions struct {
	configDir string
	env       string
	logLevel  string
	logFormat string
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "workspace-console",
		Short: "Google Workspace administration tools for conversational agents",
		Long: `workspace-console gives an agent front-end tools to inspect a Google Workspace
tenant: list directory users with masked addresses, verify that the signed-in
user is a super administrator, and retrieve raw mail headers and classify them
for spam signals.

It can run as:
  - An MCP (Model Context Protocol) server (serve)
  - One-shot CLI commands (harvest, users, verify, route)`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.SetVersionTemplate(`{{printf "workspace-console version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVar(&opts.configDir, "config-dir", os.Getenv(envConfigDir), "Directory holding base.yaml, <env>.yaml and secrets.env. Can also use "+envConfigDir+" env var.")
	rootCmd.PersistentFlags().StringVar(&opts.env, "env", os.Getenv(envName), "Configuration environment overlay, e.g. production. Can also use "+envName+" env var.")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides configuration)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format: text or json (overrides configuration)")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newHarvestCmd(opts),
		newUsersCmd(opts),
		newVerifyCmd(opts),
		newRouteCmd(),
		newVersionCmd(),
		newGenerateDocsCmd(),
	)
	return rootCmd
}

// Execute is the main entry point for the CLI application
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
