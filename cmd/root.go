package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"ccloudctl/internal/cli"
	"ccloudctl/pkg/logging"
)

// Exit codes for CLI commands.
// Scripts and CI pipelines branch on these, so they are part of the interface.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthFailed indicates the control plane rejected the credentials.
	ExitCodeAuthFailed = 2
	// ExitCodeDrift indicates a check-mode run found pending changes.
	ExitCodeDrift = 3
)

// connection holds the control-plane connection flags shared by every
// command that talks to the API.
var connection cli.ConnectionFlags

// rootLogLevel selects the minimum level for diagnostic logging on stderr.
var rootLogLevel string

// rootCmd represents the base command for the ccloudctl application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ccloudctl",
	Short: "Declarative management of Confluent Cloud resources",
	Long: `ccloudctl reconciles Confluent Cloud environments, clusters, service
accounts, API keys, organization members, role bindings and connectors
against YAML manifests, and answers ad-hoc queries about what currently
exists.

Credentials come from --api-key / --api-secret or from the
CONFLUENT_API_KEY and CONFLUENT_API_SECRET environment variables.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(logging.ParseLevel(rootLogLevel), os.Stderr)
	},
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the
// application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// It is called by main.main() and translates command errors into
// semantic exit codes.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "ccloudctl version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	var authErr *cli.AuthError
	if errors.As(err, &authErr) {
		return ExitCodeAuthFailed
	}

	var driftErr *cli.DriftError
	if errors.As(err, &driftErr) {
		return ExitCodeDrift
	}

	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "warn", "Diagnostic log level (debug, info, warn, error)")
	cli.RegisterConnectionFlags(rootCmd, &connection)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
