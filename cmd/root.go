// Package cmd wires the install pipeline, catalog browser, and profile
// dashboard into the mcpdock command tree.
package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"mcpdock/internal/api"
	"mcpdock/internal/backend"
	"mcpdock/internal/config"
	"mcpdock/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error.
	ExitCodeError = 1
	// ExitCodeValidation indicates invalid input or arguments.
	ExitCodeValidation = 2
	// ExitCodeTransport indicates the install service could not be reached
	// or answered with an error.
	ExitCodeTransport = 3
)

var (
	flagConfigPath string
	flagBackendURL string
	flagLogLevel   string

	// settings holds the configuration loaded in the persistent pre-run.
	settings config.Settings
	// settingsPath is where notification history is persisted back to.
	settingsPath string
)

// rootCmd represents the base command for the mcpdock application.
var rootCmd = &cobra.Command{
	Use:   "mcpdock",
	Short: "Install and inspect MCP servers",
	Long: `mcpdock turns pasted MCP server configuration into staged installs:
it normalizes JSON or TOML bundles, previews each server's capabilities,
validates the set with a dry run, and commits it to the install service.
It also browses the server catalog and summarizes capability enablement
across active profiles.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := flagConfigPath
		if path == "" {
			var err error
			path, err = config.DefaultPath()
			if err != nil {
				return err
			}
		}
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		settings = loaded
		settingsPath = path

		level := settings.LogLevel
		if flagLogLevel != "" {
			level = flagLogLevel
		}
		logging.Init(logging.ParseLevel(level), cmd.ErrOrStderr())

		if flagBackendURL != "" {
			settings.BackendURL = flagBackendURL
		}
		return nil
	},
}

// SetVersion sets the version for the root command. It is called from the
// main package to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcpdock version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps error types to semantic exit codes for scripting.
func getExitCode(err error) int {
	if api.IsValidation(err) {
		return ExitCodeValidation
	}
	if api.IsTransport(err) {
		return ExitCodeTransport
	}
	return ExitCodeError
}

// newBackendClient builds the install service client from the effective
// settings. Commands that need the service fail early without a URL.
func newBackendClient() (*backend.Client, error) {
	if settings.BackendURL == "" {
		return nil, fmt.Errorf("no install service configured, set backendUrl in the config file or pass --backend")
	}
	return backend.NewClient(settings.BackendURL, http.DefaultClient), nil
}

// saveSettings persists the effective settings, including appended
// notification history. Failures are logged, not fatal.
func saveSettings() {
	if settingsPath == "" {
		return
	}
	if err := config.Save(settingsPath, settings); err != nil {
		logging.Warn("CLI", "Could not persist settings: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file (default is $HOME/.config/mcpdock/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagBackendURL, "backend", "", "install service base URL (overrides the config file)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newProfilesCmd())
	rootCmd.AddCommand(newNotificationsCmd())
}
