package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/transient/internal/config"
	"github.com/vvka-141/transient/internal/logging"
	"github.com/vvka-141/transient/internal/retry"
	"github.com/vvka-141/transient/pkg/transient"
)

// ConfigEnvVar names the strategy document when --config is not given.
const ConfigEnvVar = "TRANSIENT_CONFIG"

var rootCmd = &cobra.Command{
	Use:   "transient",
	Short: "Retry strategies for transient failures",
	Long: asciiLogo + `

transient inspects and exercises named retry strategies. Strategies come from
a YAML document (transient.yaml, --config or $TRANSIENT_CONFIG) merged over the
built-in exponential, fixed and incremental strategies.

Exit Codes:
  0  - Success
  1  - General error (retries exhausted or permanent failure)
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or arguments
  11 - Connection failed
  13 - Canceled or aborted`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for transient")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Strategy document (default: $"+ConfigEnvVar+" or ./"+config.ConfigFileName+")")
	rootCmd.PersistentFlags().String("log-format", logging.FormatText, "Log format: text or json")

	_ = rootCmd.RegisterFlagCompletionFunc("log-format", completeLogFormats)
	_ = rootCmd.RegisterFlagCompletionFunc("config", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
	})
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}

// newLogger builds the logger selected by --log-format. Logs go to stderr.
func newLogger(cmd *cobra.Command) (transient.Logger, error) {
	format, _ := cmd.Flags().GetString("log-format")
	return logging.New(format, cmd.ErrOrStderr(), getVerboseFlag(cmd))
}

// loadConfig resolves the strategy document. An explicit --config or
// $TRANSIENT_CONFIG must exist; the implicit ./transient.yaml is optional.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	_ = godotenv.Load()

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv(ConfigEnvVar)
	}
	if path != "" {
		return config.LoadFile(path)
	}

	cfg, err := config.Load(".")
	if errors.Is(err, config.ErrConfigNotFound) {
		return config.Default(), nil
	}
	return cfg, err
}

// loadRegistry builds the strategy registry from the resolved document.
func loadRegistry(cmd *cobra.Command) (*retry.Registry, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return cfg.Build()
}
