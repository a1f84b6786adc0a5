package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vvka-141/transient/internal/config"
	"github.com/vvka-141/transient/pkg/transient"
)

var configFlags struct {
	force bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create, check and describe strategy documents",
}

var configInitCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a starter " + config.ConfigFileName,
	Long: `Write a starter strategy document to dir (default: current directory).

The document maps every technology key to a built-in strategy so it can be
edited in place. An existing file is kept unless --force is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a strategy document and build its registry",
	Long: `Validate a strategy document against the schema, then build the registry so
that durations, the default name and technology mappings are checked too.

Without a path, the document is resolved like every other command
(--config, $TRANSIENT_CONFIG, ./transient.yaml).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigValidate,
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of strategy documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := cmd.OutOrStdout().Write(config.Schema())
		return err
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configFlags.force, "force", "f", false, "Overwrite an existing document")
	configCmd.AddCommand(configInitCmd, configValidateCmd, configSchemaCmd)
	rootCmd.AddCommand(configCmd)
}

// starterConfig is written by config init.
func starterConfig() *config.Config {
	cfg := config.Default()
	cfg.Technologies = map[string]string{
		transient.TechnologyDatabaseConnection:  transient.DefaultStrategyName,
		transient.TechnologyDatabaseCommand:     transient.IncrementalStrategyName,
		transient.TechnologyMessagingConnection: transient.DefaultStrategyName,
		transient.TechnologyMessagingRequest:    transient.FixedStrategyName,
		transient.TechnologyCache:               transient.FixedStrategyName,
	}
	return cfg
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	path := filepath.Join(dir, config.ConfigFileName)

	if _, err := os.Stat(path); err == nil && !configFlags.force {
		return fmt.Errorf("%w: %s already exists (use --force to overwrite)", transient.ErrInvalidOperation, path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	data, err := config.Marshal(starterConfig())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	var (
		cfg *config.Config
		err error
	)
	if len(args) > 0 {
		cfg, err = config.LoadFile(args[0])
	} else {
		cfg, err = loadConfig(cmd)
	}
	if err != nil {
		return err
	}

	registry, err := cfg.Build()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	s := newStyles(out)
	fmt.Fprintf(out, "%s %d strategies, default %q, %d technology mappings\n",
		s.success.Render(symbolCheck), len(registry.Names()), registry.DefaultName(), len(registry.Technologies()))
	return nil
}
