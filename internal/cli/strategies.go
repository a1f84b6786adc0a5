package cli

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vvka-141/transient/internal/config"
	"github.com/vvka-141/transient/internal/retry"
	"github.com/vvka-141/transient/pkg/transient"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the registered retry strategies",
	Long: `List the strategies of the registry built from the strategy document,
with their parameters and the technology keys mapped to them.

The default strategy is marked with *.`,
	Args: cobra.NoArgs,
	RunE: runStrategies,
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}

func runStrategies(cmd *cobra.Command, args []string) error {
	registry, err := loadRegistry(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	s := newStyles(out)

	rows := make([][]string, 0, len(registry.Names()))
	for _, name := range registry.Names() {
		strategy, err := registry.Resolve(name)
		if err != nil {
			return err
		}
		kind, params := describeStrategy(strategy)
		marker := ""
		if name == registry.DefaultName() {
			marker = symbolDefault
		}
		rows = append(rows, []string{
			marker + name,
			kind,
			strconv.Itoa(strategy.RetryCount()),
			strconv.FormatBool(strategy.FastFirstRetry()),
			params,
		})
	}

	fmt.Fprintln(out, s.title.Render("Strategies"))
	fmt.Fprintln(out, s.table([]string{"Name", "Kind", "Retries", "Fast first", "Parameters"}, rows))

	technologies := registry.Technologies()
	if len(technologies) == 0 {
		return nil
	}
	techRows := make([][]string, 0, len(technologies))
	for _, key := range slices.Sorted(maps.Keys(technologies)) {
		techRows = append(techRows, []string{key, technologies[key]})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, s.title.Render("Technologies"))
	fmt.Fprintln(out, s.table([]string{"Technology", "Strategy"}, techRows))
	return nil
}

// describeStrategy returns the config kind of a strategy and its parameters.
func describeStrategy(strategy transient.BackoffStrategy) (string, string) {
	switch s := strategy.(type) {
	case *retry.FixedInterval:
		return config.KindFixed, fmt.Sprintf("interval=%v", s.Interval())
	case *retry.Incremental:
		return config.KindIncremental, fmt.Sprintf("initial=%v increment=%v", s.InitialInterval(), s.Increment())
	case *retry.ExponentialBackoff:
		return config.KindExponential, fmt.Sprintf("min=%v max=%v delta=%v", s.MinBackoff(), s.MaxBackoff(), s.DeltaBackoff())
	case *retry.BackOffStrategy:
		return config.KindBackOff, "-"
	default:
		return fmt.Sprintf("%T", strategy), "-"
	}
}
