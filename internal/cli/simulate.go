package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vvka-141/transient/internal/retry"
	"github.com/vvka-141/transient/pkg/transient"
)

// maxSimulatedRetries stops a schedule whose strategy never gives up.
const maxSimulatedRetries = 1000

var errSimulated = errors.New("simulated transient failure")

var simulateFlags struct {
	calls      int
	technology string
}

var simulateCmd = &cobra.Command{
	Use:   "simulate [strategy]",
	Short: "Print the retry schedule of a strategy without sleeping",
	Long: `Print the delays a strategy would wait between attempts when every attempt
fails with a transient error. Nothing is slept.

The strategy is selected by name, by --technology, or is the registry default.
With --calls, independent calls are derived concurrently so their jitter can
be compared side by side.`,
	Example: `  transient simulate
  transient simulate fixed
  transient simulate --technology database-connection --calls 3`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVarP(&simulateFlags.calls, "calls", "n", 1, "Number of independent calls to simulate")
	simulateCmd.Flags().StringVarP(&simulateFlags.technology, "technology", "t", "", "Select the strategy mapped to a technology key")
	simulateCmd.ValidArgsFunction = completeStrategyNames
	_ = simulateCmd.RegisterFlagCompletionFunc("technology", completeTechnologies)
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if simulateFlags.calls < 1 {
		return fmt.Errorf("%w: --calls must be at least 1", transient.ErrInvalidArgument)
	}
	if len(args) == 1 && simulateFlags.technology != "" {
		return fmt.Errorf("%w: give either a strategy name or --technology, not both", transient.ErrInvalidArgument)
	}

	registry, err := loadRegistry(cmd)
	if err != nil {
		return err
	}
	strategy, err := selectStrategy(registry, args, simulateFlags.technology)
	if err != nil {
		return err
	}

	schedules, err := simulateCalls(cmd.Context(), strategy, simulateFlags.calls)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	s := newStyles(out)
	fmt.Fprintln(out, s.title.Render(fmt.Sprintf("Strategy %s", strategy.Name())))
	fmt.Fprintln(out, s.table(scheduleTable(schedules)))
	return nil
}

func selectStrategy(registry *retry.Registry, args []string, technology string) (transient.BackoffStrategy, error) {
	if technology != "" {
		return registry.ResolveForTechnology(technology)
	}
	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	return registry.Resolve(name)
}

// simulateCalls derives one decision function per call and runs them concurrently.
func simulateCalls(ctx context.Context, strategy transient.BackoffStrategy, calls int) ([][]time.Duration, error) {
	schedules := make([][]time.Duration, calls)
	g, ctx := errgroup.WithContext(ctx)
	for i := range calls {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			schedules[i] = schedule(strategy)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return schedules, nil
}

// schedule returns the effective delays before each retry of a call whose
// attempts all fail, fast-first retry included.
func schedule(strategy transient.BackoffStrategy) []time.Duration {
	decide := strategy.NewDecision()
	var delays []time.Duration
	for attempt := 0; attempt < maxSimulatedRetries; attempt++ {
		ok, delay := decide(attempt, errSimulated)
		if !ok {
			break
		}
		if attempt == 0 && strategy.FastFirstRetry() {
			delay = 0
		}
		delays = append(delays, delay)
	}
	return delays
}

func scheduleTable(schedules [][]time.Duration) ([]string, [][]string) {
	headers := []string{"Retry"}
	longest := 0
	for i, delays := range schedules {
		if len(schedules) == 1 {
			headers = append(headers, "Delay")
		} else {
			headers = append(headers, fmt.Sprintf("Call %d", i+1))
		}
		longest = max(longest, len(delays))
	}

	rows := make([][]string, 0, longest+1)
	for n := range longest {
		row := []string{strconv.Itoa(n + 1)}
		for _, delays := range schedules {
			cell := "-"
			if n < len(delays) {
				cell = delays[n].Round(time.Millisecond).String()
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}

	total := []string{"total"}
	for _, delays := range schedules {
		var sum time.Duration
		for _, d := range delays {
			sum += d
		}
		total = append(total, sum.Round(time.Millisecond).String())
	}
	return headers, append(rows, total)
}
