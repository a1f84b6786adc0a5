package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/transient/internal/classify"
	"github.com/vvka-141/transient/internal/db"
	"github.com/vvka-141/transient/internal/messaging"
	"github.com/vvka-141/transient/pkg/transient"
)

var probeFlags struct {
	classifier     string
	transientIf    string
	timeout        time.Duration
	query          string
	data           string
	requestTimeout time.Duration
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Run a live call against a backend under its retry policies",
	Long: `Connect to a backend and run one call, retrying transient failures with the
strategies mapped to the backend's connection and request technologies.

Every retry is logged. The exit code tells a connection failure (11) from an
exhausted or permanent call failure (1) and a cancellation (13).

Errors are classified by the backend's own classifier unless --classifier
names another one (postgres, network, nats, always or never).
--transient-if adds an expression over message, code, timeout, temporary and
canceled; an error is retried when either the classifier or the expression
says so.`,
}

var probePostgresCmd = &cobra.Command{
	Use:   "postgres <dsn>",
	Short: "Connect to PostgreSQL and run a query",
	Example: `  transient probe postgres postgresql://postgres@localhost/postgres
  transient probe postgres "$DATABASE_URL" --transient-if 'code == "57P03"'`,
	Args: RequireDSN,
	RunE: runProbePostgres,
}

var probeNATSCmd = &cobra.Command{
	Use:     "nats <url> <subject>",
	Short:   "Connect to NATS and send a request",
	Example: `  transient probe nats nats://localhost:4222 svc.health --data ping`,
	Args:    RequireURLAndSubject,
	RunE:    runProbeNATS,
}

func init() {
	flags := probeCmd.PersistentFlags()
	flags.StringVar(&probeFlags.classifier, "classifier", "", "Classifier backend (default: the probed backend)")
	flags.StringVar(&probeFlags.transientIf, "transient-if", "", "Expression marking additional errors as transient")
	flags.DurationVar(&probeFlags.timeout, "timeout", 5*time.Minute, "Overall timeout for the probe")
	_ = probeCmd.RegisterFlagCompletionFunc("classifier", completeClassifiers)

	probePostgresCmd.Flags().StringVar(&probeFlags.query, "query", "SELECT 1", "Query to run once connected")
	probeNATSCmd.Flags().StringVar(&probeFlags.data, "data", "", "Request payload")
	probeNATSCmd.Flags().DurationVar(&probeFlags.requestTimeout, "request-timeout", messaging.DefaultRequestTimeout, "Timeout of each request attempt")

	probeCmd.AddCommand(probePostgresCmd, probeNATSCmd)
	rootCmd.AddCommand(probeCmd)
}

// buildClassifier combines the selected backend classifier with --transient-if.
func buildClassifier(backend string, code classify.CodeFunc) (transient.ErrorClassifier, error) {
	if probeFlags.classifier != "" {
		backend = probeFlags.classifier
	}
	classifier, err := classify.Lookup(backend)
	if err != nil {
		return nil, err
	}
	if probeFlags.transientIf == "" {
		return classifier, nil
	}
	expression, err := classify.NewExpr(probeFlags.transientIf, code)
	if err != nil {
		return nil, err
	}
	return classify.Any(classifier, expression), nil
}

// probeContext applies --timeout and cancels on interrupt.
func probeContext(cmd *cobra.Command, logger transient.Logger) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, probeFlags.timeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			logger.Info("received interrupt signal, cancelling probe")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

func runProbePostgres(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	registry, err := loadRegistry(cmd)
	if err != nil {
		return err
	}
	classifier, err := buildClassifier(classify.BackendPostgres, classify.PostgresCode)
	if err != nil {
		return err
	}

	client, err := db.NewClient(args[0], registry, db.WithLogger(logger), db.WithClassifier(classifier))
	if err != nil {
		return err
	}

	ctx, cancel := probeContext(cmd, logger)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer client.Close()

	value, err := db.QueryValue[any](ctx, client, probeFlags.query)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	out := cmd.OutOrStdout()
	s := newStyles(out)
	fmt.Fprintf(out, "%s %v\n", s.success.Render(symbolCheck), value)
	return nil
}

func runProbeNATS(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	registry, err := loadRegistry(cmd)
	if err != nil {
		return err
	}
	classifier, err := buildClassifier(classify.BackendNATS, nil)
	if err != nil {
		return err
	}

	requester, err := messaging.NewRequester(args[0], registry,
		messaging.WithLogger(logger),
		messaging.WithClassifier(classifier),
		messaging.WithTimeouts(messaging.DefaultDialTimeout, probeFlags.requestTimeout),
	)
	if err != nil {
		return err
	}

	ctx, cancel := probeContext(cmd, logger)
	defer cancel()

	if err := requester.Connect(ctx); err != nil {
		return err
	}
	defer requester.Close()

	msg, err := requester.Request(ctx, args[1], []byte(probeFlags.data))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	out := cmd.OutOrStdout()
	s := newStyles(out)
	fmt.Fprintf(out, "%s %s\n", s.success.Render(symbolCheck), msg.Data)
	return nil
}
