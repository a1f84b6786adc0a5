package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/transient/internal/classify"
	"github.com/vvka-141/transient/internal/logging"
	"github.com/vvka-141/transient/internal/retry"
	"github.com/vvka-141/transient/internal/telemetry"
	"github.com/vvka-141/transient/pkg/transient"
)

// Connection pool configuration constants
const (
	// DefaultMaxConns limits concurrent connections to prevent resource exhaustion.
	DefaultMaxConns = 5

	// DefaultMinConns maintains at least one connection in the pool.
	DefaultMinConns = 1

	// DefaultMaxConnIdleTime keeps idle connections around between bursts of commands.
	DefaultMaxConnIdleTime = 30 * time.Minute
)

// Client owns a pgx pool. Connect and every command run under their own executor.
// Safe for concurrent use once connected.
type Client struct {
	config     *pgxpool.Config
	connect    *retry.Executor
	command    *retry.Executor
	classifier transient.ErrorClassifier
	logger     transient.Logger
	metrics    *telemetry.Metrics
	onRetry    transient.RetryHandler

	mu   sync.RWMutex
	pool *pgxpool.Pool
}

// Option configures a Client.
type Option func(*Client)

// WithLogger logs retries and server notices.
func WithLogger(logger transient.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records retries and call outcomes.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithOnRetry adds a retry handler to both policies.
func WithOnRetry(handler transient.RetryHandler) Option {
	return func(c *Client) {
		c.onRetry = handler
	}
}

// WithClassifier replaces the PostgreSQL classifier used by both policies.
func WithClassifier(classifier transient.ErrorClassifier) Option {
	return func(c *Client) {
		c.classifier = classifier
	}
}

// NewClient parses dsn and resolves the connection and command strategies from registry.
// A malformed dsn is reported here and never retried.
func NewClient(dsn string, registry *retry.Registry, opts ...Option) (*Client, error) {
	if registry == nil {
		return nil, fmt.Errorf("%w: registry cannot be nil", transient.ErrInvalidArgument)
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse connection config: %v", transient.ErrInvalidArgument, err)
	}

	c := &Client{
		config:     poolConfig,
		classifier: classify.NewPostgres(),
		logger:     logging.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	configurePool(poolConfig, c.logger)

	c.connect, err = registry.BuildPolicyForTechnology(c.classifier, transient.TechnologyDatabaseConnection)
	if err != nil {
		return nil, err
	}
	c.command, err = registry.BuildPolicyForTechnology(c.classifier, transient.TechnologyDatabaseCommand)
	if err != nil {
		return nil, err
	}

	handler := telemetry.Chain(telemetry.LogRetries(c.logger), c.metrics.Observe, c.onRetry)
	c.connect = c.connect.WithOnRetry(handler)
	c.command = c.command.WithOnRetry(handler)
	return c, nil
}

func configurePool(poolConfig *pgxpool.Config, logger transient.Logger) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("%s: %s", notice.Severity, notice.Message)
	}
}

// Connect opens the pool and verifies it with a ping, retrying transient failures.
// Failures that are not cancellations wrap transient.ErrConnectionFailed.
func (c *Client) Connect(ctx context.Context) error {
	start := time.Now()
	err := c.connect.Run(ctx, func(ctx context.Context) error {
		pool, err := pgxpool.NewWithConfig(ctx, c.config.Copy())
		if err != nil {
			return err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return err
		}

		c.mu.Lock()
		old := c.pool
		c.pool = pool
		c.mu.Unlock()
		if old != nil {
			old.Close()
		}
		return nil
	})
	c.metrics.ObserveOutcome(c.connect.Strategy().Name(), start, err)

	if err == nil || transient.OutcomeOf(err).Kind == transient.OutcomeCanceled {
		return err
	}
	cc := c.config.ConnConfig
	return wrapConnectionError(err, cc.Host, int(cc.Port), cc.Database)
}

// Close closes the pool. The client may be connected again afterwards.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
}

func (c *Client) acquirePool() (*pgxpool.Pool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.pool == nil {
		return nil, fmt.Errorf("%w: client is not connected", transient.ErrInvalidOperation)
	}
	return c.pool, nil
}

// Ping checks the server under the command policy.
func (c *Client) Ping(ctx context.Context) error {
	pool, err := c.acquirePool()
	if err != nil {
		return err
	}
	start := time.Now()
	err = c.command.Run(ctx, pool.Ping)
	c.metrics.ObserveOutcome(c.command.Strategy().Name(), start, err)
	return err
}

// Exec executes a statement under the command policy.
func (c *Client) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	pool, err := c.acquirePool()
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	start := time.Now()
	tag, err := retry.RunValue(ctx, c.command, func(ctx context.Context) (pgconn.CommandTag, error) {
		return pool.Exec(ctx, sql, args...)
	})
	c.metrics.ObserveOutcome(c.command.Strategy().Name(), start, err)
	return tag, err
}

// QueryValue scans the single column of a single row under the command policy.
func QueryValue[T any](ctx context.Context, c *Client, sql string, args ...any) (T, error) {
	var zero T
	pool, err := c.acquirePool()
	if err != nil {
		return zero, err
	}
	start := time.Now()
	value, err := retry.RunValue(ctx, c.command, func(ctx context.Context) (T, error) {
		var v T
		err := pool.QueryRow(ctx, sql, args...).Scan(&v)
		return v, err
	})
	c.metrics.ObserveOutcome(c.command.Strategy().Name(), start, err)
	return value, err
}

// Policies returns the connection and command executors.
func (c *Client) Policies() (connect, command *retry.Executor) {
	return c.connect, c.command
}
