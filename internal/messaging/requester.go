// Package messaging sends NATS requests through two retry policies: one for
// establishing the connection and one for each request.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/vvka-141/transient/internal/classify"
	"github.com/vvka-141/transient/internal/logging"
	"github.com/vvka-141/transient/internal/retry"
	"github.com/vvka-141/transient/internal/telemetry"
	"github.com/vvka-141/transient/pkg/transient"
)

const (
	// DefaultDialTimeout bounds a single connection attempt.
	DefaultDialTimeout = 2 * time.Second

	// DefaultRequestTimeout bounds a single request attempt.
	DefaultRequestTimeout = 2 * time.Second
)

// Requester is a NATS request/reply client. Safe for concurrent use once connected.
type Requester struct {
	url            string
	name           string
	dialTimeout    time.Duration
	requestTimeout time.Duration
	connect        *retry.Executor
	request        *retry.Executor
	classifier     transient.ErrorClassifier
	logger         transient.Logger
	metrics        *telemetry.Metrics
	onRetry        transient.RetryHandler

	mu   sync.RWMutex
	conn *nats.Conn
}

// Option configures a Requester.
type Option func(*Requester)

// WithLogger logs retries and connection events.
func WithLogger(logger transient.Logger) Option {
	return func(r *Requester) {
		r.logger = logger
	}
}

// WithMetrics records retries and call outcomes.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(r *Requester) {
		r.metrics = m
	}
}

// WithOnRetry adds a retry handler to both policies.
func WithOnRetry(handler transient.RetryHandler) Option {
	return func(r *Requester) {
		r.onRetry = handler
	}
}

// WithTimeouts sets the per-attempt dial and request timeouts.
func WithTimeouts(dial, request time.Duration) Option {
	return func(r *Requester) {
		r.dialTimeout = dial
		r.requestTimeout = request
	}
}

// WithClassifier replaces the NATS classifier used by both policies.
func WithClassifier(classifier transient.ErrorClassifier) Option {
	return func(r *Requester) {
		r.classifier = classifier
	}
}

// WithName sets the client name reported to the server.
func WithName(name string) Option {
	return func(r *Requester) {
		r.name = name
	}
}

// NewRequester resolves the messaging-connection and messaging-request strategies from registry.
func NewRequester(url string, registry *retry.Registry, opts ...Option) (*Requester, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: nats url cannot be empty", transient.ErrInvalidArgument)
	}
	if registry == nil {
		return nil, fmt.Errorf("%w: registry cannot be nil", transient.ErrInvalidArgument)
	}

	r := &Requester{
		url:            url,
		name:           "transient",
		dialTimeout:    DefaultDialTimeout,
		requestTimeout: DefaultRequestTimeout,
		classifier:     classify.NewNATS(),
		logger:         logging.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}

	var err error
	r.connect, err = registry.BuildPolicyForTechnology(r.classifier, transient.TechnologyMessagingConnection)
	if err != nil {
		return nil, err
	}
	r.request, err = registry.BuildPolicyForTechnology(r.classifier, transient.TechnologyMessagingRequest)
	if err != nil {
		return nil, err
	}

	handler := telemetry.Chain(telemetry.LogRetries(r.logger), r.metrics.Observe, r.onRetry)
	r.connect = r.connect.WithOnRetry(handler)
	r.request = r.request.WithOnRetry(handler)
	return r, nil
}

// connectionOptions disables the client's own reconnect loop on the first
// connect; retries are driven by the connection policy instead.
func (r *Requester) connectionOptions() []nats.Option {
	return []nats.Option{
		nats.Name(r.name),
		nats.Timeout(r.dialTimeout),
		nats.RetryOnFailedConnect(false),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				r.logger.Verbose("nats disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			r.logger.Verbose("nats reconnected to %s", conn.ConnectedUrl())
		}),
	}
}

// Connect dials the server, retrying transient failures.
// Failures that are not cancellations wrap transient.ErrConnectionFailed.
func (r *Requester) Connect(ctx context.Context) error {
	start := time.Now()
	err := r.connect.Run(ctx, func(ctx context.Context) error {
		conn, err := nats.Connect(r.url, r.connectionOptions()...)
		if err != nil {
			return err
		}

		r.mu.Lock()
		old := r.conn
		r.conn = conn
		r.mu.Unlock()
		if old != nil {
			old.Close()
		}
		return nil
	})
	r.metrics.ObserveOutcome(r.connect.Strategy().Name(), start, err)

	if err == nil || transient.OutcomeOf(err).Kind == transient.OutcomeCanceled {
		return err
	}
	return fmt.Errorf("%w: nats %s: %w", transient.ErrConnectionFailed, r.url, err)
}

// Close closes the connection. The requester can be connected again.
func (r *Requester) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil {
		r.conn.Close()
		r.conn = nil
	}
}

// Request sends data to subject and waits for the reply under the request policy.
// Each attempt is bounded by the request timeout; an attempt that times out is
// reported as nats.ErrTimeout and retried.
func (r *Requester) Request(ctx context.Context, subject string, data []byte) (*nats.Msg, error) {
	r.mu.RLock()
	conn := r.conn
	r.mu.RUnlock()
	if conn == nil {
		return nil, fmt.Errorf("%w: requester is not connected", transient.ErrInvalidOperation)
	}

	start := time.Now()
	msg, err := retry.RunValue(ctx, r.request, func(ctx context.Context) (*nats.Msg, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, r.requestTimeout)
		defer cancel()

		msg, err := conn.RequestWithContext(attemptCtx, subject, data)
		if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("request %s: %w", subject, nats.ErrTimeout)
		}
		return msg, err
	})
	r.metrics.ObserveOutcome(r.request.Strategy().Name(), start, err)
	return msg, err
}

// Policies returns the connection and request executors.
func (r *Requester) Policies() (connect, request *retry.Executor) {
	return r.connect, r.request
}
