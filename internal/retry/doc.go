// Package retry provides automatic retry logic for transient failures.
//
// The package supports pluggable error classification and named backoff
// strategies, making it suitable for database connections, commands, message
// requests or any other call against an unreliable resource.
//
// # Example Usage
//
//	classifier := classify.NewPostgres()
//	strategy := retry.DefaultExponentialBackoff()
//	executor := retry.MustExecutor(classifier, strategy)
//
//	err := executor.Run(ctx, func(ctx context.Context) error {
//	    return connectToDatabase(ctx)
//	})
//
//	rows, err := retry.RunValue(ctx, executor, func(ctx context.Context) (int64, error) {
//	    return countRows(ctx)
//	})
//
//	future, err := retry.RunAsync(ctx, executor, fetch)
//	value, err := future.Result()
//
// # Backoff Strategies
//
// FixedInterval, Incremental and ExponentialBackoff implement
// transient.BackoffStrategy. Strategies are immutable; every call derives its
// own decision function, so jitter streams and attempt counters are never
// shared between concurrent calls. BackOffStrategy adapts cenkalti/backoff.
//
// # Attempt Loop
//
// A failed attempt is classified: permanent errors are returned unchanged,
// transient errors are retried until the strategy gives up, after which the
// last error is returned. An operation may stop the loop early by returning
// transient.RetryLimitExceeded(err). Cancellation is checked before every
// attempt, through the operation's own error, and during the backoff delay;
// it is never classified and never retried.
//
// # Registry
//
// Registry resolves strategies by name or technology key and builds executors.
// A process-wide default registry can be published once with SetDefaultRegistry
// and used through Policy and PolicyForTechnology.
//
// # Thread Safety
//
// Executor, strategies and Registry are safe for concurrent use. Use
// WithOnRetry() to create independent configurations per goroutine.
package retry
