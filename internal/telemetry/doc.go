// Package telemetry turns retry events and call outcomes into logs and
// Prometheus metrics. Observers are plain transient.RetryHandler values that
// are attached to an executor with WithOnRetry.
package telemetry
