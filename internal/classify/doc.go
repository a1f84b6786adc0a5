// Package classify provides transient.ErrorClassifier implementations for the
// backends used with the retry engine, and a small registry to select one by name.
//
// Available classifiers:
//   - Postgres: SQLSTATE classes and connection failures reported by pgx
//   - Network: timeouts, refused/reset connections and temporary DNS failures
//   - NATS: timeouts, missing responders and dropped connections
//   - Code: caller-supplied error-code extraction plus a set of transient codes
//   - Expr: an expression evaluated against facts about the error
//
// Classifiers are stateless and safe for concurrent use.
package classify
