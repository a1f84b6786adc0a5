// Package logging provides concrete implementations of the transient.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: Writes formatted messages to a writer (stderr by default)
//   - SlogLogger: Emits structured records through log/slog (JSON or text)
//   - NullLogger: Discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
