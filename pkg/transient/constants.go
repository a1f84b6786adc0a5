package transient

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Command completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error (including exhausted retries)
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration, strategy or argument
	ExitConnectionError = 11 // Failed to acquire the remote resource
	ExitCanceled        = 13 // Canceled by signal, deadline or retry abort
)

// Technology keys used to select a strategy for a class of backend.
const (
	TechnologyDatabaseConnection  = "database-connection"
	TechnologyDatabaseCommand     = "database-command"
	TechnologyMessagingConnection = "messaging-connection"
	TechnologyMessagingRequest    = "messaging-request"
	TechnologyCache               = "cache"
)

// Default strategy parameters.
const (
	DefaultRetryCount     = 10
	DefaultFastFirstRetry = true

	DefaultInterval        = 1 * time.Second
	DefaultInitialInterval = 1 * time.Second
	DefaultIncrement       = 1 * time.Second

	DefaultMinBackoff   = 1 * time.Second
	DefaultMaxBackoff   = 30 * time.Second
	DefaultDeltaBackoff = 100 * time.Millisecond
)

// Names of the strategies in the built-in registry.
const (
	DefaultStrategyName     = "default"
	FixedStrategyName       = "fixed"
	IncrementalStrategyName = "incremental"
)
