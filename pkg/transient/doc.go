// Package transient defines the public contracts shared by the retry engine,
// the strategy registry and the backend-specific collaborators.
//
// Implementations live in internal packages; this package only holds
// interfaces, event and outcome types, sentinel errors and constants so that
// callers can supply their own ErrorClassifier or BackoffStrategy.
package transient
