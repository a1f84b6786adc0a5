package telemetry

import (
	"github.com/vvka-141/transient/pkg/transient"
)

// LogRetries returns a handler that logs every retry at info level.
func LogRetries(logger transient.Logger) transient.RetryHandler {
	return func(event transient.RetryEvent) {
		logger.Info("retry %d (%s) in %v after: %v", event.Attempt, event.Strategy, event.Delay, event.Err)
		logger.Verbose("call %s", event.CallID)
	}
}

// Chain returns a handler calling every non-nil handler in order.
func Chain(handlers ...transient.RetryHandler) transient.RetryHandler {
	active := make([]transient.RetryHandler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			active = append(active, h)
		}
	}
	return func(event transient.RetryEvent) {
		for _, h := range active {
			h(event)
		}
	}
}
