package classify

import (
	"errors"

	"github.com/nats-io/nats.go"
)

// natsTransientErrors are conditions that clear up once the server or the
// responder is back.
var natsTransientErrors = []error{
	nats.ErrTimeout,
	nats.ErrNoResponders,
	nats.ErrNoServers,
	nats.ErrConnectionClosed,
	nats.ErrConnectionReconnecting,
	nats.ErrReconnectBufExceeded,
	nats.ErrSlowConsumer,
	nats.ErrMaxConnectionsExceeded,
}

// NATS classifies errors returned by the nats.go client.
type NATS struct {
	network *Network
}

// NewNATS creates a new NATS error classifier.
func NewNATS() *NATS {
	return &NATS{network: NewNetwork()}
}

// IsTransient determines if an error is temporary and retryable.
// Authorization, subject and payload errors are permanent.
func (c *NATS) IsTransient(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range natsTransientErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return c.network.IsTransient(err)
}
