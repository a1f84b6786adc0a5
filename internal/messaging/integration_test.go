package messaging

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/transient/internal/testinfra"
	"github.com/vvka-141/transient/pkg/transient"
)

func connectedRequester(t *testing.T, requestRetries int, opts ...Option) (*Requester, *nats.Conn) {
	t.Helper()
	url := testinfra.RequireNATS(t)

	r, err := NewRequester(url, testRegistry(t, 3, requestRetries), opts...)
	require.NoError(t, err)
	require.NoError(t, r.Connect(context.Background()))
	t.Cleanup(r.Close)

	responder, err := nats.Connect(url)
	require.NoError(t, err)
	t.Cleanup(responder.Close)
	return r, responder
}

func TestIntegration_RequestReply(t *testing.T) {
	r, responder := connectedRequester(t, 0)

	_, err := responder.Subscribe("svc.echo", func(m *nats.Msg) {
		m.Respond(append([]byte("echo:"), m.Data...)) //nolint:errcheck
	})
	require.NoError(t, err)
	require.NoError(t, responder.Flush())

	msg, err := r.Request(context.Background(), "svc.echo", []byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, "echo:hi", string(msg.Data))
}

func TestIntegration_NoRespondersIsRetried(t *testing.T) {
	var retries atomic.Int32
	r, _ := connectedRequester(t, 2, WithOnRetry(func(transient.RetryEvent) { retries.Add(1) }))

	_, err := r.Request(context.Background(), "svc.nobody", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, nats.ErrNoResponders)
	assert.Equal(t, int32(2), retries.Load())
}

func TestIntegration_SlowResponderTimesOutPerAttempt(t *testing.T) {
	var calls atomic.Int32
	r, responder := connectedRequester(t, 3, WithTimeouts(time.Second, 100*time.Millisecond))

	_, err := responder.Subscribe("svc.slow", func(m *nats.Msg) {
		if calls.Add(1) < 3 {
			return
		}
		m.Respond([]byte("late but fine")) //nolint:errcheck
	})
	require.NoError(t, err)
	require.NoError(t, responder.Flush())

	msg, err := r.Request(context.Background(), "svc.slow", nil)
	require.NoError(t, err)
	assert.Equal(t, "late but fine", string(msg.Data))
	assert.Equal(t, int32(3), calls.Load())
}
