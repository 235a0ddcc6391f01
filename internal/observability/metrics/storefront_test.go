package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/parapharmacie-storefront/internal/observability/statsd"
)

func TestEmitBackendCall(t *testing.T) {
	var rec statsd.Recorder

	EmitBackendCall(&rec, BackendCall{
		Endpoint: "cart", Method: "GET", Status: 503, Attempts: 3,
		Duration: 20 * time.Millisecond, Err: errors.New("boom"),
	})

	reqs := rec.Named("backend.request")
	require.Len(t, reqs, 1)
	assert.Equal(t, ResultError, reqs[0].Tags["result"])
	assert.Equal(t, "503", reqs[0].Tags["status"])
	assert.NotEmpty(t, reqs[0].Tags["error_class"])

	retries := rec.Named("backend.retry")
	require.Len(t, retries, 1)
	assert.InDelta(t, 2, retries[0].Value, 0)
	assert.Len(t, rec.Named("backend.duration"), 1)
}

func TestEmitBackendCall_Success(t *testing.T) {
	var rec statsd.Recorder
	EmitBackendCall(&rec, BackendCall{Endpoint: "products", Method: "GET", Status: 200, Attempts: 1})

	reqs := rec.Named("backend.request")
	require.Len(t, reqs, 1)
	assert.Equal(t, ResultSuccess, reqs[0].Tags["result"])
	assert.Empty(t, rec.Named("backend.retry"))
	assert.Empty(t, rec.Named("backend.duration"))
}

func TestEmitCartMutation(t *testing.T) {
	var rec statsd.Recorder
	EmitCartMutation(&rec, CartMutation{Op: "add", Result: ResultSuccess, ItemCount: 4})
	EmitCartMutation(&rec, CartMutation{Op: "update", Result: ResultError, Err: errors.New("x")})

	assert.Len(t, rec.Named("cart.mutation"), 2)
	gauges := rec.Named("cart.item_count")
	require.Len(t, gauges, 1)
	assert.InDelta(t, 4, gauges[0].Value, 0)
}

func TestNilSink(t *testing.T) {
	EmitBackendCall(nil, BackendCall{})
	EmitCartMutation(nil, CartMutation{})
	EmitSessionEvent(nil, "login", ResultSuccess)
}
