package metrics

import (
	"strconv"
	"time"

	obserrors "github.com/target/parapharmacie-storefront/internal/observability/errors"
	"github.com/target/parapharmacie-storefront/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// BackendCall captures one request to the remote API.
type BackendCall struct {
	Endpoint string
	Method   string
	Status   int
	Attempts int
	Duration time.Duration
	Err      error
}

// EmitBackendCall emits request count and latency for a backend call.
func EmitBackendCall(sink statsd.Sink, in BackendCall) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"endpoint": in.Endpoint,
		"method":   in.Method,
		"result":   ResultSuccess,
	}
	if in.Status > 0 {
		tags["status"] = strconv.Itoa(in.Status)
	}
	if in.Err != nil {
		tags["result"] = ResultError
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("backend.request", 1, tags)
	if in.Attempts > 1 {
		sink.Count("backend.retry", int64(in.Attempts-1), CloneTags(tags))
	}
	if in.Duration > 0 {
		sink.Timing("backend.duration", in.Duration, CloneTags(tags))
	}
}

// CartMutation captures one cart store operation.
type CartMutation struct {
	Op        string
	Result    string
	ItemCount int
	Err       error
}

// EmitCartMutation emits a counter per cart operation and the resulting item count.
func EmitCartMutation(sink statsd.Sink, in CartMutation) {
	if sink == nil {
		return
	}
	tags := map[string]string{"op": in.Op, "result": in.Result}
	if in.Err != nil {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}
	sink.Count("cart.mutation", 1, tags)
	if in.Result == ResultSuccess {
		sink.Gauge("cart.item_count", float64(in.ItemCount), map[string]string{"op": in.Op})
	}
}

// EmitSessionEvent counts session lifecycle transitions (login, logout, restore outcomes).
func EmitSessionEvent(sink statsd.Sink, event, result string) {
	if sink == nil {
		return
	}
	sink.Count("session.event", 1, map[string]string{"event": event, "result": result})
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
