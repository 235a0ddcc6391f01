package statsd

import (
	"net"
	"strings"
	"testing"
	"time"
)

func TestMetricName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix, name, want string
	}{
		{"storefront", "backend.request", "storefront.backend.request"},
		{"", " cart/mutation ", "cart_mutation"},
		{"storefront", "foo..bar", "storefront.foo.bar"},
		{"storefront", "  ", ""},
		{"", "a:b|c", "a_b_c"},
	}

	for _, tt := range tests {
		if got := metricName(tt.prefix, tt.name); got != tt.want {
			t.Fatalf("metricName(%q, %q) = %q, want %q", tt.prefix, tt.name, got, tt.want)
		}
	}
}

func TestLineSortsAndMergesTags(t *testing.T) {
	t.Parallel()

	c := &Client{
		prefix:     "storefront",
		globalTags: cleanTags(map[string]string{"env": "prod", " service ": " storefront "}),
	}
	got := c.line("backend.request", "1", "c", map[string]string{"kind": " server ", "": "ignored", "env": "stage"})
	want := "storefront.backend.request:1|c|#env:stage,kind:server,service:storefront"
	if got != want {
		t.Fatalf("line mismatch\n got: %q\nwant: %q", got, want)
	}

	if got := (&Client{}).line("x", "2", "g", nil); got != "x:2|g" {
		t.Fatalf("untagged line = %q", got)
	}
}

func TestClientEmitsOverUDP(t *testing.T) {
	t.Parallel()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer pc.Close()

	client, err := NewClient(Config{Enabled: true, Address: pc.LocalAddr().String(), Prefix: "storefront."})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	if !client.Enabled() {
		t.Fatal("expected enabled client")
	}
	client.Timing("backend.latency", 1500*time.Microsecond, map[string]string{"endpoint": "cart"})

	buf := make([]byte, 512)
	_ = pc.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := string(buf[:n]); got != "storefront.backend.latency:1.5|ms|#endpoint:cart" {
		t.Fatalf("unexpected datagram %q", got)
	}
}

func TestClientCloseAndNil(t *testing.T) {
	t.Parallel()

	clientConn, peerConn := net.Pipe()
	defer peerConn.Close()

	client := &Client{conn: clientConn}
	if !client.Enabled() {
		t.Fatal("expected client.Enabled to report true with active connection")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if client.Enabled() {
		t.Fatal("expected client.Enabled to report false after Close")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close (second call) error: %v", err)
	}

	var nilClient *Client
	nilClient.Count("x", 1, nil)
	if nilClient.Enabled() {
		t.Fatal("nil client should report disabled")
	}
	if err := nilClient.Close(); err != nil {
		t.Fatalf("nil client Close error: %v", err)
	}
}

func TestNewClientDisabled(t *testing.T) {
	t.Parallel()

	for _, cfg := range []Config{{Enabled: true, Address: "   "}, {Enabled: false, Address: "127.0.0.1:8125"}} {
		client, err := NewClient(cfg)
		if err != nil {
			t.Fatalf("NewClient error: %v", err)
		}
		if client.Enabled() {
			t.Fatalf("expected disabled client for %+v", cfg)
		}
	}
}

func TestNewClientDialError(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{Enabled: true, Address: "bad address"})
	if err == nil {
		t.Fatal("expected NewClient to error for invalid address")
	}
	if !strings.Contains(err.Error(), "statsd dial") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	var r Recorder
	tags := map[string]string{"a": "1"}
	r.Count("hits", 2, tags)
	tags["a"] = "changed"
	r.Timing("lat", time.Second, nil)

	if got := r.Named("hits"); len(got) != 1 || got[0].Value != 2 || got[0].Tags["a"] != "1" {
		t.Fatalf("unexpected recorded count %+v", got)
	}
	if len(r.Metrics()) != 2 {
		t.Fatalf("expected 2 metrics, got %d", len(r.Metrics()))
	}
}
