package apiclient

// Package apiclient is the single configured client for the remote storefront API.
// Every call attaches the bearer token from the context, is bounded by a timeout,
// and is classified into an *Error that is also reported to one FailureHandler.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/target/parapharmacie-storefront/internal/observability/metrics"
	"github.com/target/parapharmacie-storefront/internal/observability/statsd"
)

const maxBodyBytes = 4 << 20

// FailureHandler is the central reaction to failed backend calls.
// It runs on the request goroutine before the error is returned to the caller.
type FailureHandler interface {
	HandleFailure(ctx context.Context, err *Error)
}

// FailureHandlerFunc adapts a function to FailureHandler.
type FailureHandlerFunc func(ctx context.Context, err *Error)

func (f FailureHandlerFunc) HandleFailure(ctx context.Context, err *Error) { f(ctx, err) }

// Options configures New.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// RetryAttempts is the total number of tries for idempotent GETs (1 disables retries).
	RetryAttempts        int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	UserAgent            string
	// Tracing wraps the transport with OpenTelemetry instrumentation.
	Tracing   bool
	Transport http.RoundTripper
	Metrics   statsd.Sink
	Logger    *slog.Logger
	OnFailure FailureHandler
}

// Client talks to the remote API.
type Client struct {
	base      *url.URL
	http      *http.Client
	attempts  int
	initial   time.Duration
	maxDelay  time.Duration
	userAgent string
	metrics   statsd.Sink
	logger    *slog.Logger
	onFailure atomic.Pointer[FailureHandler]
}

// New builds a Client. BaseURL must be an absolute http(s) URL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend base url: %w", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("backend base url %q must be absolute http(s)", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	attempts := opts.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	initial := opts.RetryInitialInterval
	if initial <= 0 {
		initial = 200 * time.Millisecond
	}
	maxDelay := opts.RetryMaxInterval
	if maxDelay <= 0 {
		maxDelay = 2 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if opts.Tracing {
		transport = otelhttp.NewTransport(transport)
	}

	c := &Client{
		base:      base,
		http:      &http.Client{Timeout: timeout, Transport: transport},
		attempts:  attempts,
		initial:   initial,
		maxDelay:  maxDelay,
		userAgent: opts.UserAgent,
		metrics:   opts.Metrics,
		logger:    logger.With("component", "apiclient"),
	}
	if opts.OnFailure != nil {
		c.SetFailureHandler(opts.OnFailure)
	}
	return c, nil
}

// SetFailureHandler installs the central failure reaction. Safe to call while serving.
func (c *Client) SetFailureHandler(h FailureHandler) {
	if h == nil {
		c.onFailure.Store(nil)
		return
	}
	c.onFailure.Store(&h)
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.base.String() }

type request struct {
	method   string
	endpoint string // metric label, e.g. "cart"
	path     string
	query    url.Values
	body     any
	out      any
}

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	return c.do(ctx, request{method: http.MethodGet, endpoint: endpoint, path: path, query: query, out: out})
}

func (c *Client) send(ctx context.Context, method, endpoint, path string, query url.Values, body, out any) error {
	return c.do(ctx, request{method: method, endpoint: endpoint, path: path, query: query, body: body, out: out})
}

type response struct {
	status int
	body   []byte
}

func (c *Client) do(ctx context.Context, req request) error {
	token := TokenFrom(ctx)

	var payload []byte
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", req.method, req.path, err)
		}
		payload = b
	}

	start := time.Now()
	tries := 0
	op := func() (response, error) {
		tries++
		resp, err := c.roundTrip(ctx, req, payload, token)
		if err != nil {
			if ctx.Err() != nil {
				return resp, backoff.Permanent(err)
			}
			return resp, err
		}
		if resp.status >= http.StatusInternalServerError {
			return resp, errRetryableStatus
		}
		return resp, nil
	}

	var (
		resp response
		err  error
	)
	if req.method == http.MethodGet && c.attempts > 1 {
		resp, err = backoff.Retry(ctx, op,
			backoff.WithBackOff(c.newBackOff()),
			backoff.WithMaxTries(uint(c.attempts)),
		)
	} else {
		resp, err = op()
	}
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Err
	}
	if errors.Is(err, errRetryableStatus) {
		err = nil
	}

	apiErr := c.classify(ctx, req, resp, err, token != "")
	if apiErr == nil && req.out != nil && len(bytes.TrimSpace(resp.body)) > 0 {
		if decodeErr := json.Unmarshal(resp.body, req.out); decodeErr != nil {
			apiErr = &Error{Kind: KindServer, Status: resp.status, Method: req.method, Path: req.path, Cause: decodeErr}
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil && err != nil {
		// The caller went away; nobody is left to notify.
		c.logger.Debug("backend call abandoned", "method", req.method, "path", req.path, "error", ctxErr)
		return fmt.Errorf("%s %s: %w", req.method, req.path, ctxErr)
	}
	c.observe(req, resp.status, tries, time.Since(start), apiErr)

	if apiErr != nil {
		if h := c.onFailure.Load(); h != nil {
			(*h).HandleFailure(ctx, apiErr)
		}
		return apiErr
	}
	return nil
}

var errRetryableStatus = errors.New("retryable status")

func (c *Client) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initial
	b.MaxInterval = c.maxDelay
	return b
}

func (c *Client) roundTrip(ctx context.Context, req request, payload []byte, token string) (response, error) {
	u := *c.base
	u.Path = c.base.Path + "/" + strings.TrimLeft(req.path, "/")
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return response{}, backoff.Permanent(err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return response{}, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return response{status: httpResp.StatusCode}, err
	}
	return response{status: httpResp.StatusCode, body: data}, nil
}

func (c *Client) classify(ctx context.Context, req request, resp response, err error, hadToken bool) *Error {
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return &Error{Kind: KindNetwork, Status: resp.status, Method: req.method, Path: req.path, Cause: err}
	}
	if resp.status >= 200 && resp.status < 300 {
		return nil
	}
	return &Error{
		Kind:    classifyStatus(resp.status, hadToken),
		Status:  resp.status,
		Message: extractMessage(resp.body),
		Method:  req.method,
		Path:    req.path,
	}
}

func (c *Client) observe(req request, status, tries int, elapsed time.Duration, apiErr *Error) {
	var err error
	if apiErr != nil {
		err = apiErr
	}
	metrics.EmitBackendCall(c.metrics, metrics.BackendCall{
		Endpoint: req.endpoint,
		Method:   req.method,
		Status:   status,
		Attempts: tries,
		Duration: elapsed,
		Err:      err,
	})

	if apiErr == nil {
		c.logger.Debug("backend call",
			"method", req.method, "path", req.path, "status", status,
			"attempts", tries, "duration_ms", elapsed.Milliseconds())
		return
	}
	c.logger.Warn("backend call failed",
		"method", req.method, "path", req.path, "status", status,
		"kind", string(apiErr.Kind), "attempts", tries,
		"duration_ms", elapsed.Milliseconds(), "error", apiErr.Error())
}
