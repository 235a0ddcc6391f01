package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"github.com/target/parapharmacie-storefront/internal/observability/statsd"
)

// catalogWarmer is the part of CatalogService the warmer drives.
type catalogWarmer interface {
	Warm(ctx context.Context) error
}

// CatalogWarmerOptions groups dependencies for CatalogWarmer.
type CatalogWarmerOptions struct {
	Catalog  catalogWarmer // Required
	Interval time.Duration // Required: must be positive
	Logger   *slog.Logger
	Metrics  statsd.Sink
}

// CatalogWarmer refreshes the catalog cache on a fixed interval so shoppers
// rarely pay for a cold cache.
type CatalogWarmer struct {
	catalog  catalogWarmer
	interval time.Duration
	logger   *slog.Logger
	metrics  statsd.Sink
}

// NewCatalogWarmer constructs a CatalogWarmer.
func NewCatalogWarmer(opts CatalogWarmerOptions) (*CatalogWarmer, error) {
	if opts.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if opts.Interval <= 0 {
		return nil, errors.New("warm interval must be positive")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogWarmer{
		catalog:  opts.Catalog,
		interval: opts.Interval,
		logger:   logger.With("component", "catalog_warmer"),
		metrics:  opts.Metrics,
	}, nil
}

// Run warms the cache immediately, then on every tick until ctx is done.
// Returns nil on graceful shutdown.
func (w *CatalogWarmer) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "starting catalog warmer", "interval", w.interval)

	w.waitWithJitter(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.warmOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "catalog warmer stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			w.warmOnce(ctx)
		}
	}
}

func (w *CatalogWarmer) warmOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	err := w.catalog.Warm(ctx)
	result := "success"
	if err != nil {
		result = "error"
		w.logger.WarnContext(ctx, "catalog warm failed", "error", err)
	}
	if w.metrics != nil {
		tags := map[string]string{"result": result}
		w.metrics.Count("catalog.warm", 1, tags)
		w.metrics.Timing("catalog.warm.duration", time.Since(start), tags)
	}
}

// waitWithJitter delays up to 10% of the interval so replicas do not warm in lockstep.
func (w *CatalogWarmer) waitWithJitter(ctx context.Context) {
	maxJitter := int64(w.interval / 10)
	if maxJitter <= 0 {
		return
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return
	}
	jitter := time.Duration(int64(binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter))) // #nosec G115 - bounded by maxJitter
	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}
