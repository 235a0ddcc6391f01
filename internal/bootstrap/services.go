package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/parapharmacie-storefront/config"
	"github.com/target/parapharmacie-storefront/internal/adapters/authroles"
	redisadapter "github.com/target/parapharmacie-storefront/internal/adapters/redis"
	"github.com/target/parapharmacie-storefront/internal/adapters/tokenclaims"
	"github.com/target/parapharmacie-storefront/internal/apiclient"
	"github.com/target/parapharmacie-storefront/internal/cryptoutil"
	httpx "github.com/target/parapharmacie-storefront/internal/http"
	"github.com/target/parapharmacie-storefront/internal/observability/statsd"
	"github.com/target/parapharmacie-storefront/internal/ports"
	"github.com/target/parapharmacie-storefront/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Client        *apiclient.Client
	Sessions      *service.SessionService
	Carts         *service.CartService
	Catalog       *service.CatalogService
	Orders        *service.OrderService
	Backoffice    *service.BackofficeService
	Warmer        *service.CatalogWarmer
	Cache         *redisadapter.CacheRepo
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink   *statsd.Client
	MetricsConfig config.ObservabilityMetricsConfig
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups the Redis adapters backing service ports.
type serviceRepositories struct {
	Sessions *redisadapter.SessionStore
	Carts    *redisadapter.CartStore
	Cache    *redisadapter.CacheRepo
}

// buildObservability configures the metrics sink. A failed dial degrades to a
// disabled sink rather than failing startup.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  cfg.Metrics.Prefix,
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink:   metricsSink,
		MetricsConfig: cfg.Metrics,
	}
}

// buildRepositories builds the Redis adapters; no business rules here.
func buildRepositories(client redis.UniversalClient, cfg *config.AppConfig) (*serviceRepositories, error) {
	sealer, err := cryptoutil.NewSealer(cfg.Session.TokenKey)
	if err != nil {
		return nil, fmt.Errorf("session token key: %w", err)
	}
	return &serviceRepositories{
		Sessions: redisadapter.NewSessionStore(client, redisadapter.SessionStoreOptions{
			Prefix:     cfg.Session.KeyPrefix,
			DefaultTTL: cfg.Session.TTL,
			Sealer:     sealer,
		}),
		Carts: redisadapter.NewCartStore(client, cfg.Store.CartKeyPrefix),
		Cache: redisadapter.NewCacheRepo(client),
	}, nil
}

func newAPIClient(cfg *config.AppConfig, sink statsd.Sink, logger *slog.Logger) (*apiclient.Client, error) {
	client, err := apiclient.New(apiclient.Options{
		BaseURL:              cfg.Backend.BaseURL,
		Timeout:              cfg.Backend.Timeout,
		RetryAttempts:        cfg.Backend.RetryAttempts,
		RetryInitialInterval: cfg.Backend.RetryInitialInterval,
		RetryMaxInterval:     cfg.Backend.RetryMaxInterval,
		UserAgent:            cfg.Backend.UserAgent,
		Tracing:              cfg.Observability.Tracing.Enabled,
		Metrics:              sink,
		Logger:               logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build api client: %w", err)
	}
	return client, nil
}

func newSessionService(
	cfg *config.AppConfig,
	client *apiclient.Client,
	repos *serviceRepositories,
	observers []ports.IdentityObserver,
	sink statsd.Sink,
	logger *slog.Logger,
) (*service.SessionService, error) {
	return service.NewSessionService(service.SessionServiceOptions{
		Auth:      client,
		Sessions:  repos.Sessions,
		Roles:     authroles.NewStaticRoleMapper(cfg.Session.RoleAliases),
		Tokens:    tokenclaims.NewInspector(),
		Observers: observers,
		Config: service.SessionConfig{
			TTL:                cfg.Session.TTL,
			Revalidate:         cfg.Session.Revalidate,
			RevalidateInterval: cfg.Session.RevalidateInterval,
		},
		Metrics: sink,
		Logger:  logger,
	})
}

// DomainServicesOptions groups what buildDomainServices wires together.
type DomainServicesOptions struct {
	Repos         *serviceRepositories
	Observability ObservabilityContainer
	Config        *config.AppConfig
	Logger        *slog.Logger
}

// buildDomainServices wires business services using repositories and observability adapters.
// The cart observes identity changes, and the API client reports failures to the
// session-aware reactor once every service exists.
func buildDomainServices(opts *DomainServicesOptions) (ServiceContainer, error) {
	if opts == nil || opts.Repos == nil || opts.Config == nil {
		return ServiceContainer{}, errors.New("repositories and config are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config
	sink := opts.Observability.MetricsSink

	client, err := newAPIClient(cfg, sink, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	carts, err := service.NewCartService(service.CartServiceOptions{
		API:       client,
		Snapshots: opts.Repos.Carts,
		Sessions:  opts.Repos.Sessions,
		Config: service.CartConfig{
			SnapshotTTL:        cfg.Session.TTL,
			SerializeMutations: cfg.Store.CartSerializeMutations,
		},
		Metrics: sink,
		Logger:  logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build cart service: %w", err)
	}

	sessions, err := newSessionService(cfg, client, opts.Repos, []ports.IdentityObserver{carts}, sink, logger)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build session service: %w", err)
	}

	catalog, err := service.NewCatalogService(service.CatalogServiceOptions{
		API:    client,
		Cache:  opts.Repos.Cache,
		TTL:    cfg.Store.CatalogCacheTTL,
		Logger: logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build catalog service: %w", err)
	}

	orders, err := service.NewOrderService(service.OrderServiceOptions{
		API:    client,
		Carts:  carts,
		Logger: logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build order service: %w", err)
	}

	backoffice, err := service.NewBackofficeService(service.BackofficeServiceOptions{
		Orders:  client,
		Manager: client,
		Admin:   client,
		Catalog: client,
		Cache:   catalog,
		Logger:  logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build backoffice service: %w", err)
	}

	warmer, err := service.NewCatalogWarmer(service.CatalogWarmerOptions{
		Catalog:  catalog,
		Interval: cfg.Store.CatalogWarmInterval,
		Logger:   logger,
		Metrics:  sink,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build catalog warmer: %w", err)
	}

	client.SetFailureHandler(&httpx.FailureReactor{Sessions: sessions, Logger: logger})

	return ServiceContainer{
		Client:        client,
		Sessions:      sessions,
		Carts:         carts,
		Catalog:       catalog,
		Orders:        orders,
		Backoffice:    backoffice,
		Warmer:        warmer,
		Cache:         opts.Repos.Cache,
		Observability: opts.Observability,
	}, nil
}

// NewServices builds every storefront service from configuration and a connected Redis client.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	if deps.RedisClient == nil {
		return ServiceContainer{}, errors.New("redis client is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	repos, err := buildRepositories(deps.RedisClient, deps.Config)
	if err != nil {
		return ServiceContainer{}, err
	}
	observability := buildObservability(logger, deps.Config.Observability)
	return buildDomainServices(&DomainServicesOptions{
		Repos:         repos,
		Observability: observability,
		Config:        deps.Config,
		Logger:        logger,
	})
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

const (
	// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
	shutdownWaitTimeout = 15 * time.Second
)

// serviceStartupDeps groups dependencies for service startup.
type serviceStartupDeps struct {
	ctx             context.Context
	cfg             *ServiceOrchestrationConfig
	logger          *slog.Logger
	enabledServices map[config.ServiceMode]bool
	errCh           chan error
}

// backgroundService describes a startable background component.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context) error
}

// backgroundServiceHandle tracks a running background service.
type backgroundServiceHandle struct {
	mode config.ServiceMode
	name string
	done <-chan struct{}
}

// startHTTPServerIfEnabled starts the HTTP server if enabled.
func startHTTPServerIfEnabled(deps *serviceStartupDeps) (*http.Server, error) {
	if deps == nil || deps.cfg == nil || !deps.enabledServices[config.ServiceModeHTTP] {
		return nil, nil
	}
	return StartHTTPServer(&HTTPServerConfig{
		Config:   deps.cfg.Config,
		Services: deps.cfg.Services,
		Logger:   deps.logger,
		ErrCh:    deps.errCh,
	})
}

func launchBackground(ctx context.Context, deps *serviceStartupDeps, descriptor backgroundService) <-chan struct{} {
	if deps == nil || !deps.enabledServices[descriptor.mode] {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := descriptor.start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errMsg := fmt.Errorf("%s failed: %w", descriptor.name, err)
			select {
			case deps.errCh <- errMsg:
			case <-ctx.Done():
			default:
				deps.logger.WarnContext(ctx, "dropping background service error", "service", descriptor.name, "error", errMsg)
			}
		}
	}()

	deps.logger.InfoContext(ctx, "background service started", "service", descriptor.name, "mode", descriptor.mode)
	return done
}

func startBackgroundServices(deps *serviceStartupDeps, services []backgroundService) []backgroundServiceHandle {
	if deps == nil {
		return nil
	}
	handles := make([]backgroundServiceHandle, 0, len(services))
	for _, svc := range services {
		done := launchBackground(deps.ctx, deps, svc)
		if done == nil {
			continue
		}
		handles = append(handles, backgroundServiceHandle{mode: svc.mode, name: svc.name, done: done})
	}
	return handles
}

func newCatalogWarmerBackgroundService(deps *serviceStartupDeps) backgroundService {
	return backgroundService{
		mode: config.ServiceModeCatalogWarmer,
		name: "catalog warmer",
		start: func(ctx context.Context) error {
			if deps == nil || deps.cfg == nil || deps.cfg.Services.Warmer == nil {
				return errors.New("catalog warmer is not configured")
			}
			return deps.cfg.Services.Warmer.Run(ctx)
		},
	}
}

func buildBackgroundServices(deps *serviceStartupDeps) []backgroundService {
	if deps == nil {
		return nil
	}
	return []backgroundService{
		newCatalogWarmerBackgroundService(deps),
	}
}

// ServiceStartupResult holds the results of starting all services.
type ServiceStartupResult struct {
	HTTPServer *http.Server
	Background []backgroundServiceHandle
}

// startServices starts all enabled services and returns their completion channels.
func startServices(deps *serviceStartupDeps) (ServiceStartupResult, error) {
	server, err := startHTTPServerIfEnabled(deps)
	if err != nil {
		return ServiceStartupResult{}, err
	}
	return ServiceStartupResult{
		HTTPServer: server,
		Background: startBackgroundServices(deps, buildBackgroundServices(deps)),
	}, nil
}

// RunServicesWithShutdown starts all enabled services and manages their lifecycle.
// This function blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabledServices, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}
	errCh := make(chan error, errorChannelBufferSize(enabledServices))

	result, err := startServices(&serviceStartupDeps{
		ctx:             serviceCtx,
		cfg:             cfg,
		logger:          logger,
		enabledServices: enabledServices,
		errCh:           errCh,
	})
	if err != nil {
		return err
	}

	return waitForShutdown(shutdownConfig{
		ctx:         serviceCtx,
		cancel:      cancel,
		errCh:       errCh,
		httpServer:  result.HTTPServer,
		logger:      logger,
		backgrounds: result.Background,
	})
}

func errorChannelCapacity(enabled map[config.ServiceMode]bool) int {
	count := 0
	for _, mode := range config.ValidServiceModes() {
		if enabled[mode] {
			count++
		}
	}
	return count
}

func errorChannelBufferSize(enabled map[config.ServiceMode]bool) int {
	return errorChannelCapacity(enabled) + 1
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	ctx         context.Context
	cancel      context.CancelFunc
	errCh       <-chan error
	httpServer  *http.Server
	logger      *slog.Logger
	backgrounds []backgroundServiceHandle
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		cfg.logger.Info("shutting down services...")
		cfg.cancel()
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		cfg.cancel()
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop attempts to gracefully stop all services.
func gracefulStop(cfg shutdownConfig) error {
	if cfg.httpServer != nil {
		// the service context is already cancelled; shutdown needs its own deadline
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(cfg.ctx), shutdownWaitTimeout)
		defer cancel()

		if err := ShutdownHTTPServer(ShutdownConfig{
			Context: shutdownCtx,
			Server:  cfg.httpServer,
			Logger:  cfg.logger,
		}); err != nil {
			return err
		}
	}

	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}
	return nil
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
