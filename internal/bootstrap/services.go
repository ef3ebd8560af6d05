package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/mmk-queue-monitor/config"
	"github.com/target/mmk-queue-monitor/internal/core"
	"github.com/target/mmk-queue-monitor/internal/data"
	"github.com/target/mmk-queue-monitor/internal/data/database"
	"github.com/target/mmk-queue-monitor/internal/data/memcache"
	"github.com/target/mmk-queue-monitor/internal/data/memstore"
	"github.com/target/mmk-queue-monitor/internal/devseed"
	"github.com/target/mmk-queue-monitor/internal/observability/metrics"
	"github.com/target/mmk-queue-monitor/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Jobs     *service.JobSearchService
	Workers  *service.WorkerService
	Cache    core.CacheRepository
	Metrics  *metrics.Recorder
	Location *time.Location
	// Counter feeds the scope collector.
	Counter metrics.ScopeCounter
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

type serviceRepositories struct {
	pushes  core.PushRepository
	execs   core.ExecRepository
	workers core.WorkerRepository
}

func buildRepositories(ctx context.Context, deps *ServiceDeps) (*serviceRepositories, error) {
	cfg := deps.Config
	if cfg.DB.Driver == config.DriverMemory {
		store := memstore.New()
		if cfg.DB.Seed {
			if _, err := devseed.Run(ctx, devseed.StoreSink{Store: store}, time.Now(), deps.Logger); err != nil {
				return nil, fmt.Errorf("seed memory store: %w", err)
			}
		}
		return &serviceRepositories{pushes: store.Pushes(), execs: store.Execs(), workers: store.Workers()}, nil
	}

	if deps.DB == nil {
		return nil, errors.New("database connection is required")
	}
	dialect, err := database.DialectFor(cfg.DB.Driver)
	if err != nil {
		return nil, err
	}
	repoCfg := data.RepoConfig{
		Dialect: dialect,
		Tables:  monitorTables(cfg.Monitor),
		Logger:  deps.Logger,
	}
	return &serviceRepositories{
		pushes:  data.NewPushRepo(deps.DB, repoCfg),
		execs:   data.NewExecRepo(deps.DB, repoCfg),
		workers: data.NewWorkerRepo(deps.DB, repoCfg),
	}, nil
}

func monitorTables(cfg config.MonitorConfig) database.Tables {
	return database.Tables{Push: cfg.PushTable, Exec: cfg.ExecTable, Worker: cfg.WorkerTable}.WithDefaults()
}

//nolint:ireturn // callers only need the cache port.
func buildCache(cfg config.CacheConfig, client redis.UniversalClient) (core.CacheRepository, error) {
	switch cfg.Backend {
	case config.CacheBackendRedis:
		if client == nil {
			return nil, errors.New("redis cache backend requires a redis client")
		}
		return data.NewRedisCacheRepo(client), nil
	case config.CacheBackendNone:
		return nil, nil
	default:
		return memcache.New(memcache.Config{Capacity: cfg.MemoryCapacity}), nil
	}
}

func buildMetrics(cfg config.ObservabilityMetricsConfig) *metrics.Recorder {
	if !cfg.IsEnabled() {
		return nil
	}
	return metrics.New(cfg.Namespace)
}

// NewServices wires repositories, cache and services from configuration.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
		deps.Logger = logger
	}
	cfg := deps.Config

	repos, err := buildRepositories(ctx, deps)
	if err != nil {
		return ServiceContainer{}, err
	}
	cache, err := buildCache(cfg.Cache, deps.RedisClient)
	if err != nil {
		return ServiceContainer{}, err
	}
	loc, err := cfg.Monitor.Location()
	if err != nil {
		return ServiceContainer{}, err
	}
	rec := buildMetrics(cfg.Observability.Metrics)

	lists := core.NewListCacheService(core.ListCacheServiceOptions{
		Cache:    cache,
		Config:   core.ListCacheConfig{Prefix: cfg.Monitor.CachePrefix, TTL: cfg.Monitor.ListCacheTTL},
		Logger:   logger,
		OnLookup: rec.ListLookup,
	})

	jobs, err := service.NewJobSearchService(service.JobSearchServiceOptions{
		Repos:  service.JobSearchRepos{Pushes: repos.pushes, Execs: repos.execs},
		Lists:  lists,
		Logger: logger,
	})
	if err != nil {
		return ServiceContainer{}, err
	}
	workers, err := service.NewWorkerService(service.WorkerServiceOptions{
		Repos:  service.WorkerRepos{Workers: repos.workers, Execs: repos.execs},
		Logger: logger,
	})
	if err != nil {
		return ServiceContainer{}, err
	}

	return ServiceContainer{
		Jobs:     jobs,
		Workers:  workers,
		Cache:    cache,
		Metrics:  rec,
		Location: loc,
		Counter:  repos.pushes,
	}, nil
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

// backgroundService describes a startable background component.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context)
}

// backgroundServiceHandle tracks a running background service.
type backgroundServiceHandle struct {
	name string
	done <-chan struct{}
}

func launchBackground(ctx context.Context, logger *slog.Logger, svc backgroundService) backgroundServiceHandle {
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.start(ctx)
	}()
	logger.InfoContext(ctx, "background service started", "service", svc.name, "mode", svc.mode)
	return backgroundServiceHandle{name: svc.name, done: done}
}

func buildBackgroundServices(cfg *ServiceOrchestrationConfig, logger *slog.Logger) []backgroundService {
	if !cfg.Config.IsCollectorEnabled() || cfg.Services.Metrics == nil || cfg.Services.Counter == nil {
		return nil
	}
	return []backgroundService{{
		mode: config.ServiceModeCollector,
		name: "scope collector",
		start: func(ctx context.Context) {
			cfg.Services.Metrics.StartCollector(ctx, cfg.Services.Counter, cfg.Config.Observability.Metrics.CollectInterval, logger)
		},
	}}
}

// RunServicesWithShutdown starts all enabled services and manages their lifecycle.
// This function blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	errCh := make(chan error, 1)
	var server *http.Server
	if cfg.Config.IsHTTPServerEnabled() {
		server = StartHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
			ErrCh:    errCh,
		})
	}

	var handles []backgroundServiceHandle
	for _, svc := range buildBackgroundServices(cfg, logger) {
		handles = append(handles, launchBackground(ctx, logger, svc))
	}

	return waitForShutdown(shutdownConfig{
		ctx:         ctx,
		cancel:      cancel,
		errCh:       errCh,
		httpServer:  server,
		timeout:     cfg.Config.HTTP.ShutdownTimeout,
		logger:      logger,
		backgrounds: handles,
	})
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	ctx         context.Context
	cancel      context.CancelFunc
	errCh       <-chan error
	httpServer  *http.Server
	timeout     time.Duration
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
	if err := ShutdownHTTPServer(ShutdownConfig{
		Server:  cfg.httpServer,
		Timeout: cfg.timeout,
		Logger:  cfg.logger,
	}); err != nil {
		return err
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
