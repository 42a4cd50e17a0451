package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"matricula/internal/audit"
	"matricula/internal/enrollment/handler"
	"matricula/internal/enrollment/metrics"
	"matricula/internal/enrollment/render"
	"matricula/internal/enrollment/service"
	"matricula/internal/enrollment/store"
	"matricula/internal/platform/config"
	"matricula/internal/platform/database"
	"matricula/internal/platform/health"
	"matricula/internal/platform/httpserver"
	"matricula/internal/platform/kafka/producer"
	"matricula/internal/platform/logger"
	redisclient "matricula/internal/platform/redis"
	"matricula/internal/ratelimit"
	httptransport "matricula/internal/transport/http"
	"matricula/pkg/platform/middleware/request"
)

const redisStatsInterval = 15 * time.Second

// main wires dependencies and owns the server lifecycle. Enrollment logic
// lives in internal/enrollment.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)
	proxies, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	g, gctx := errgroup.WithContext(ctx)
	checks := health.New(cfg.Environment)

	var cache *redisclient.Client
	if cfg.RedisURL != "" {
		cache, err = redisclient.New(gctx, redisclient.DefaultConfig(cfg.RedisURL), reg)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer cache.Close() //nolint:errcheck // shutdown path
		checks.RegisterCheck("redis", cache.Health)
		g.Go(func() error { return cache.RunPoolStats(gctx, redisStatsInterval) })
	}

	records, cleanup, err := openStore(gctx, cfg, cache, reg, checks, log)
	if err != nil {
		return err
	}
	defer cleanup()

	limitCfg := ratelimit.Config{Limit: cfg.SubmitRateLimit, Window: cfg.SubmitWindow}
	var limiterStore ratelimit.Store
	if cache != nil {
		limiterStore = ratelimit.NewRedisStore(cache.Client, ratelimit.DefaultRedisKeyPrefix)
	} else {
		mem := ratelimit.NewInMemoryStore()
		limiterStore = mem
		if limitCfg.Enabled() {
			g.Go(func() error { return mem.RunSweeper(gctx, limitCfg.Window) })
		}
	}
	limiter := ratelimit.New(limiterStore, limitCfg, log, reg)

	publisherOpts := []audit.PublisherOption{
		audit.WithAsyncBuffer(cfg.AuditBuffer),
		audit.WithPublisherLogger(log),
	}
	if cfg.KafkaBrokers != "" {
		prod, err := producer.New(producer.DefaultConfig(cfg.KafkaBrokers), log)
		if err != nil {
			return fmt.Errorf("init kafka producer: %w", err)
		}
		defer prod.Close() //nolint:errcheck // shutdown path
		checks.RegisterCheck("kafka", prod.Health)
		sink := audit.NewGuardedSink(audit.NewKafkaSink(prod, cfg.KafkaTopic), log)
		publisherOpts = append(publisherOpts, audit.WithSink(sink))
		log.Info("publishing audit events to kafka", "topic", cfg.KafkaTopic)
	}
	auditor := audit.NewPublisher(audit.NewInMemoryStore(audit.WithRetention(cfg.AuditRetention)), publisherOpts...)
	defer auditor.Close()

	svc := service.New(records,
		service.WithLogger(log),
		service.WithAuditPublisher(auditor),
		service.WithMetrics(metrics.New(reg)),
	)
	svc.RefreshRecordCount(ctx)

	renderer, err := render.New()
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Enrollment:     handler.New(svc, renderer, log),
		Audit:          audit.NewHandler(auditor, log),
		Health:         checks,
		AdminToken:     cfg.AdminToken,
		TrustedProxies: proxies,
		RequestTimeout: cfg.RequestTimeout,
		Latency:        request.NewMetrics(reg),
		RateLimit:      limiter.Handler,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	if cfg.AdminToken == "" {
		log.Warn("ADMIN_TOKEN not set; admin routes are unauthenticated")
	}

	srv := httpserver.New(cfg.Addr(), router)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr(), "env", cfg.Environment)
		return httpserver.Run(gctx, srv, cfg.ShutdownTimeout)
	})

	err = g.Wait()
	log.Info("server stopped")
	return err
}

// openStore picks the record backend: DATABASE_URL, then REDIS_URL, else memory.
func openStore(
	ctx context.Context,
	cfg config.Server,
	cache *redisclient.Client,
	reg prometheus.Registerer,
	checks *health.Handler,
	log *slog.Logger,
) (service.Store, func(), error) {
	switch {
	case cfg.DatabaseURL != "":
		pool, err := database.New(ctx, database.DefaultConfig(cfg.DatabaseURL))
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Migrate(ctx); err != nil {
			pool.Close() //nolint:errcheck // init failure
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		if err := pool.RegisterMetrics(reg); err != nil {
			log.Warn("failed to register db metrics", "error", err)
		}
		checks.RegisterCheck("postgres", pool.Health)
		log.Info("using postgres record store")
		return store.NewPostgres(pool.DB()), func() { pool.Close() }, nil //nolint:errcheck // shutdown path

	case cache != nil:
		log.Info("using redis record store")
		return store.NewRedis(cache.Client, store.DefaultRedisKeyPrefix), func() {}, nil

	default:
		log.Info("using in-memory record store; records are lost on restart")
		return store.NewInMemory(), func() {}, nil
	}
}
