package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saiza/notehub/internal/audit"
	"github.com/saiza/notehub/internal/cache"
	"github.com/saiza/notehub/internal/config"
	"github.com/saiza/notehub/internal/db"
	httpx "github.com/saiza/notehub/internal/http"
	"github.com/saiza/notehub/internal/http/handlers"
	"github.com/saiza/notehub/internal/observability"
	"github.com/saiza/notehub/internal/redisclient"
	"github.com/saiza/notehub/internal/repo/postgres"
	"github.com/saiza/notehub/internal/service"
	"github.com/saiza/notehub/internal/token"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// tracing

	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, "notehub-api", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}

		defer func() {
			sctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(sctx)
		}()
	}

	// metrics

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	// storage

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	if err := db.RunMigrations(ctx, cfg.DBURL); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	if err := db.EnsureAdminUser(ctx, pool, cfg); err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	usersRepo := postgres.NewUsersRepo(pool).WithMetrics(prom)
	logsRepo := postgres.NewAuditLogsRepo(pool).WithMetrics(prom)

	// audit pipeline: bounded queue, single writer

	recorder := audit.NewRecorder(logsRepo, log, prom, cfg.AuditQueueSize)

	recorderCtx, stopRecorder := context.WithCancel(context.Background())
	recorderDone := make(chan struct{})

	go func() {
		defer close(recorderDone)
		recorder.Run(recorderCtx)
	}()

	// services

	tokens := token.NewManager(cfg.JWTSecret, cfg.AccessTTL())
	authService := service.NewAuth(usersRepo, tokens, recorder, log)
	analyticsService := service.NewAnalytics(logsRepo, usersRepo, recorder, cache.New(5*time.Second), log)

	probes := map[string]handlers.Pinger{
		"postgres": pool.Ping,
	}

	var redisCli *redisclient.Client

	if cfg.RedisAddr != "" {
		redisCli = redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		defer redisCli.Close()

		probes["redis"] = redisCli.Ping
	}

	router := httpx.NewRouter(cfg, log, httpx.Deps{
		Auth:           authService,
		Profiles:       authService,
		Tracker:        analyticsService,
		Stats:          analyticsService,
		Tokens:         tokens,
		Prom:           prom,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Probes:         probes,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		sctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(sctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("http shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}

	// let the recorder drain buffered audit events before exit
	stopRecorder()

	select {
	case <-recorderDone:
		log.Info("audit recorder drained")
	case <-time.After(5 * time.Second):
		log.Error("audit recorder drain timed out")
	}
}
