package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"campus-crowd-backend/config"
	"campus-crowd-backend/internal/api"
	"campus-crowd-backend/internal/db"
	"campus-crowd-backend/internal/ingest"
	"campus-crowd-backend/internal/logging"
	"campus-crowd-backend/internal/mw"
	"campus-crowd-backend/internal/notification"
	"campus-crowd-backend/internal/store"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("configuration loaded", zap.String("path", configPath))

	var webpushOptions *webpush.Options
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	} else {
		logger.Warn("VAPID keys not configured, push notifications disabled")
	}

	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	logger.Info("database initialized", zap.String("driver", cfg.Database.Driver))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB, logger.Named("store"))
	if cfg.Seed.DemoData {
		if err := appStore.SeedDemoData(ctx, time.Now().UTC()); err != nil {
			logger.Fatal("failed to seed demo data", zap.Error(err))
		}
	}

	tz, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		logger.Warn("unknown timezone, using UTC", zap.String("timezone", cfg.Server.Timezone), zap.Error(err))
		tz = time.UTC
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := mw.NewMetrics(registry)

	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions, logger.Named("notification")).
		WithCounter(metrics.NotificationsSent)
	pool.Start(ctx)

	responseCache := mw.NewResponseCache(cfg.Server.CacheTTL, 2*cfg.Server.CacheTTL)

	ingestSvc := ingest.NewService(&cfg.Ingest, appStore, logger.Named("ingest"))
	ingestSvc.OnUpdate(func(int) {
		responseCache.InvalidatePrefix("/api/")
	})
	go ingestSvc.Run(ctx)

	router := api.NewRouter(appStore, api.Options{
		WebPush:   webpushOptions,
		Notifier:  pool,
		Cache:     responseCache,
		CacheTTL:  cfg.Server.CacheTTL,
		Registry:  registry,
		Metrics:   metrics,
		Logger:    logger.Named("http"),
		Timezone:  tz,
		RateLimit: rate.Limit(cfg.Server.RateLimitPerSec),
		RateBurst: cfg.Server.RateLimitBurst,
	})
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server ListenAndServe", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received, stopping services")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("HTTP server Shutdown", zap.Error(err))
	}

	logger.Info("server gracefully stopped")
}
