package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ad-tracker/video-harm-classifier-go/internal/classifier"
	"github.com/ad-tracker/video-harm-classifier-go/internal/config"
	"github.com/ad-tracker/video-harm-classifier-go/internal/handler"
	"github.com/ad-tracker/video-harm-classifier-go/internal/metrics"
	"github.com/ad-tracker/video-harm-classifier-go/internal/router"
	"github.com/ad-tracker/video-harm-classifier-go/internal/service"
	"github.com/ad-tracker/video-harm-classifier-go/internal/service/huggingface"
	"github.com/ad-tracker/video-harm-classifier-go/internal/service/quota"
	"github.com/ad-tracker/video-harm-classifier-go/internal/service/youtube"
	"github.com/ad-tracker/video-harm-classifier-go/internal/validation"
	"github.com/ad-tracker/video-harm-classifier-go/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.L()
	ctx := context.Background()

	m := metrics.New(prometheus.DefaultRegisterer)

	cache := service.ConnectMetadataCache(ctx, cfg.Redis.URL, cfg.Redis.TTL)
	defer cache.Close()

	fetcher, err := newFetcher(ctx, cfg, cache)
	if err != nil {
		log.Fatal("failed to initialize metadata extractor", zap.Error(err))
	}

	scorer := huggingface.NewClient(huggingface.Config{
		ModelURL: cfg.Classifier.URL,
		APIKey:   cfg.Classifier.APIKey,
		Timeout:  cfg.Classifier.Timeout,
	})
	engine := classifier.NewEngine(
		classifier.NewKeywordMatcher(classifier.DefaultKeywordRules),
		classifier.NewEmotionAdapter(scorer, cfg.Classifier.Threshold,
			classifier.WithErrorHook(func(error) { m.ClassifierFailed() }),
		),
	)

	batchService := service.NewBatchService(
		fetcher,
		engine,
		validation.New(cfg.Batch.MaxURLs),
		cfg.Batch.Workers,
		m,
	)

	// Optional collaborators stay untyped nil in the interfaces when disabled.
	var cachePinger handler.Pinger
	if cache.Enabled() {
		batchService.SetCache(cache)
		cachePinger = cache
	}

	var publisherHealth handler.HealthReporter
	if cfg.RabbitMQ.Enabled {
		publisher, err := service.NewMessagePublisher(&cfg.RabbitMQ)
		if err != nil {
			log.Warn("failed to initialize RabbitMQ publisher, results will not be published", zap.Error(err))
		} else {
			defer publisher.Close()
			batchService.SetPublisher(publisher)
			publisherHealth = publisher
		}
	}
	// Runs before the publisher is closed.
	defer batchService.Wait()

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	engineHTTP := router.New(&router.Handlers{
		Analyze: handler.NewAnalyzeHandler(batchService),
		Health:  handler.NewHealthHandler(cachePinger, publisherHealth),
	}, cfg.Server.CORSOrigins, m)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           engineHTTP,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("addr", server.Addr),
			zap.Int("workers", cfg.Batch.Workers),
			zap.Bool("cache", cache.Enabled()),
			zap.Bool("publisher", publisherHealth != nil),
		)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	case sig := <-shutdown:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", zap.Error(err))
			if err := server.Close(); err != nil {
				log.Error("failed to close server", zap.Error(err))
			}
			os.Exit(1)
		}

		log.Info("server stopped gracefully")
	}
}

// newFetcher picks the Data API extractor when an API key is configured and
// the page scraper otherwise. The Data API is quota-guarded, with the scraper
// taking over once the daily threshold is reached.
func newFetcher(ctx context.Context, cfg *config.Config, cache *service.RedisMetadataCache) (service.MetadataFetcher, error) {
	scraper := youtube.NewScraper(cfg.YouTube.Timeout)
	if cfg.YouTube.APIKey == "" {
		logger.L().Info("YouTube API key not configured, using page scraper for metadata")
		return scraper, nil
	}

	client, err := youtube.NewClient(ctx, cfg.YouTube.APIKey)
	if err != nil {
		return nil, err
	}

	var store quota.Store
	if rdb := cache.Client(); rdb != nil {
		store = quota.NewRedisStore(rdb)
	}
	manager := quota.NewManager(store, cfg.YouTube.DailyQuota, cfg.YouTube.QuotaThreshold)

	logger.L().Info("Using YouTube Data API for metadata",
		zap.Int("dailyQuota", cfg.YouTube.DailyQuota),
		zap.Int("thresholdPercent", cfg.YouTube.QuotaThreshold),
	)
	return service.NewQuotaGuardedFetcher(client, scraper, manager), nil
}
