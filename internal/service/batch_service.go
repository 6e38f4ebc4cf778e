// Package service provides the batch classification pipeline and its
// supporting infrastructure.
package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ad-tracker/video-harm-classifier-go/internal/metrics"
	"github.com/ad-tracker/video-harm-classifier-go/internal/models"
	"github.com/ad-tracker/video-harm-classifier-go/internal/service/youtube"
	"github.com/ad-tracker/video-harm-classifier-go/internal/validation"
	"github.com/ad-tracker/video-harm-classifier-go/pkg/logger"
)

const (
	// DefaultWorkers is the number of URLs processed concurrently per batch.
	DefaultWorkers = 5

	// DefaultPublishTimeout bounds the background publish of one batch.
	DefaultPublishTimeout = 30 * time.Second
)

// MetadataFetcher extracts metadata for one video URL.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, videoURL string) (models.VideoMetadata, error)
}

// Decider turns metadata into a verdict.
type Decider interface {
	Decide(ctx context.Context, meta models.VideoMetadata) models.ClassificationResult
}

// MetadataCache stores extracted metadata between requests.
type MetadataCache interface {
	Get(ctx context.Context, videoURL string) (models.VideoMetadata, bool, error)
	Set(ctx context.Context, meta models.VideoMetadata) error
}

// ResultPublisher announces finished classifications to other systems.
type ResultPublisher interface {
	PublishResults(ctx context.Context, batchID uuid.UUID, results []models.ClassificationResult) error
}

// BatchService classifies a list of URLs with bounded concurrency.
type BatchService struct {
	fetcher   MetadataFetcher
	decider   Decider
	validator *validation.Validator
	metrics   *metrics.Metrics
	cache     MetadataCache
	publisher ResultPublisher
	workers   int

	publishTimeout time.Duration
	publishing     sync.WaitGroup
}

// NewBatchService creates a new BatchService instance.
func NewBatchService(fetcher MetadataFetcher, decider Decider, validator *validation.Validator, workers int, m *metrics.Metrics) *BatchService {
	if workers < 1 {
		workers = DefaultWorkers
	}
	if validator == nil {
		validator = validation.New(0)
	}
	return &BatchService{
		fetcher:   fetcher,
		decider:   decider,
		validator: validator,
		metrics:   m,
		workers:   workers,

		publishTimeout: DefaultPublishTimeout,
	}
}

// SetCache enables metadata caching.
func (bs *BatchService) SetCache(cache MetadataCache) {
	bs.cache = cache
}

// SetPublisher enables publishing of results after each batch.
func (bs *BatchService) SetPublisher(publisher ResultPublisher) {
	bs.publisher = publisher
}

// ProcessBatch classifies every URL and returns the results in input order.
// Per-URL failures never fail the batch: extraction errors become sentinel
// metadata and classifier errors become CategoryOther. Results are published
// in the background; see Wait.
func (bs *BatchService) ProcessBatch(ctx context.Context, urls []string) ([]models.ClassificationResult, error) {
	if err := bs.validator.ValidateURLs(urls); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	batchID := uuid.New()
	start := time.Now()
	log := logger.L().With(zap.String("batchId", batchID.String()))

	log.Info("Batch processing started",
		zap.Int("urls", len(urls)),
		zap.Int("workers", bs.workers),
	)

	// Each goroutine owns exactly one slot, so no locking is needed.
	results := make([]models.ClassificationResult, len(urls))

	var g errgroup.Group
	g.SetLimit(bs.workers)
	for i, u := range urls {
		g.Go(func() error {
			results[i] = bs.processOne(ctx, log, u)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		log.Warn("Batch aborted", zap.Error(err))
		return nil, &ProcessingError{Message: "batch aborted", Cause: err}
	}

	harmful := 0
	for _, r := range results {
		bs.metrics.ObserveResult(r)
		if r.Classification == models.ClassificationHarmful {
			harmful++
		}
	}
	elapsed := time.Since(start)
	bs.metrics.ObserveBatch(len(urls), elapsed)

	if bs.publisher != nil {
		bs.publishAsync(ctx, log, batchID, slices.Clone(results))
	}

	log.Info("Batch processing completed",
		zap.Int("harmful", harmful),
		zap.Int("safe", len(results)-harmful),
		zap.Duration("elapsed", elapsed),
	)
	log.Debug("Batch results", zap.Any("results", results))

	return results, nil
}

// publishAsync hands results to the publisher without holding up the
// response. The publish outlives the request context but not publishTimeout.
func (bs *BatchService) publishAsync(ctx context.Context, log *zap.Logger, batchID uuid.UUID, results []models.ClassificationResult) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bs.publishTimeout)

	bs.publishing.Add(1)
	go func() {
		defer bs.publishing.Done()
		defer cancel()

		if err := bs.publisher.PublishResults(pubCtx, batchID, results); err != nil {
			log.Error("Failed to publish classification results", zap.Error(err))
		}
	}()
}

// Wait blocks until every background publish has finished.
func (bs *BatchService) Wait() {
	bs.publishing.Wait()
}

func (bs *BatchService) processOne(ctx context.Context, log *zap.Logger, videoURL string) models.ClassificationResult {
	meta := bs.loadMetadata(ctx, log, videoURL)
	result := bs.decider.Decide(ctx, meta)

	log.Debug("Video classified",
		zap.String("url", videoURL),
		zap.String("category", string(result.Category)),
		zap.String("classification", string(result.Classification)),
	)
	return result
}

// loadMetadata consults the cache, then the extractor. Failed extractions
// yield sentinel metadata, which is never cached.
func (bs *BatchService) loadMetadata(ctx context.Context, log *zap.Logger, videoURL string) models.VideoMetadata {
	if bs.cache != nil {
		meta, ok, err := bs.cache.Get(ctx, videoURL)
		if err != nil {
			log.Warn("Metadata cache lookup failed", zap.Error(err), zap.String("url", videoURL))
		}
		if ok {
			bs.metrics.CacheHit()
			return meta
		}
		bs.metrics.CacheMiss()
	}

	meta, err := bs.fetcher.FetchMetadata(ctx, videoURL)
	if err != nil {
		bs.metrics.ExtractionFailed()
		log.Warn("Metadata extraction failed, using sentinel metadata",
			zap.Error(err),
			zap.String("url", videoURL),
			zap.Bool("unavailable", errors.Is(err, youtube.ErrVideoUnavailable)),
		)
		return models.SentinelMetadata(videoURL)
	}
	meta.URL = videoURL

	if bs.cache != nil && !meta.IsSentinel() {
		if err := bs.cache.Set(ctx, meta); err != nil {
			log.Warn("Metadata cache store failed", zap.Error(err), zap.String("url", videoURL))
		}
	}

	return meta
}
