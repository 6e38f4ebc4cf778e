package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ad-tracker/video-harm-classifier-go/internal/models"
	"github.com/ad-tracker/video-harm-classifier-go/internal/service/quota"
	"github.com/ad-tracker/video-harm-classifier-go/internal/service/youtube"
	"github.com/ad-tracker/video-harm-classifier-go/pkg/logger"
)

// videosListCost is the quota price of one videos.list call.
const videosListCost = 1

// QuotaGuardedFetcher sends lookups to a quota-metered primary fetcher while
// quota lasts and to the fallback once the daily threshold is reached.
type QuotaGuardedFetcher struct {
	primary  MetadataFetcher
	fallback MetadataFetcher
	quota    *quota.Manager
}

// NewQuotaGuardedFetcher creates a new QuotaGuardedFetcher.
func NewQuotaGuardedFetcher(primary, fallback MetadataFetcher, manager *quota.Manager) *QuotaGuardedFetcher {
	return &QuotaGuardedFetcher{
		primary:  primary,
		fallback: fallback,
		quota:    manager,
	}
}

// FetchMetadata reserves the quota for one videos.list call before making it,
// so concurrent workers cannot spend past the threshold.
func (f *QuotaGuardedFetcher) FetchMetadata(ctx context.Context, videoURL string) (models.VideoMetadata, error) {
	ok, _, err := f.quota.Reserve(ctx, videosListCost, "videos.list")
	if err != nil {
		logger.L().Warn("Quota reservation failed, using fallback extractor", zap.Error(err))
		return f.fallback.FetchMetadata(ctx, videoURL)
	}
	if !ok {
		return f.fallback.FetchMetadata(ctx, videoURL)
	}

	meta, err := f.primary.FetchMetadata(ctx, videoURL)
	if err != nil && !errors.Is(err, youtube.ErrVideoUnavailable) && ctx.Err() == nil {
		logger.L().Debug("Primary extractor failed, retrying with fallback",
			zap.Error(err),
			zap.String("url", videoURL),
		)
		return f.fallback.FetchMetadata(ctx, videoURL)
	}
	return meta, err
}
