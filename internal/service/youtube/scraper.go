package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	ytdl "github.com/kkdai/youtube/v2"

	"github.com/ad-tracker/video-harm-classifier-go/internal/models"
)

// videoGetter is the subset of *ytdl.Client the scraper needs.
type videoGetter interface {
	GetVideoContext(ctx context.Context, url string) (*ytdl.Video, error)
}

// Scraper reads metadata from the public watch page. It needs no API key
// but cannot see tags, likes or comment counts.
type Scraper struct {
	client videoGetter
}

// NewScraper creates a scraper whose HTTP requests time out after timeout.
func NewScraper(timeout time.Duration) *Scraper {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Scraper{
		client: &ytdl.Client{
			HTTPClient: &http.Client{Timeout: timeout},
		},
	}
}

// FetchMetadata downloads and maps the watch page metadata for videoURL.
func (s *Scraper) FetchMetadata(ctx context.Context, videoURL string) (models.VideoMetadata, error) {
	video, err := s.client.GetVideoContext(ctx, videoURL)
	if err != nil {
		if isUnavailable(err) {
			return models.VideoMetadata{}, fmt.Errorf("fetching %s: %w: %w", videoURL, ErrVideoUnavailable, err)
		}
		return models.VideoMetadata{}, fmt.Errorf("fetching %s: %w", videoURL, err)
	}

	meta := models.VideoMetadata{
		URL:           videoURL,
		Title:         video.Title,
		Description:   video.Description,
		Tags:          []string{},
		CategoryHints: []string{},
		ViewCount:     int64(video.Views),
	}
	if meta.Title == "" {
		meta.Title = models.SentinelTitle
	}

	return meta, nil
}

func isUnavailable(err error) bool {
	return errors.Is(err, ytdl.ErrLoginRequired) ||
		errors.Is(err, ytdl.ErrVideoPrivate) ||
		errors.Is(err, ytdl.ErrNotPlayableInEmbed)
}
