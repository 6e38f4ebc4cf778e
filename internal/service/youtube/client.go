// Package youtube extracts the metadata the classifier needs from YouTube,
// either through the Data API v3 or by scraping the watch page.
package youtube

import (
	"context"
	"errors"
	"fmt"

	ytdl "github.com/kkdai/youtube/v2"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/ad-tracker/video-harm-classifier-go/internal/models"
)

// ErrVideoUnavailable is returned when a video exists but its metadata cannot
// be read: age-restricted, private, removed or region-blocked.
var ErrVideoUnavailable = errors.New("video unavailable")

// ageRestrictedRating is the contentRating.ytRating value for age-gated videos.
const ageRestrictedRating = "ytAgeRestricted"

// Client wraps the YouTube Data API v3 client
type Client struct {
	service *youtube.Service
}

// NewClient creates a new YouTube API client. Extra options are appended
// after the API key, which lets tests point the client at a fake endpoint.
func NewClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("YouTube API key is required")
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &Client{service: service}, nil
}

// FetchMetadata looks up a single video by URL.
func (c *Client) FetchMetadata(ctx context.Context, videoURL string) (models.VideoMetadata, error) {
	videoID, err := ytdl.ExtractVideoID(videoURL)
	if err != nil {
		return models.VideoMetadata{}, fmt.Errorf("extract video ID from %q: %w", videoURL, err)
	}

	response, err := c.service.Videos.
		List([]string{"snippet", "statistics", "contentDetails"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return models.VideoMetadata{}, fmt.Errorf("failed to fetch video from YouTube API: %w", err)
	}

	// Restricted and removed videos are simply absent from the response.
	if len(response.Items) == 0 {
		return models.VideoMetadata{}, fmt.Errorf("video %s: %w", videoID, ErrVideoUnavailable)
	}

	video := response.Items[0]
	if video.ContentDetails != nil && video.ContentDetails.ContentRating != nil &&
		video.ContentDetails.ContentRating.YtRating == ageRestrictedRating {
		return models.VideoMetadata{}, fmt.Errorf("video %s is age-restricted: %w", videoID, ErrVideoUnavailable)
	}

	return mapVideo(videoURL, video), nil
}

// mapVideo converts a Data API video into our metadata model
func mapVideo(videoURL string, video *youtube.Video) models.VideoMetadata {
	meta := models.VideoMetadata{
		URL:           videoURL,
		Tags:          []string{},
		CategoryHints: []string{},
	}

	if video.Snippet != nil {
		meta.Title = video.Snippet.Title
		meta.Description = video.Snippet.Description
		if video.Snippet.Tags != nil {
			meta.Tags = video.Snippet.Tags
		}
		if video.Snippet.CategoryId != "" {
			meta.CategoryHints = []string{video.Snippet.CategoryId}
		}
	}

	if video.Statistics != nil {
		meta.ViewCount = int64(video.Statistics.ViewCount)
		meta.LikeCount = int64(video.Statistics.LikeCount)
		meta.CommentCount = int64(video.Statistics.CommentCount)
	}

	if meta.Title == "" {
		meta.Title = models.SentinelTitle
	}

	return meta
}
