// Package models contains the data models and DTOs for the video harm classifier.
package models

import (
	"time"

	"github.com/google/uuid"
)

// SentinelTitle marks metadata that could not be extracted, typically because
// the video is age-restricted, private or otherwise unavailable.
const SentinelTitle = "Age-Restricted Video"

// Category is a harmful-content label, or CategoryOther for benign content.
type Category string

// Category constants. CategoryOther means no harmful category was detected.
const (
	CategoryViolence          Category = "violence"
	CategorySelfHarm          Category = "self-harm"
	CategoryAbuse             Category = "abuse"
	CategorySubstanceUse      Category = "substance-use"
	CategoryAdult             Category = "adult"
	CategoryEmotionalDistress Category = "emotional-distress"
	CategoryOther             Category = "other"
)

// IsHarmful reports whether the category denotes harmful content.
func (c Category) IsHarmful() bool {
	return c != CategoryOther
}

// Classification is the binary verdict derived from a Category.
type Classification string

const (
	ClassificationSafe    Classification = "SAFE"
	ClassificationHarmful Classification = "HARMFUL"
)

// ClassificationFor maps a category to its verdict.
func ClassificationFor(c Category) Classification {
	if c.IsHarmful() {
		return ClassificationHarmful
	}
	return ClassificationSafe
}

// VideoMetadata is what the extractor learned about one URL.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type VideoMetadata struct {
	URL           string   `json:"url"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Tags          []string `json:"tags"`
	CategoryHints []string `json:"category_hints"`
	ViewCount     int64    `json:"view_count"`
	LikeCount     int64    `json:"like_count"`
	CommentCount  int64    `json:"comment_count"`
}

// SentinelMetadata is substituted when extraction fails for url.
func SentinelMetadata(url string) VideoMetadata {
	return VideoMetadata{
		URL:   url,
		Title: SentinelTitle,
	}
}

// IsSentinel reports whether m stands in for metadata that could not be fetched.
func (m VideoMetadata) IsSentinel() bool {
	return m.Title == SentinelTitle
}

// ClassificationResult is the per-URL verdict returned to clients.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ClassificationResult struct {
	URL            string         `json:"url"`
	Label          Category       `json:"label"`
	Confidence     float64        `json:"confidence"`
	Classification Classification `json:"classification"`
	Category       Category       `json:"category"`
}

// EmotionScore is one label/score pair produced by the emotion model.
type EmotionScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ClassificationEvent is published for every classified URL.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ClassificationEvent struct {
	EventID        uuid.UUID      `json:"event_id"`
	BatchID        uuid.UUID      `json:"batch_id"`
	URL            string         `json:"url"`
	Category       Category       `json:"category"`
	Classification Classification `json:"classification"`
	Confidence     float64        `json:"confidence"`
	ClassifiedAt   time.Time      `json:"classified_at"`
}

// AnalyzeBatchRequest is the body of POST /analyze_batch.
type AnalyzeBatchRequest struct {
	VideoURLs []string `json:"video_urls"`
}

// AnalyzeBatchResponse is the success body of POST /analyze_batch.
type AnalyzeBatchResponse struct {
	Results []ClassificationResult `json:"results"`
}

// ErrorResponse represents an error response.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}
