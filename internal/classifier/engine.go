package classifier

import (
	"context"
	"strings"

	"github.com/ad-tracker/video-harm-classifier-go/internal/models"
)

const (
	// MaxTextLength bounds the text fed to the matchers, in characters.
	MaxTextLength = 1000

	fixedConfidence = 1.0
)

// Engine produces the final verdict for one video.
type Engine struct {
	keywords *KeywordMatcher
	emotions *EmotionAdapter
}

// NewEngine wires the keyword matcher and emotion adapter together.
func NewEngine(keywords *KeywordMatcher, emotions *EmotionAdapter) *Engine {
	return &Engine{
		keywords: keywords,
		emotions: emotions,
	}
}

// Decide classifies meta. Sentinel metadata is presumed adult content without
// consulting either matcher. Otherwise a keyword match wins and the emotion
// adapter is only asked when no keyword fired.
func (e *Engine) Decide(ctx context.Context, meta models.VideoMetadata) models.ClassificationResult {
	if meta.IsSentinel() {
		return newResult(meta.URL, models.CategoryAdult)
	}

	text := NormalizeText(meta)

	category, ok := e.keywords.Match(text)
	if !ok {
		category = e.emotions.Classify(ctx, text)
	}

	return newResult(meta.URL, category)
}

// NormalizeText lower-cases "title description tags..." and truncates it to
// MaxTextLength characters.
func NormalizeText(meta models.VideoMetadata) string {
	full := strings.ToLower(meta.Title + " " + meta.Description + " " + strings.Join(meta.Tags, " "))
	return truncate(full, MaxTextLength)
}

func truncate(s string, maxChars int) string {
	if len(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}

func newResult(url string, category models.Category) models.ClassificationResult {
	return models.ClassificationResult{
		URL:            url,
		Label:          category,
		Confidence:     fixedConfidence,
		Classification: models.ClassificationFor(category),
		Category:       category,
	}
}
