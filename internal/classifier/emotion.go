package classifier

import (
	"context"
	"strings"

	"github.com/ad-tracker/video-harm-classifier-go/internal/models"
	"github.com/ad-tracker/video-harm-classifier-go/pkg/logger"
	"go.uber.org/zap"
)

// DefaultThreshold is the minimum emotion score considered by the adapter.
const DefaultThreshold = 0.4

// DefaultEmotionCategories maps every label emitted by the emotion model to a
// category. Labels missing from the table are treated as CategoryOther.
var DefaultEmotionCategories = map[string]models.Category{
	"sadness":       models.CategoryEmotionalDistress,
	"fear":          models.CategoryEmotionalDistress,
	"guilt":         models.CategoryEmotionalDistress,
	"embarrassment": models.CategoryEmotionalDistress,
	"anger":         models.CategoryAbuse,
	"disgust":       models.CategoryAbuse,
	"joy":           models.CategoryOther,
	"love":          models.CategoryOther,
	"surprise":      models.CategoryOther,
	"pride":         models.CategoryOther,
	"neutral":       models.CategoryOther,
}

// Scorer returns per-emotion scores for text, in the model's output order.
// Scores are independent and need not sum to 1.
type Scorer interface {
	Score(ctx context.Context, text string) ([]models.EmotionScore, error)
}

// EmotionAdapter turns emotion scores into a Category.
type EmotionAdapter struct {
	scorer     Scorer
	categories map[string]models.Category
	threshold  float64
	onError    func(error)
}

// EmotionOption customizes an EmotionAdapter.
type EmotionOption func(*EmotionAdapter)

// WithCategories replaces the emotion to category table.
func WithCategories(table map[string]models.Category) EmotionOption {
	return func(a *EmotionAdapter) {
		copied := make(map[string]models.Category, len(table))
		for k, v := range table {
			copied[strings.ToLower(k)] = v
		}
		a.categories = copied
	}
}

// WithErrorHook is called with every scorer failure, after it is logged.
func WithErrorHook(fn func(error)) EmotionOption {
	return func(a *EmotionAdapter) {
		a.onError = fn
	}
}

// NewEmotionAdapter creates an adapter around scorer. A threshold outside
// [0, 1] is logged and replaced by DefaultThreshold.
func NewEmotionAdapter(scorer Scorer, threshold float64, opts ...EmotionOption) *EmotionAdapter {
	if threshold < 0 || threshold > 1 {
		logger.L().Warn("Emotion threshold out of range, using default",
			zap.Float64("threshold", threshold),
			zap.Float64("default", DefaultThreshold),
		)
		threshold = DefaultThreshold
	}
	a := &EmotionAdapter{
		scorer:     scorer,
		categories: DefaultEmotionCategories,
		threshold:  threshold,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Classify returns the category of the first emotion, in model order, that
// scores at least the threshold and maps to a harmful category. Scorer
// failures are logged and yield CategoryOther.
func (a *EmotionAdapter) Classify(ctx context.Context, text string) models.Category {
	scores, err := a.scorer.Score(ctx, text)
	if err != nil {
		logger.L().Warn("Emotion classifier failed, treating text as benign",
			zap.Error(err),
			zap.Int("textLength", len(text)),
		)
		if a.onError != nil {
			a.onError(err)
		}
		return models.CategoryOther
	}

	for _, s := range scores {
		if s.Score < a.threshold {
			continue
		}
		category, ok := a.categories[strings.ToLower(s.Label)]
		if ok && category.IsHarmful() {
			return category
		}
	}
	return models.CategoryOther
}
