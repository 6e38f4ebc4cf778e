package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/ad-tracker/video-harm-classifier-go/internal/models"
	"github.com/ad-tracker/video-harm-classifier-go/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type mockScorer struct {
	mock.Mock
}

func (m *mockScorer) Score(ctx context.Context, text string) ([]models.EmotionScore, error) {
	args := m.Called(ctx, text)
	scores, _ := args.Get(0).([]models.EmotionScore)
	return scores, args.Error(1)
}

type staticScorer []models.EmotionScore

func (s staticScorer) Score(context.Context, string) ([]models.EmotionScore, error) {
	return s, nil
}

func TestEmotionAdapter_Classify(t *testing.T) {
	tests := []struct {
		name      string
		scores    []models.EmotionScore
		threshold float64
		want      models.Category
	}{
		{
			name:      "joy above threshold maps to other",
			scores:    []models.EmotionScore{{Label: "joy", Score: 0.9}, {Label: "sadness", Score: 0.1}},
			threshold: 0.4,
			want:      models.CategoryOther,
		},
		{
			name:      "sadness above threshold",
			scores:    []models.EmotionScore{{Label: "joy", Score: 0.2}, {Label: "sadness", Score: 0.7}},
			threshold: 0.4,
			want:      models.CategoryEmotionalDistress,
		},
		{
			name:      "first harmful in model order wins over higher score",
			scores:    []models.EmotionScore{{Label: "fear", Score: 0.5}, {Label: "anger", Score: 0.95}},
			threshold: 0.4,
			want:      models.CategoryEmotionalDistress,
		},
		{
			name:      "benign labels are skipped, not terminal",
			scores:    []models.EmotionScore{{Label: "neutral", Score: 0.8}, {Label: "disgust", Score: 0.6}},
			threshold: 0.4,
			want:      models.CategoryAbuse,
		},
		{
			name:      "score equal to threshold passes",
			scores:    []models.EmotionScore{{Label: "anger", Score: 0.4}},
			threshold: 0.4,
			want:      models.CategoryAbuse,
		},
		{
			name:      "all below threshold",
			scores:    []models.EmotionScore{{Label: "anger", Score: 0.39}, {Label: "fear", Score: 0.1}},
			threshold: 0.4,
			want:      models.CategoryOther,
		},
		{
			name:      "labels are case-insensitive",
			scores:    []models.EmotionScore{{Label: "SADNESS", Score: 0.8}},
			threshold: 0.4,
			want:      models.CategoryEmotionalDistress,
		},
		{
			name:      "unknown label defaults to other",
			scores:    []models.EmotionScore{{Label: "boredom", Score: 0.99}},
			threshold: 0.4,
			want:      models.CategoryOther,
		},
		{
			name:      "empty output",
			threshold: 0.4,
			want:      models.CategoryOther,
		},
		{
			name:      "invalid threshold falls back to default",
			scores:    []models.EmotionScore{{Label: "fear", Score: 0.45}},
			threshold: 7,
			want:      models.CategoryEmotionalDistress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewEmotionAdapter(staticScorer(tt.scores), tt.threshold)
			assert.Equal(t, tt.want, a.Classify(context.Background(), "some text"))
		})
	}
}

func TestEmotionAdapter_ScorerErrorFailsOpen(t *testing.T) {
	scorer := new(mockScorer)
	scorer.On("Score", mock.Anything, "text").Return(nil, errors.New("model unavailable"))

	var hooked error
	a := NewEmotionAdapter(scorer, DefaultThreshold, WithErrorHook(func(err error) { hooked = err }))

	assert.Equal(t, models.CategoryOther, a.Classify(context.Background(), "text"))
	assert.EqualError(t, hooked, "model unavailable")
	scorer.AssertExpectations(t)
}

func TestEmotionAdapter_WithCategories(t *testing.T) {
	a := NewEmotionAdapter(
		staticScorer{{Label: "joy", Score: 0.9}},
		DefaultThreshold,
		WithCategories(map[string]models.Category{"Joy": models.CategoryAdult}),
	)

	assert.Equal(t, models.CategoryAdult, a.Classify(context.Background(), "x"))
}

func TestDefaultEmotionCategories_ModelVocabulary(t *testing.T) {
	// Labels emitted by j-hartmann/emotion-english-distilroberta-base.
	for _, label := range []string{"anger", "disgust", "fear", "joy", "neutral", "sadness", "surprise"} {
		_, ok := DefaultEmotionCategories[label]
		assert.True(t, ok, "missing mapping for %q", label)
	}
}

func TestNewEmotionAdapter_InvalidThresholdIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })

	for _, threshold := range []float64{-0.1, 1.5} {
		a := NewEmotionAdapter(staticScorer{}, threshold)
		assert.Equal(t, DefaultThreshold, a.threshold)
	}

	entries := logs.FilterMessage("Emotion threshold out of range, using default").All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, 1.5, entries[1].ContextMap()["threshold"])
	}

	NewEmotionAdapter(staticScorer{}, 0.7)
	assert.Equal(t, 2, logs.Len(), "a valid threshold must not log")
}
