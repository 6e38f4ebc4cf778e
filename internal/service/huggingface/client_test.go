package huggingface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ad-tracker/video-harm-classifier-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_DefaultTimeout(t *testing.T) {
	c := NewClient(Config{ModelURL: "http://example.test/model/"})

	assert.Equal(t, "http://example.test/model", c.modelURL)
	assert.Equal(t, 30*time.Second, c.httpClient.Timeout)
}

func TestClient_Score(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    []models.EmotionScore
		wantErr bool
	}{
		{
			name:   "nested response",
			status: http.StatusOK,
			body:   `[[{"label":"joy","score":0.9},{"label":"sadness","score":0.1}]]`,
			want:   []models.EmotionScore{{Label: "joy", Score: 0.9}, {Label: "sadness", Score: 0.1}},
		},
		{
			name:   "flat response",
			status: http.StatusOK,
			body:   `[{"label":"anger","score":0.7}]`,
			want:   []models.EmotionScore{{Label: "anger", Score: 0.7}},
		},
		{
			name:   "scores are clamped",
			status: http.StatusOK,
			body:   `[[{"label":"fear","score":1.4},{"label":"joy","score":-0.2}]]`,
			want:   []models.EmotionScore{{Label: "fear", Score: 1}, {Label: "joy", Score: 0}},
		},
		{
			name:   "empty batch",
			status: http.StatusOK,
			body:   `[]`,
			want:   nil,
		},
		{
			name:    "model loading",
			status:  http.StatusServiceUnavailable,
			body:    `{"error":"Model is currently loading"}`,
			wantErr: true,
		},
		{
			name:    "garbage body",
			status:  http.StatusOK,
			body:    `{"error":"oops"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(Config{ModelURL: srv.URL})
			got, err := c.Score(context.Background(), "some text")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Score_SendsInputsAndToken(t *testing.T) {
	var gotReq inferenceRequest
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_, _ = w.Write([]byte(`[[{"label":"neutral","score":0.99}]]`))
	}))
	defer srv.Close()

	c := NewClient(Config{ModelURL: srv.URL, APIKey: "hf_secret"})
	_, err := c.Score(context.Background(), "great day we went hiking")
	require.NoError(t, err)

	assert.Equal(t, "Bearer hf_secret", gotAuth)
	assert.Equal(t, "great day we went hiking", gotReq.Inputs)
	assert.True(t, gotReq.Options.WaitForModel)
}

func TestClient_Score_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(Config{ModelURL: srv.URL}).Score(ctx, "x")
	require.Error(t, err)
}
