package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ad-tracker/video-harm-classifier-go/internal/models"
)

// Client scores text against a hosted text-classification model that speaks
// the Hugging Face inference protocol.
type Client struct {
	modelURL   string
	apiKey     string
	httpClient *http.Client
}

// Config holds the configuration for the inference client
type Config struct {
	ModelURL string        // e.g., "https://api-inference.huggingface.co/models/j-hartmann/emotion-english-distilroberta-base"
	APIKey   string        // Optional bearer token
	Timeout  time.Duration // Request timeout (default: 30 seconds)
}

// NewClient creates a new inference client
func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		modelURL: strings.TrimSuffix(config.ModelURL, "/"),
		apiKey:   config.APIKey,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

type inferenceRequest struct {
	Inputs  string           `json:"inputs"`
	Options inferenceOptions `json:"options"`
}

type inferenceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// Score returns every emotion label with its score, in the order the model
// emitted them.
func (c *Client) Score(ctx context.Context, text string) ([]models.EmotionScore, error) {
	reqBody, err := json.Marshal(inferenceRequest{
		Inputs:  text,
		Options: inferenceOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.modelURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request to inference API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("inference API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	scores, err := parseScores(respBody)
	if err != nil {
		return nil, err
	}

	for i := range scores {
		if scores[i].Score < 0 {
			scores[i].Score = 0
		}
		if scores[i].Score > 1 {
			scores[i].Score = 1
		}
	}

	return scores, nil
}

// parseScores accepts both the batched shape [[{label, score}]] returned for
// a single input and the flat [{label, score}] shape.
func parseScores(body []byte) ([]models.EmotionScore, error) {
	var nested [][]models.EmotionScore
	if err := json.Unmarshal(body, &nested); err == nil {
		if len(nested) == 0 {
			return nil, nil
		}
		return nested[0], nil
	}

	var flat []models.EmotionScore
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("parse inference response: %w (raw: %s)", err, truncateRaw(body))
	}
	return flat, nil
}

func truncateRaw(body []byte) string {
	const maxRaw = 256
	if len(body) > maxRaw {
		return string(body[:maxRaw]) + "..."
	}
	return string(body)
}
