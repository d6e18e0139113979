// Package huggingface classifies text with a hosted Hugging Face emotion model.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/yanqian/mood-journal/internal/domain/emotion"
	"github.com/yanqian/mood-journal/internal/domain/journal"
)

const (
	defaultBaseURL       = "https://api-inference.huggingface.co"
	defaultModel         = "j-hartmann/emotion-english-distilroberta-base"
	defaultTimeout       = 15 * time.Second
	defaultMaxInputChars = 2000
)

// Config configures the inference endpoint.
type Config struct {
	APIKey        string
	BaseURL       string
	Model         string
	Timeout       time.Duration
	MaxInputChars int
}

// Client calls the inference API.
type Client struct {
	apiKey        string
	endpoint      string
	maxInputChars int
	httpClient    *http.Client
}

// NewClient builds an API client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("hugging face api key cannot be empty")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.Trim(strings.TrimSpace(cfg.Model), "/")
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxChars := cfg.MaxInputChars
	if maxChars <= 0 {
		maxChars = defaultMaxInputChars
	}
	return &Client{
		apiKey:        cfg.APIKey,
		endpoint:      baseURL + "/models/" + model,
		maxInputChars: maxChars,
		httpClient:    &http.Client{Timeout: timeout},
	}, nil
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify implements journal.Classifier.
func (c *Client) Classify(ctx context.Context, text string) (emotion.Scores, error) {
	payload, err := json.Marshal(inferenceRequest{Inputs: truncate(text, c.maxInputChars)})
	if err != nil {
		return emotion.Scores{}, fmt.Errorf("encode inference request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return emotion.Scores{}, fmt.Errorf("build inference request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return emotion.Scores{}, fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return emotion.Scores{}, fmt.Errorf("inference request error: status=%d body=%s", resp.StatusCode, string(body))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return emotion.Scores{}, fmt.Errorf("read inference response: %w", err)
	}
	labels, err := decodeLabels(body)
	if err != nil {
		return emotion.Scores{}, err
	}
	return toScores(labels), nil
}

// decodeLabels accepts the batched [[...]] shape and the flat [...] shape.
func decodeLabels(body []byte) ([]labelScore, error) {
	var nested [][]labelScore
	if err := json.Unmarshal(body, &nested); err == nil {
		if len(nested) == 0 || len(nested[0]) == 0 {
			return nil, errors.New("inference response has no labels")
		}
		return nested[0], nil
	}
	var flat []labelScore
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("decode inference response: %w", err)
	}
	if len(flat) == 0 {
		return nil, errors.New("inference response has no labels")
	}
	return flat, nil
}

func toScores(labels []labelScore) emotion.Scores {
	var scores emotion.Scores
	for _, l := range labels {
		scores = scores.Set(emotion.Emotion(strings.ToLower(strings.TrimSpace(l.Label))), clamp(l.Score))
	}
	return scores
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

var _ journal.Classifier = (*Client)(nil)
