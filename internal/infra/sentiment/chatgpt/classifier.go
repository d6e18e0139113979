// Package chatgpt classifies emotions by prompting a chat completion model.
package chatgpt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yanqian/mood-journal/internal/domain/emotion"
	"github.com/yanqian/mood-journal/internal/domain/journal"
	llm "github.com/yanqian/mood-journal/internal/infra/llm/chatgpt"
)

const systemPrompt = `You rate the emotions expressed in a personal journal entry.
Reply with a single JSON object and nothing else, with numeric keys joy, sadness, anger, fear and surprise.
Each value is a probability between 0 and 1.`

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (llm.ChatCompletionResponse, error)
}

// Config selects the model.
type Config struct {
	Model         string
	Temperature   float32
	MaxInputChars int
}

// Classifier adapts the chat client to journal.Classifier.
type Classifier struct {
	cfg    Config
	client chatClient
}

// NewClassifier constructs the adapter.
func NewClassifier(cfg Config, client chatClient) *Classifier {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	return &Classifier{cfg: cfg, client: client}
}

// Classify implements journal.Classifier.
func (c *Classifier) Classify(ctx context.Context, text string) (emotion.Scores, error) {
	if c.cfg.MaxInputChars > 0 {
		if runes := []rune(text); len(runes) > c.cfg.MaxInputChars {
			text = string(runes[:c.cfg.MaxInputChars])
		}
	}
	resp, err := c.client.CreateChatCompletion(ctx, llm.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		ResponseFormat: &llm.ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return emotion.Scores{}, err
	}
	if len(resp.Choices) == 0 {
		return emotion.Scores{}, errors.New("chat completion returned no choices")
	}
	return parseScores(resp.Choices[0].Message.Content)
}

func parseScores(content string) (emotion.Scores, error) {
	raw := strings.TrimSpace(content)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var scores emotion.Scores
	if err := json.Unmarshal([]byte(raw), &scores); err != nil {
		return emotion.Scores{}, fmt.Errorf("decode emotion scores: %w", err)
	}
	if err := scores.Validate(); err != nil {
		return emotion.Scores{}, err
	}
	return scores, nil
}

var _ journal.Classifier = (*Classifier)(nil)
