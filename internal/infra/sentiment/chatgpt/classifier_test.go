package chatgpt

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	llm "github.com/yanqian/mood-journal/internal/infra/llm/chatgpt"
)

type stubClient struct {
	content string
	err     error
	last    llm.ChatCompletionRequest
}

func (s *stubClient) CreateChatCompletion(_ context.Context, req llm.ChatCompletionRequest) (llm.ChatCompletionResponse, error) {
	s.last = req
	var resp llm.ChatCompletionResponse
	if s.err != nil {
		return resp, s.err
	}
	resp.Choices = append(resp.Choices, struct {
		Message llm.Message `json:"message"`
	}{Message: llm.Message{Role: "assistant", Content: s.content}})
	return resp, nil
}

func TestClassifierParsesScores(t *testing.T) {
	client := &stubClient{content: "```json\n{\"joy\":0.7,\"sadness\":0.1,\"anger\":0,\"fear\":0.05,\"surprise\":0.15}\n```"}
	c := NewClassifier(Config{MaxInputChars: 4}, client)

	scores, err := c.Classify(context.Background(), "sunny day")
	require.NoError(t, err)
	require.Equal(t, 0.7, scores.Joy)
	require.Equal(t, 0.15, scores.Surprise)
	require.Equal(t, "gpt-4o-mini", client.last.Model)
	require.Equal(t, "sunn", client.last.Messages[1].Content)
	require.Equal(t, "json_object", client.last.ResponseFormat.Type)
}

func TestClassifierRejectsBadOutput(t *testing.T) {
	c := NewClassifier(Config{Model: "m"}, &stubClient{content: "I feel happy"})
	_, err := c.Classify(context.Background(), "x")
	require.Error(t, err)

	c = NewClassifier(Config{Model: "m"}, &stubClient{content: `{"joy":3}`})
	_, err = c.Classify(context.Background(), "x")
	require.Error(t, err)

	c = NewClassifier(Config{Model: "m"}, &stubClient{err: errors.New("boom")})
	_, err = c.Classify(context.Background(), "x")
	require.EqualError(t, err, "boom")
}
