package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractrisk/internal/app/domains/entity/etrisk"
)

type chatRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newServer(t *testing.T, status int, body string, seen *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func request() *etrisk.ClassifyRequest {
	return &etrisk.ClassifyRequest{
		CriterionID: "pricing",
		Messages: []etrisk.ChatMessage{
			{Role: etrisk.RoleSystem, Content: "You are a strategic reasoner."},
			{Role: etrisk.RoleUser, Content: "Analyze ..."},
		},
		MaxTokens: 100,
	}
}

func TestOpenAIClassifier_Classify(t *testing.T) {
	var seen chatRequest
	srv := newServer(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "  HIGH RISK. "}, "finish_reason": "stop"}]
	}`, &seen)

	c, err := NewOpenAIClassifier(Config{BaseURL: srv.URL, APIKey: "sk-test", Model: "gpt-4o-mini"})
	require.NoError(t, err)

	reply, err := c.Classify(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, "  HIGH RISK. ", reply)

	assert.Equal(t, "gpt-4o-mini", seen.Model)
	assert.Equal(t, 100, seen.MaxTokens)
	require.Len(t, seen.Messages, 2)
	assert.Equal(t, "system", seen.Messages[0].Role)
	assert.Equal(t, "user", seen.Messages[1].Role)
	assert.Equal(t, "Analyze ...", seen.Messages[1].Content)
}

func TestOpenAIClassifier_NoChoices(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"id": "x", "choices": []}`, nil)

	c, err := NewOpenAIClassifier(Config{BaseURL: srv.URL, APIKey: "sk-test", Model: "m"})
	require.NoError(t, err)

	_, err = c.Classify(context.Background(), request())
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestOpenAIClassifier_BlockedReply(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"content filter with refusal", `{"id": "x", "choices": [{"index": 0,
			"message": {"role": "assistant", "content": null, "refusal": "I can't help with that"},
			"finish_reason": "content_filter"}]}`},
		{"content filter only", `{"id": "x", "choices": [{"index": 0,
			"message": {"role": "assistant", "content": null}, "finish_reason": "content_filter"}]}`},
		{"refusal with stop", `{"id": "x", "choices": [{"index": 0,
			"message": {"role": "assistant", "refusal": "no"}, "finish_reason": "stop"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, http.StatusOK, tt.body, nil)
			c, err := NewOpenAIClassifier(Config{BaseURL: srv.URL, APIKey: "sk-test", Model: "m"})
			require.NoError(t, err)

			_, err = c.Classify(context.Background(), request())
			assert.ErrorIs(t, err, ErrReplyBlocked)
		})
	}
}

func TestOpenAIClassifier_EmptyReplyIsNotAnError(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"id": "x", "choices": [{"index": 0,
		"message": {"role": "assistant", "content": ""}, "finish_reason": "stop"}]}`, nil)
	c, err := NewOpenAIClassifier(Config{BaseURL: srv.URL, APIKey: "sk-test", Model: "m"})
	require.NoError(t, err)

	reply, err := c.Classify(context.Background(), request())
	require.NoError(t, err)
	assert.Empty(t, reply)
}

func TestOpenAIClassifier_HTTPError(t *testing.T) {
	srv := newServer(t, http.StatusTooManyRequests,
		`{"error": {"message": "rate limit", "type": "requests", "code": "rate_limit_exceeded"}}`, nil)

	c, err := NewOpenAIClassifier(Config{BaseURL: srv.URL, APIKey: "sk-test", Model: "m"})
	require.NoError(t, err)

	_, err = c.Classify(context.Background(), request())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai chat completion failed")
}

func TestNew(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "bard", APIKey: "k"})
	assert.Error(t, err)

	_, err = New(context.Background(), Config{Provider: ProviderOpenAI})
	assert.Error(t, err, "api key required")

	c, err := New(context.Background(), Config{Provider: ProviderOpenAI, APIKey: "k", Model: "m"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClassifier{}, c)
}
