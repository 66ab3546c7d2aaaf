package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type generateRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction"`
	GenerationConfig  struct {
		MaxOutputTokens int `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

func newGeminiServer(t *testing.T, status int, body string, seen *generateRequest) *GeminiClassifier {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-test:generateContent"), r.URL.Path)
		assert.Equal(t, "g-test", r.Header.Get("x-goog-api-key"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c, err := NewGeminiClassifier(context.Background(), Config{
		Provider: ProviderGemini,
		BaseURL:  srv.URL,
		APIKey:   "g-test",
		Model:    "gemini-test",
	})
	require.NoError(t, err)
	return c
}

func TestGeminiClassifier_Classify(t *testing.T) {
	var seen generateRequest
	c := newGeminiServer(t, http.StatusOK, `{
		"candidates": [{"content": {"role": "model", "parts": [{"text": "High risk."}]}, "finishReason": "STOP"}]
	}`, &seen)

	reply, err := c.Classify(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, "High risk.", reply)

	// system 消息只进入 systemInstruction
	require.NotNil(t, seen.SystemInstruction)
	require.Len(t, seen.SystemInstruction.Parts, 1)
	assert.Equal(t, "You are a strategic reasoner.", seen.SystemInstruction.Parts[0].Text)

	require.Len(t, seen.Contents, 1)
	assert.Equal(t, "user", seen.Contents[0].Role)
	require.Len(t, seen.Contents[0].Parts, 1)
	assert.Equal(t, "Analyze ...", seen.Contents[0].Parts[0].Text)
	assert.Equal(t, 100, seen.GenerationConfig.MaxOutputTokens)
}

func TestGeminiClassifier_NoCandidates(t *testing.T) {
	c := newGeminiServer(t, http.StatusOK, `{"candidates": []}`, nil)

	_, err := c.Classify(context.Background(), request())
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestGeminiClassifier_Blocked(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"prompt blocked", `{"promptFeedback": {"blockReason": "SAFETY"}}`},
		{"candidate safety stop", `{"candidates": [{"finishReason": "SAFETY"}]}`},
		{"candidate without parts", `{"candidates": [{"content": {"role": "model", "parts": []}, "finishReason": "STOP"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newGeminiServer(t, http.StatusOK, tt.body, nil)

			_, err := c.Classify(context.Background(), request())
			assert.ErrorIs(t, err, ErrReplyBlocked)
		})
	}
}

func TestGeminiClassifier_HTTPError(t *testing.T) {
	c := newGeminiServer(t, http.StatusInternalServerError,
		`{"error": {"code": 500, "message": "backend unavailable", "status": "INTERNAL"}}`, nil)

	_, err := c.Classify(context.Background(), request())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini generate content failed")
}

func TestNew_Gemini(t *testing.T) {
	c, err := New(context.Background(), Config{Provider: ProviderGemini, APIKey: "k", Model: "gemini-test"})
	require.NoError(t, err)
	assert.IsType(t, &GeminiClassifier{}, c)

	_, err = New(context.Background(), Config{Provider: ProviderGemini})
	assert.Error(t, err)
}
