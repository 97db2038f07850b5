package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaudeClient_Complete(t *testing.T) {
	t.Run("successful completion", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
			assert.Equal(t, claudeAPIVersion, r.Header.Get("anthropic-version"))

			var req claudeRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "claude-test", req.Model)
			assert.Equal(t, "system prompt", req.System)
			require.Len(t, req.Messages, 1)
			assert.Equal(t, "user", req.Messages[0].Role)
			assert.Equal(t, "user prompt", req.Messages[0].Content)

			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"id":"msg_123","type":"message","role":"assistant","content":[{"type":"thinking","text":"hmm"},{"type":"text","text":"{\"sequences\":"},{"type":"text","text":"[]}"}],"stop_reason":"end_turn"}`)
		}))
		defer server.Close()

		client := NewClaudeClient(ClaudeConfig{
			APIKey:  "test-api-key",
			Model:   "claude-test",
			BaseURL: server.URL,
		})

		text, err := client.Complete(context.Background(), "system prompt", "user prompt")
		require.NoError(t, err)
		assert.Equal(t, `{"sequences":[]}`, text)
	})

	t.Run("handles API error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
		}))
		defer server.Close()

		client := NewClaudeClient(ClaudeConfig{APIKey: "invalid", BaseURL: server.URL})
		_, err := client.Complete(context.Background(), "system", "user")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
		assert.Contains(t, err.Error(), "authentication_error: invalid x-api-key")
	})

	t.Run("handles non-JSON error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			io.WriteString(w, "upstream down\n")
		}))
		defer server.Close()

		client := NewClaudeClient(ClaudeConfig{APIKey: "k", BaseURL: server.URL})
		_, err := client.Complete(context.Background(), "system", "user")
		assert.EqualError(t, err, "API error (status 502): upstream down")
	})

	t.Run("handles empty content", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"id":"msg_1","type":"message","content":[],"stop_reason":"max_tokens"}`)
		}))
		defer server.Close()

		client := NewClaudeClient(ClaudeConfig{APIKey: "k", BaseURL: server.URL})
		_, err := client.Complete(context.Background(), "system", "user")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "empty response")
		assert.Contains(t, err.Error(), "max_tokens")
	})
}

func TestNewClaudeClient(t *testing.T) {
	t.Run("uses defaults", func(t *testing.T) {
		client := NewClaudeClient(ClaudeConfig{APIKey: "test"})
		assert.Equal(t, defaultClaudeModel, client.Model())
		assert.Equal(t, claudeAPIURL, client.apiURL)
		assert.Equal(t, defaultTimeout, client.httpClient.Timeout)
	})

	t.Run("uses custom model", func(t *testing.T) {
		client := NewClaudeClient(ClaudeConfig{
			APIKey: "test",
			Model:  "claude-3-opus",
		})
		assert.Equal(t, "claude-3-opus", client.Model())
	})
}

func TestGeminiClient_Complete(t *testing.T) {
	t.Run("successful completion", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-test:generateContent"), r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), "system prompt")
			assert.Contains(t, string(body), "user prompt")
			assert.Contains(t, string(body), "application/json")

			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"sequences\":"},{"text":"[]}"}]},"finishReason":"STOP"}]}`)
		}))
		defer server.Close()

		client, err := NewGeminiClient(context.Background(), GeminiConfig{
			APIKey:  "test-key",
			Model:   "gemini-test",
			BaseURL: server.URL + "/",
		})
		require.NoError(t, err)

		text, err := client.Complete(context.Background(), "system prompt", "user prompt")
		require.NoError(t, err)
		assert.Equal(t, `{"sequences":[]}`, text)
	})

	t.Run("rejected credential", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":{"code":400,"message":"API key not valid.","status":"INVALID_ARGUMENT"}}`)
		}))
		defer server.Close()

		client, err := NewGeminiClient(context.Background(), GeminiConfig{
			APIKey:  "bad-key",
			BaseURL: server.URL + "/",
		})
		require.NoError(t, err)

		_, err = client.Complete(context.Background(), "system", "user")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "generate content")
	})

	t.Run("no candidates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"candidates":[]}`)
		}))
		defer server.Close()

		client, err := NewGeminiClient(context.Background(), GeminiConfig{
			APIKey:  "k",
			BaseURL: server.URL + "/",
		})
		require.NoError(t, err)

		_, err = client.Complete(context.Background(), "system", "user")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "empty response")
	})
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to gemini", func(t *testing.T) {
		c, err := New(ctx, Config{APIKey: "k"})
		require.NoError(t, err)
		g, ok := c.(*GeminiClient)
		require.True(t, ok)
		assert.Equal(t, defaultGeminiModel, g.Model())
	})

	t.Run("claude", func(t *testing.T) {
		c, err := New(ctx, Config{Provider: "Claude", APIKey: "k", Model: "claude-x"})
		require.NoError(t, err)
		cl, ok := c.(*ClaudeClient)
		require.True(t, ok)
		assert.Equal(t, "claude-x", cl.Model())
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := New(ctx, Config{Provider: ProviderGemini})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "api key")
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := New(ctx, Config{Provider: "perplexity", APIKey: "k"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown provider")
	})
}

func TestDefaultModel(t *testing.T) {
	assert.Equal(t, defaultGeminiModel, DefaultModel(ProviderGemini))
	assert.Equal(t, defaultGeminiModel, DefaultModel(""))
	assert.Equal(t, defaultClaudeModel, DefaultModel(ProviderClaude))
}
