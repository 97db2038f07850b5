package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	claudeAPIURL       = "https://api.anthropic.com/v1/messages"
	claudeAPIVersion   = "2023-06-01"
	defaultClaudeModel = "claude-sonnet-4-20250514"
	maxTokens          = 8192
)

// ClaudeClient is a client for the Claude API.
type ClaudeClient struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
	model      string
}

// ClaudeConfig holds configuration for the Claude client.
type ClaudeConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// NewClaudeClient creates a new Claude API client.
func NewClaudeClient(config ClaudeConfig) *ClaudeClient {
	model := config.Model
	if model == "" {
		model = defaultClaudeModel
	}
	apiURL := config.BaseURL
	if apiURL == "" {
		apiURL = claudeAPIURL
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &ClaudeClient{
		apiKey: config.APIKey,
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		model: model,
	}
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// claudeResponse covers both the success body and the error envelope.
type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string       `json:"stop_reason"`
	Error      *claudeError `json:"error,omitempty"`
}

// text joins the text blocks of a reply, skipping tool and thinking blocks.
func (r *claudeResponse) text() string {
	var b strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// Complete sends one user turn with the given system prompt and returns the
// reply text.
func (c *ClaudeClient) Complete(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(claudeRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []claudeMessage{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", claudeAPIVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed claudeResponse
	decodeErr := json.Unmarshal(respBody, &parsed)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && parsed.Error != nil {
			return "", fmt.Errorf("API error (status %d): %s: %s", resp.StatusCode, parsed.Error.Type, parsed.Error.Message)
		}
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if decodeErr != nil {
		return "", fmt.Errorf("unmarshal response: %w", decodeErr)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("API error: %s: %s", parsed.Error.Type, parsed.Error.Message)
	}

	text := parsed.text()
	if text == "" {
		return "", fmt.Errorf("empty response from API (stop_reason %q)", parsed.StopReason)
	}
	return text, nil
}

// Model returns the model name requests are sent to.
func (c *ClaudeClient) Model() string {
	return c.model
}
