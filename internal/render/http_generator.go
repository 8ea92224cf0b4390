// internal/render/http_generator.go
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPConfig configures the generic generation service backend.
type HTTPConfig struct {
	BaseURL         string
	APIKey          string
	// MaxRetries re-sends a failed request within one Generate call. Zero,
	// the default, sends once and lets the caller fall back.
	MaxRetries      int
	MaxOutputTokens int
	Temperature     float64
	TopP            float64
}

// HTTPGenerator posts prompts to {BaseURL}/api/ai/generate.
type HTTPGenerator struct {
	config HTTPConfig
	client *http.Client
}

func NewHTTPGenerator(cfg HTTPConfig, client *http.Client) *HTTPGenerator {
	if client == nil {
		// deadlines come from the caller's context
		client = &http.Client{}
	}
	return &HTTPGenerator{config: cfg, client: client}
}

func (g *HTTPGenerator) Name() string { return "genai_http" }

type generateRequest struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

type generateResponse struct {
	Text string `json:"text"`
}

func (g *HTTPGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Prompt:      prompt,
		MaxTokens:   g.config.MaxOutputTokens,
		Temperature: g.config.Temperature,
		TopP:        g.config.TopP,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	var lastErr error
	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ErrRenderTimeout
			}
		}

		text, err := g.do(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", ErrRenderTimeout
		}
	}
	return "", fmt.Errorf("%w: %v", ErrRenderFailed, lastErr)
}

func (g *HTTPGenerator) do(ctx context.Context, body []byte) (string, error) {
	url := strings.TrimRight(g.config.BaseURL, "/") + "/api/ai/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.config.APIKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode error: %v", err)
	}
	return out.Text, nil
}
