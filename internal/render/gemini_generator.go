// internal/render/gemini_generator.go
package render

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// GeminiConfig configures the Gemini backend.
type GeminiConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	MaxOutputTokens int
	Temperature     float64
	TopP            float64
	HTTPClient      *http.Client
}

// GeminiGenerator calls the Gemini API through the official client.
type GeminiGenerator struct {
	client *genai.Client
	model  string
	params *genai.GenerateContentConfig
}

func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig) (*GeminiGenerator, error) {
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiGenerator{
		client: client,
		model:  cfg.Model,
		params: &genai.GenerateContentConfig{
			Temperature:     genai.Ptr(float32(cfg.Temperature)),
			TopP:            genai.Ptr(float32(cfg.TopP)),
			MaxOutputTokens: int32(cfg.MaxOutputTokens),
		},
	}, nil
}

func (g *GeminiGenerator) Name() string { return "gemini" }

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.params)
	if err != nil {
		if ctx.Err() != nil {
			return "", ErrRenderTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	return resp.Text(), nil
}
