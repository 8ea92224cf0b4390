// internal/render/factory.go
package render

import (
	"context"
	"fmt"
	"net/http"

	"scheme-assistant/internal/common/config"
)

// NewGenerator builds the backend named by the renderer configuration. client
// may be nil.
func NewGenerator(ctx context.Context, cfg config.RendererConfig, client *http.Client) (Generator, error) {
	switch cfg.Provider {
	case config.RendererGemini:
		return NewGeminiGenerator(ctx, GeminiConfig{
			APIKey:          cfg.APIKey,
			BaseURL:         cfg.BaseURL,
			Model:           cfg.Model,
			MaxOutputTokens: cfg.MaxOutputTokens,
			Temperature:     cfg.Temperature,
			TopP:            cfg.TopP,
			HTTPClient:      client,
		})
	case config.RendererGenAIHTTP:
		return NewHTTPGenerator(HTTPConfig{
			BaseURL:         cfg.BaseURL,
			APIKey:          cfg.APIKey,
			MaxRetries:      cfg.MaxRetries,
			MaxOutputTokens: cfg.MaxOutputTokens,
			Temperature:     cfg.Temperature,
			TopP:            cfg.TopP,
		}, client), nil
	default:
		return nil, fmt.Errorf("unknown renderer provider %q", cfg.Provider)
	}
}
