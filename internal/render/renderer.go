// internal/render/renderer.go

// Package render turns a dialogue instruction into a short utterance using a
// text generation backend. Rendering never fails the caller.
package render

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"scheme-assistant/internal/common/logger"
	"scheme-assistant/internal/common/metrics"
)

// Prompt is one rendering request from the dialogue engine.
type Prompt struct {
	Context     string
	Instruction string
	Input       string
}

// Renderer produces the text of a turn. Implementations must return a usable
// sentence even when the backend fails.
type Renderer interface {
	Render(ctx context.Context, p Prompt) string
}

// Generator is a raw text generation backend.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

var (
	ErrEmptyResponse = errors.New("RENDER_EMPTY_RESPONSE")
	ErrRenderTimeout = errors.New("RENDER_TIMEOUT")
	ErrRenderFailed  = errors.New("RENDER_FAILED")
)

// Service is the Renderer used in production: prompt framing, a per-call
// timeout, output cleanup and the apology fallback.
type Service struct {
	generator Generator
	language  Language
	timeout   time.Duration
	logger    logger.Logger
}

func NewService(gen Generator, lang Language, timeout time.Duration, log logger.Logger) *Service {
	return &Service{
		generator: gen,
		language:  lang,
		timeout:   timeout,
		logger:    log.WithFields(map[string]interface{}{"component": "renderer", "provider": gen.Name()}),
	}
}

func (s *Service) Render(ctx context.Context, p Prompt) string {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.generator.Generate(ctx, BuildPrompt(s.language, p))
	if err == nil {
		text = Clean(text)
		if text == "" {
			err = ErrEmptyResponse
		}
	}
	if err != nil {
		reason := "error"
		switch {
		case errors.Is(err, ErrEmptyResponse):
			reason = "empty"
		case errors.Is(err, ErrRenderTimeout), errors.Is(err, context.DeadlineExceeded):
			reason = "timeout"
		}
		metrics.RendererFallbacks.WithLabelValues(s.generator.Name(), reason).Inc()
		s.logger.Warn("render failed, using apology", map[string]interface{}{
			"reason": reason,
			"error":  err,
		})
		return Apology(s.language)
	}
	return text
}

var (
	markdownMarksRE  = regexp.MustCompile(`[*#]+`)
	sentenceBreakRE  = regexp.MustCompile(`([.!?])\s*`)
	whitespaceRunsRE = regexp.MustCompile(`\s+`)
)

// Clean strips markdown emphasis and headings and normalises spacing so the
// text reads well on screen and through speech synthesis.
func Clean(text string) string {
	text = markdownMarksRE.ReplaceAllString(text, "")
	text = sentenceBreakRE.ReplaceAllString(text, "$1 ")
	text = whitespaceRunsRE.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
