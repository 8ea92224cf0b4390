// internal/dialogue/engine.go

// Package dialogue drives a scheme-eligibility conversation: it folds each
// utterance into the session profile, walks the state machine and produces
// exactly one reply per turn.
package dialogue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"scheme-assistant/internal/catalog"
	"scheme-assistant/internal/common/logger"
	"scheme-assistant/internal/common/metrics"
	"scheme-assistant/internal/common/observability"
	"scheme-assistant/internal/extraction"
	"scheme-assistant/internal/models"
	"scheme-assistant/internal/render"
)

// DefaultMaxCandidates is the size of the confirmed candidate set.
const DefaultMaxCandidates = 3

// maxHops bounds the handler chain of one turn.
const maxHops = 16

type Options struct {
	Language            render.Language
	NoRecordOccupations []models.Occupation
	MaxUtteranceLength  int
	MaxCandidates       int
}

type Engine struct {
	matcher  catalog.Matcher
	renderer render.Renderer
	messages Messages
	tasks    tasks
	opts     Options
	logger   logger.Logger
	obs      *observability.Observability
	now      func() time.Time
}

func NewEngine(m catalog.Matcher, r render.Renderer, opts Options, log logger.Logger, obs *observability.Observability) *Engine {
	if opts.Language == "" {
		opts.Language = render.Telugu
	}
	if opts.MaxCandidates <= 0 {
		opts.MaxCandidates = DefaultMaxCandidates
	}
	if opts.NoRecordOccupations == nil {
		opts.NoRecordOccupations = []models.Occupation{models.OccupationStudent}
	}
	return &Engine{
		matcher:  m,
		renderer: r,
		messages: MessagesFor(opts.Language),
		tasks:    tasksFor(opts.Language),
		opts:     opts,
		logger:   log.WithFields(map[string]interface{}{"component": "dialogue"}),
		obs:      obs,
		now:      time.Now,
	}
}

func (e *Engine) Messages() Messages { return e.messages }

// Process runs one conversation turn. It never fails: renderer and catalog
// problems degrade into fixed messages.
func (e *Engine) Process(ctx context.Context, s *Session, utterance string) (string, models.Metadata) {
	start := e.now()
	ctx, span := e.obs.StartSpan(ctx, "dialogue.turn",
		attribute.String("session.id", s.ID),
		attribute.String("state.from", s.state.String()))
	defer span.End()

	utterance = e.normalise(utterance)
	s.record(models.RoleUser, utterance, start)

	collecting := s.state == CollectingRequired || s.state == CollectingOptional
	for _, c := range s.profile.Apply(extraction.All(utterance, collecting)) {
		fields := map[string]interface{}{"session_id": s.ID, "field": c.Field, "value": c.New}
		if c.Overwrite {
			fields["previous"] = c.Old
			e.logger.Info("profile field overwritten", fields)
			continue
		}
		e.logger.Debug("profile field extracted", fields)
	}

	t := &turn{ctx: ctx, sess: s, input: utterance}
	var text string
	for hop := 0; ; hop++ {
		if hop == maxHops {
			e.logger.Error("turn did not settle", map[string]interface{}{
				"session_id": s.ID,
				"state":      s.state.String(),
			})
			text = render.Apology(e.opts.Language)
			break
		}
		from := s.state
		out := from.handle(e, t)
		if out.next != from {
			metrics.DialogueTransitions.WithLabelValues(from.String(), out.next.String()).Inc()
			e.logger.Debug("state transition", map[string]interface{}{
				"session_id": s.ID,
				"from":       from.String(),
				"to":         out.next.String(),
			})
		}
		s.state = out.next
		if !out.again {
			text = out.reply
			break
		}
	}

	s.record(models.RoleAssistant, text, e.now())
	metrics.DialogueTurns.WithLabelValues(s.state.String()).Inc()
	e.obs.RecordTurn(ctx, s.state.String(), e.now().Sub(start))
	span.SetAttributes(attribute.String("state.to", s.state.String()))

	return text, e.Metadata(s)
}

// Metadata describes the session after a turn.
func (e *Engine) Metadata(s *Session) models.Metadata {
	p := s.profile.Snapshot()
	return models.Metadata{
		State:             s.state.String(),
		Profile:           p,
		HasRequiredInfo:   p.HasRequired(),
		HasSufficientInfo: p.HasSufficient(),
	}
}

func (e *Engine) normalise(utterance string) string {
	utterance = strings.TrimSpace(utterance)
	if limit := e.opts.MaxUtteranceLength; limit > 0 {
		if r := []rune(utterance); len(r) > limit {
			utterance = string(r[:limit])
		}
	}
	return utterance
}

func (e *Engine) isNoRecordOccupation(o models.Occupation) bool {
	for _, n := range e.opts.NoRecordOccupations {
		if n == o {
			return true
		}
	}
	return false
}

func (e *Engine) match(ctx context.Context, p models.Profile) []models.MatchResult {
	ctx, span := e.obs.StartSpan(ctx, "catalog.match")
	defer span.End()

	results := e.matcher.Match(ctx, p)
	metrics.CatalogMatches.Observe(float64(len(results)))
	span.SetAttributes(attribute.Int("matches", len(results)))
	e.logger.Info("catalog matched", map[string]interface{}{
		"profile": p.Fingerprint(),
		"matches": len(results),
	})
	return results
}

func (e *Engine) render(ctx context.Context, kind string, p render.Prompt) string {
	ctx, span := e.obs.StartSpan(ctx, "dialogue.render", attribute.String("kind", kind))
	defer span.End()
	return e.renderer.Render(ctx, p)
}

func (e *Engine) presentCandidates(t *turn) string {
	var b strings.Builder
	b.WriteString(profileContext(t.sess.profile.Snapshot()))
	b.WriteString("\nEligible Schemes (verified matches):\n")
	for i, c := range t.sess.candidates {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, e.messages.SchemeName(c.Scheme), c.Scheme.Benefits)
	}
	return e.render(t.ctx, "present", render.Prompt{
		Context:     b.String(),
		Instruction: e.tasks.present,
		Input:       "show schemes",
	})
}

func (e *Engine) explainScheme(t *turn, s *models.Scheme) string {
	ctx := fmt.Sprintf("Scheme: %s\nDescription: %s\nBenefits: %s\nCategory: %s\n",
		e.messages.SchemeName(s), s.Description, s.Benefits, s.Category)
	return e.render(t.ctx, "explain", render.Prompt{
		Context:     ctx,
		Instruction: e.tasks.explain,
		Input:       t.input,
	})
}

func (e *Engine) answerQuestion(t *turn) string {
	var b strings.Builder
	b.WriteString(profileContext(t.sess.profile.Snapshot()))
	b.WriteString("\nEligible Schemes:\n")
	for _, c := range t.sess.candidates {
		fmt.Fprintf(&b, "- %s: %s\n", e.messages.SchemeName(c.Scheme), c.Scheme.Benefits)
	}
	return e.render(t.ctx, "answer", render.Prompt{
		Context:     b.String(),
		Instruction: e.tasks.answer,
		Input:       t.input,
	})
}

func profileContext(p models.Profile) string {
	value := func(f models.Field) string {
		if v := p.Value(f); v != "" {
			return v
		}
		return "unknown"
	}
	return fmt.Sprintf("User Profile:\nAge: %s\nState: %s\nOccupation: %s\n",
		value(models.FieldAge), value(models.FieldRegion), value(models.FieldOccupation))
}
