// internal/dialogue/states.go
package dialogue

import (
	"context"

	"scheme-assistant/internal/extraction"
	"scheme-assistant/internal/models"
)

// State is one stage of the conversation. The set is closed: every state
// value carries its own turn handler.
type State interface {
	String() string
	handle(e *Engine, t *turn) outcome
}

var (
	Greeting                    State = greeting{}
	CollectingRequired          State = collectingRequired{}
	CollectingOptional          State = collectingOptional{}
	Matching                    State = matching{}
	Presenting                  State = presenting{}
	AnsweringQuestions          State = answeringQuestions{}
	ProvidingApplicationDetails State = providingApplicationDetails{}
)

// States lists every state in conversation order.
var States = []State{
	Greeting, CollectingRequired, CollectingOptional, Matching,
	Presenting, AnsweringQuestions, ProvidingApplicationDetails,
}

// ParseState maps a state name back to its value.
func ParseState(name string) (State, bool) {
	for _, s := range States {
		if s.String() == name {
			return s, true
		}
	}
	return nil, false
}

// turn carries per-turn data through the handlers.
type turn struct {
	ctx   context.Context
	sess  *Session
	input string
	// set when Matching sent the turn back for missing required fields
	regressed bool
}

// outcome is a handler's decision: the next state and either a reply or a
// request to run the next state's handler within the same turn.
type outcome struct {
	next  State
	reply string
	again bool
}

func reply(next State, text string) outcome { return outcome{next: next, reply: text} }

func rerun(next State) outcome { return outcome{next: next, again: true} }

type greeting struct{}

func (greeting) String() string { return "greeting" }

func (greeting) handle(e *Engine, _ *turn) outcome {
	return reply(CollectingRequired, e.messages.Greeting)
}

type collectingRequired struct{}

func (collectingRequired) String() string { return "collecting_required" }

func (collectingRequired) handle(e *Engine, t *turn) outcome {
	missing := t.sess.profile.Snapshot().MissingRequired()
	if len(missing) == 0 {
		return rerun(CollectingOptional)
	}

	for _, f := range missing {
		if !t.sess.profile.WasSolicited(f) {
			t.sess.profile.MarkSolicited(f)
			return reply(CollectingRequired, e.messages.question(f))
		}
	}

	// Every missing field was asked already. Move on, unless this turn has
	// been bounced back here by Matching, in which case ask again.
	if t.regressed {
		return reply(CollectingRequired, e.messages.question(missing[0]))
	}
	return rerun(CollectingOptional)
}

type collectingOptional struct{}

func (collectingOptional) String() string { return "collecting_optional" }

func (collectingOptional) handle(e *Engine, t *turn) outcome {
	p := t.sess.profile.Snapshot()
	if p.Occupation == nil && !t.sess.profile.WasSolicited(models.FieldOccupation) {
		t.sess.profile.MarkSolicited(models.FieldOccupation)
		return reply(CollectingOptional, e.messages.AskOccupation)
	}
	return rerun(Matching)
}

type matching struct{}

func (matching) String() string { return "matching" }

func (matching) handle(e *Engine, t *turn) outcome {
	p := t.sess.profile.Snapshot()
	if !p.HasRequired() {
		t.regressed = true
		return rerun(CollectingRequired)
	}

	results := e.match(t.ctx, p)
	if len(results) == 0 {
		switch {
		case p.Occupation != nil && e.isNoRecordOccupation(*p.Occupation):
			return reply(Matching, e.messages.noRecords(*p.Occupation))
		case p.Occupation == nil:
			return reply(CollectingOptional, e.messages.AskOccupationForMatches)
		default:
			return reply(Matching, e.messages.NoMatches)
		}
	}

	if len(results) > e.opts.MaxCandidates {
		results = results[:e.opts.MaxCandidates]
	}
	t.sess.candidates = append([]models.MatchResult(nil), results...)
	t.sess.focus = nil

	return reply(Presenting, e.presentCandidates(t))
}

type presenting struct{}

func (presenting) String() string { return "presenting" }

func (presenting) handle(e *Engine, t *turn) outcome {
	if s := mentionedCandidate(t); s != nil {
		t.sess.focus = s
		return reply(AnsweringQuestions, e.explainScheme(t, s))
	}
	if extraction.WantsApplication(t.input, false) {
		return rerun(ProvidingApplicationDetails)
	}
	return rerun(AnsweringQuestions)
}

type answeringQuestions struct{}

func (answeringQuestions) String() string { return "answering_questions" }

func (answeringQuestions) handle(e *Engine, t *turn) outcome {
	if s := mentionedCandidate(t); s != nil {
		t.sess.focus = s
		return reply(AnsweringQuestions, e.explainScheme(t, s))
	}
	if extraction.WantsApplication(t.input, true) {
		return rerun(ProvidingApplicationDetails)
	}
	return reply(AnsweringQuestions, e.answerQuestion(t))
}

type providingApplicationDetails struct{}

func (providingApplicationDetails) String() string { return "providing_application_details" }

func (providingApplicationDetails) handle(e *Engine, t *turn) outcome {
	if s := mentionedCandidate(t); s != nil {
		t.sess.focus = s
	}

	focus := t.sess.focus
	if focus == nil && len(t.sess.candidates) > 0 {
		focus = t.sess.candidates[0].Scheme
		t.sess.focus = focus
	}
	if focus == nil {
		return reply(ProvidingApplicationDetails, e.messages.SpecifyScheme)
	}

	return reply(AnsweringQuestions, e.messages.ApplicationSteps(focus))
}

// mentionedCandidate returns the first confirmed candidate named in the
// utterance.
func mentionedCandidate(t *turn) *models.Scheme {
	for _, c := range t.sess.candidates {
		if extraction.MentionsScheme(t.input, c.Scheme) {
			return c.Scheme
		}
	}
	return nil
}
