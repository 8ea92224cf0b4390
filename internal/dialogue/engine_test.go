// internal/dialogue/engine_test.go
package dialogue

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scheme-assistant/internal/catalog"
	"scheme-assistant/internal/common/logger"
	"scheme-assistant/internal/common/observability"
	"scheme-assistant/internal/models"
	"scheme-assistant/internal/render"
)

type recordingRenderer struct {
	prompts []render.Prompt
}

func (r *recordingRenderer) Render(_ context.Context, p render.Prompt) string {
	r.prompts = append(r.prompts, p)
	return "rendered: " + p.Input
}

func (r *recordingRenderer) last() render.Prompt {
	return r.prompts[len(r.prompts)-1]
}

type failingGenerator struct{}

func (failingGenerator) Name() string { return "failing" }

func (failingGenerator) Generate(context.Context, string) (string, error) {
	return "", errors.New("backend unavailable")
}

func testSchemes() []models.Scheme {
	return []models.Scheme{
		{
			ID: "rythu_bandhu", Name: "రైతు బంధు", NameEnglish: "Rythu Bandhu",
			Benefits:    "ఎకరానికి 10000 రూపాయలు",
			Eligibility: models.Constraints{AgeMin: models.IntPtr(18), Region: "Telangana", Occupations: models.StringList{"farmer"}},
			Application: models.ApplicationProcess{
				Steps:           []string{"మండల వ్యవసాయ అధికారిని కలవండి"},
				OfflineLocation: "మండల వ్యవసాయ కార్యాలయం",
			},
		},
		{
			ID: "pm_kisan", Name: "పీఎం కిసాన్", NameEnglish: "PM Kisan",
			Benefits: "సంవత్సరానికి 6000 రూపాయలు",
			Eligibility: models.Constraints{
				AgeMin: models.IntPtr(18), Region: "All India", Occupations: models.StringList{"farmer"}, IncomeMax: models.IntPtr(200000),
			},
			Application: models.ApplicationProcess{
				Steps:     []string{"ఆధార్ తో నమోదు చేసుకోండి"},
				OnlineURL: "https://pmkisan.gov.in",
			},
		},
		{
			ID: "nethanna_nestham", Name: "నేతన్న నేస్తం", NameEnglish: "Nethanna Nestham",
			Eligibility: models.Constraints{AgeMin: models.IntPtr(18), AgeMax: models.IntPtr(60), Region: "Andhra Pradesh", Occupations: models.StringList{"weaver"}},
		},
		{
			ID: "aasara_pension", Name: "ఆసరా పింఛను", NameEnglish: "Aasara Pension",
			Eligibility: models.Constraints{AgeMin: models.IntPtr(57), Region: "Telangana"},
		},
	}
}

func newTestEngine(t *testing.T, r render.Renderer, opts Options) *Engine {
	t.Helper()
	c, err := catalog.New(testSchemes())
	require.NoError(t, err)
	return NewEngine(c, r, opts, logger.NewTestLogger(t), observability.NewNoop())
}

func converse(t *testing.T, e *Engine, s *Session, utterances ...string) (string, models.Metadata) {
	t.Helper()
	var (
		text string
		meta models.Metadata
	)
	for _, u := range utterances {
		text, meta = e.Process(context.Background(), s, u)
	}
	return text, meta
}

func TestEngine_GreetingOpensConversation(t *testing.T) {
	e := newTestEngine(t, &recordingRenderer{}, Options{})
	s := NewSession("s1")

	text, meta := e.Process(context.Background(), s, "hello")

	assert.Equal(t, e.Messages().Greeting, text)
	assert.Equal(t, CollectingRequired, s.State())
	assert.Equal(t, "collecting_required", meta.State)
	assert.False(t, meta.HasRequiredInfo)
}

func TestEngine_FarmerFullFlow(t *testing.T) {
	r := &recordingRenderer{}
	e := newTestEngine(t, r, Options{})
	s := NewSession("s1")

	text, meta := converse(t, e, s, "hello", "I am 45 years old farmer from Telangana")

	assert.Equal(t, "rendered: show schemes", text)
	assert.Equal(t, Presenting, s.State())
	assert.True(t, meta.HasRequiredInfo)
	assert.True(t, meta.HasSufficientInfo)

	candidates := s.Candidates()
	require.Len(t, candidates, 2)
	assert.Equal(t, "rythu_bandhu", candidates[0].Scheme.ID)
	assert.Equal(t, "pm_kisan", candidates[1].Scheme.ID)
	for _, c := range candidates {
		assert.Equal(t, 100, c.Score)
	}

	prompt := r.last()
	assert.Contains(t, prompt.Context, "Age: 45")
	assert.Contains(t, prompt.Context, "State: Telangana")
	assert.Contains(t, prompt.Context, "1. రైతు బంధు - ఎకరానికి 10000 రూపాయలు")
	assert.Contains(t, prompt.Instruction, "మీకు ఈ పథకాలు సరిపోతాయి:")

	// naming a candidate focuses it and explains it
	text, _ = e.Process(context.Background(), s, "పీఎం కిసాన్ గురించి చెప్పండి")
	assert.Equal(t, "rendered: పీఎం కిసాన్ గురించి చెప్పండి", text)
	assert.Equal(t, AnsweringQuestions, s.State())
	require.NotNil(t, s.Focus())
	assert.Equal(t, "pm_kisan", s.Focus().ID)
	assert.Contains(t, r.last().Context, "Scheme: పీఎం కిసాన్")

	// an affirmation asks for the application guide of the focus
	text, _ = e.Process(context.Background(), s, "అవును")
	assert.Contains(t, text, "పీఎం కిసాన్ కోసం దరఖాస్తు చేయడానికి:")
	assert.Contains(t, text, "1. ఆధార్ తో నమోదు చేసుకోండి")
	assert.Contains(t, text, "https://pmkisan.gov.in")
	assert.Equal(t, AnsweringQuestions, s.State())
}

func TestEngine_ApplicationDefaultsToTopCandidate(t *testing.T) {
	e := newTestEngine(t, &recordingRenderer{}, Options{})
	s := NewSession("s1")
	converse(t, e, s, "hello", "45 years farmer Telangana")
	require.Equal(t, Presenting, s.State())

	text, _ := e.Process(context.Background(), s, "how to apply")

	assert.Contains(t, text, "రైతు బంధు కోసం దరఖాస్తు చేయడానికి:")
	assert.Contains(t, text, "📍 ఆఫ్‌లైన్: మండల వ్యవసాయ కార్యాలయం")
	assert.Equal(t, AnsweringQuestions, s.State())
	require.NotNil(t, s.Focus())
	assert.Equal(t, "rythu_bandhu", s.Focus().ID)
}

func TestEngine_PresentingFallsThroughToQuestions(t *testing.T) {
	r := &recordingRenderer{}
	e := newTestEngine(t, r, Options{})
	s := NewSession("s1")
	converse(t, e, s, "hello", "45 years farmer Telangana")

	text, _ := e.Process(context.Background(), s, "what documents do I need")

	assert.Equal(t, "rendered: what documents do I need", text)
	assert.Equal(t, AnsweringQuestions, s.State())
	assert.Contains(t, r.last().Context, "Eligible Schemes:\n- రైతు బంధు")
	assert.Nil(t, s.Focus())
}

func TestEngine_StudentWithoutSchemes(t *testing.T) {
	e := newTestEngine(t, &recordingRenderer{}, Options{})
	s := NewSession("s1")

	text, meta := converse(t, e, s, "hello", "I am 20 years old student from Telangana")

	assert.Equal(t, e.Messages().NoRecords[models.OccupationStudent], text)
	assert.Equal(t, Matching, s.State())
	assert.Empty(t, s.Candidates())
	require.NotNil(t, meta.Profile.Age)
	assert.Equal(t, 20, *meta.Profile.Age)
	assert.Equal(t, models.OccupationStudent, *meta.Profile.Occupation)
}

func TestEngine_NoMatchWithOccupation(t *testing.T) {
	e := newTestEngine(t, &recordingRenderer{}, Options{})
	s := NewSession("s1")

	text, _ := converse(t, e, s, "hello", "30 years business Andhra Pradesh")

	assert.Equal(t, e.Messages().NoMatches, text)
	assert.Equal(t, Matching, s.State())
}

func TestEngine_NoMatchWithoutOccupationAsksForIt(t *testing.T) {
	e := newTestEngine(t, &recordingRenderer{}, Options{})
	s := NewSession("s1")

	text, _ := converse(t, e, s, "hello", "70 years Andhra Pradesh")
	assert.Equal(t, e.Messages().AskOccupation, text)
	assert.Equal(t, CollectingOptional, s.State())

	text, _ = e.Process(context.Background(), s, "I don't know")
	assert.Equal(t, e.Messages().AskOccupationForMatches, text)
	assert.Equal(t, CollectingOptional, s.State())
}

func TestEngine_ApplicationWithoutCandidates(t *testing.T) {
	e := newTestEngine(t, &recordingRenderer{}, Options{})
	s := NewSession("s1")
	s.state = ProvidingApplicationDetails

	text, _ := e.Process(context.Background(), s, "how to apply")

	assert.Equal(t, e.Messages().SpecifyScheme, text)
	assert.Equal(t, ProvidingApplicationDetails, s.State())
}

func TestEngine_ApplicationStepsUnavailable(t *testing.T) {
	e := newTestEngine(t, &recordingRenderer{}, Options{})
	s := NewSession("s1")
	converse(t, e, s, "hello", "40 years weaver Andhra Pradesh")
	require.Equal(t, Presenting, s.State())

	text, _ := e.Process(context.Background(), s, "apply")

	assert.Equal(t, "నేతన్న నేస్తం కోసం దరఖాస్తు ప్రక్రియ సమాచారం ప్రస్తుతం అందుబాటులో లేదు.", text)
	assert.Equal(t, AnsweringQuestions, s.State())
}

func TestEngine_AsksEachRequiredFieldOnce(t *testing.T) {
	e := newTestEngine(t, &recordingRenderer{}, Options{})
	s := NewSession("s1")
	m := e.Messages()

	replies := []string{}
	for _, u := range []string{"hello", "hmm", "hmm", "hmm", "hmm"} {
		text, _ := e.Process(context.Background(), s, u)
		replies = append(replies, text)
	}

	assert.Equal(t, []string{m.Greeting, m.AskAge, m.AskRegion, m.AskOccupation, m.AskAge}, replies)
	// bounced back from matching, the turn settles instead of looping
	assert.Equal(t, CollectingRequired, s.State())
	assert.Equal(t, []models.Field{models.FieldAge, models.FieldRegion, models.FieldOccupation}, s.profile.Solicited())
}

func TestEngine_BareNumberOnlyWhileCollecting(t *testing.T) {
	e := newTestEngine(t, &recordingRenderer{}, Options{})
	s := NewSession("s1")

	_, meta := e.Process(context.Background(), s, "45")
	assert.Nil(t, meta.Profile.Age)

	_, meta = e.Process(context.Background(), s, "45")
	require.NotNil(t, meta.Profile.Age)
	assert.Equal(t, 45, *meta.Profile.Age)
	assert.Equal(t, CollectingRequired, s.State())
}

func TestEngine_RendererFailureFallsBackToApology(t *testing.T) {
	log := logger.NewTestLogger(t)
	svc := render.NewService(failingGenerator{}, render.Telugu, time.Second, log)
	e := newTestEngine(t, svc, Options{})
	s := NewSession("s1")

	text, _ := converse(t, e, s, "hello", "45 years farmer Telangana")

	assert.Equal(t, render.Apology(render.Telugu), text)
	assert.Equal(t, Presenting, s.State())
	assert.Len(t, s.Candidates(), 2)
}

func TestEngine_ResetRoundTrip(t *testing.T) {
	e := newTestEngine(t, &recordingRenderer{}, Options{})
	s := NewSession("s1")
	converse(t, e, s, "hello", "45 years farmer Telangana", "apply")

	s.Reset()
	assert.Equal(t, Greeting, s.State())
	assert.Equal(t, models.Profile{}, s.Profile())
	assert.Empty(t, s.Candidates())
	assert.Nil(t, s.Focus())
	assert.Empty(t, s.History())

	fresh := NewSession("s2")
	gotReset, metaReset := e.Process(context.Background(), s, "hello")
	gotFresh, metaFresh := e.Process(context.Background(), fresh, "hello")
	assert.Equal(t, gotFresh, gotReset)
	assert.Equal(t, metaFresh, metaReset)
	assert.Equal(t, "s1", s.ID)
}

func TestEngine_RepeatedFactsAreIdempotent(t *testing.T) {
	e := newTestEngine(t, &recordingRenderer{}, Options{})
	s := NewSession("s1")
	_, before := converse(t, e, s, "hello", "45 years farmer Telangana")

	_, after := e.Process(context.Background(), s, "45 years farmer Telangana")

	assert.Equal(t, before.Profile, after.Profile)
	assert.Equal(t, before.Profile.Fingerprint(), after.Profile.Fingerprint())
}

func TestEngine_RepeatedUtteranceIsIdempotent(t *testing.T) {
	tests := []struct {
		name      string
		setup     []string
		state     State
		utterance string
		wantState State
		wantReply func(m Messages) string
	}{
		{
			name:      "answering questions",
			setup:     []string{"hello", "45 years farmer Telangana", "what documents do I need"},
			utterance: "what documents do I need",
			wantState: AnsweringQuestions,
			wantReply: func(Messages) string { return "rendered: what documents do I need" },
		},
		{
			name:      "matching without matches",
			setup:     []string{"hello", "30 years business Andhra Pradesh"},
			utterance: "hmm",
			wantState: Matching,
			wantReply: func(m Messages) string { return m.NoMatches },
		},
		{
			name:      "matching without records",
			setup:     []string{"hello", "20 years student Telangana"},
			utterance: "hmm",
			wantState: Matching,
			wantReply: func(m Messages) string { return m.NoRecords[models.OccupationStudent] },
		},
		{
			name:      "collecting optional after occupation was asked",
			setup:     []string{"hello", "70 years Andhra Pradesh"},
			utterance: "hmm",
			wantState: CollectingOptional,
			wantReply: func(m Messages) string { return m.AskOccupationForMatches },
		},
		{
			name:      "application details without candidates",
			state:     ProvidingApplicationDetails,
			utterance: "how to apply",
			wantState: ProvidingApplicationDetails,
			wantReply: func(m Messages) string { return m.SpecifyScheme },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, &recordingRenderer{}, Options{})
			s := NewSession("s1")
			if tt.state != nil {
				s.state = tt.state
			}
			converse(t, e, s, tt.setup...)

			first, firstMeta := e.Process(context.Background(), s, tt.utterance)
			firstCandidates := s.Candidates()
			second, secondMeta := e.Process(context.Background(), s, tt.utterance)

			assert.Equal(t, tt.wantReply(e.Messages()), first)
			assert.Equal(t, tt.wantState, s.State())
			assert.Equal(t, first, second)
			assert.Equal(t, firstMeta, secondMeta)
			assert.Equal(t, firstCandidates, s.Candidates())
		})
	}
}

func TestEngine_LaterValueOverwrites(t *testing.T) {
	e := newTestEngine(t, &recordingRenderer{}, Options{})
	s := NewSession("s1")

	_, meta := converse(t, e, s, "hello", "30 years", "sorry, 35 years")

	require.NotNil(t, meta.Profile.Age)
	assert.Equal(t, 35, *meta.Profile.Age)
}

func TestEngine_NeverPastRequiredWithoutRequiredInfo(t *testing.T) {
	pool := []string{
		"hello", "45", "45 years", "Telangana", "ఆంధ్రప్రదేశ్", "farmer", "student",
		"weaver", "yes", "apply", "రైతు బంధు", "what is this", "I am a woman", "1,00,000 rupees",
	}
	rng := rand.New(rand.NewSource(7))
	advanced := map[State]bool{Matching: true, Presenting: true, AnsweringQuestions: true, ProvidingApplicationDetails: true}

	for run := 0; run < 50; run++ {
		e := newTestEngine(t, &recordingRenderer{}, Options{})
		s := NewSession("prop")
		for i := 0; i < 12; i++ {
			_, meta := e.Process(context.Background(), s, pool[rng.Intn(len(pool))])
			if advanced[s.State()] {
				require.True(t, meta.HasRequiredInfo, "state %s reached without required info", s.State())
			}
			require.NotEmpty(t, s.History())
		}
	}
}

func TestEngine_HistoryAndTruncation(t *testing.T) {
	e := newTestEngine(t, &recordingRenderer{}, Options{MaxUtteranceLength: 5})
	s := NewSession("s1")

	text, _ := e.Process(context.Background(), s, "  hello there  ")

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, "hello", history[0].Text)
	assert.Equal(t, models.RoleAssistant, history[1].Role)
	assert.Equal(t, text, history[1].Text)
}

func TestEngine_English(t *testing.T) {
	r := &recordingRenderer{}
	e := newTestEngine(t, r, Options{Language: render.English})
	s := NewSession("s1")

	text, _ := e.Process(context.Background(), s, "hi")
	assert.Equal(t, MessagesFor(render.English).Greeting, text)

	converse(t, e, s, "45 years farmer Telangana")
	assert.Contains(t, r.last().Context, "1. Rythu Bandhu")

	text, _ = e.Process(context.Background(), s, "apply")
	assert.Contains(t, text, "To apply for Rythu Bandhu:")
}

func TestEngine_ConfigurableNoRecordOccupations(t *testing.T) {
	e := newTestEngine(t, &recordingRenderer{}, Options{
		NoRecordOccupations: []models.Occupation{models.OccupationBusiness},
	})
	s := NewSession("s1")

	text, _ := converse(t, e, s, "hello", "30 years business Andhra Pradesh")

	assert.Equal(t, e.Messages().NoRecordsDefault, text)
	assert.Equal(t, Matching, s.State())
}
