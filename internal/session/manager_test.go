// internal/session/manager_test.go
package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"scheme-assistant/internal/common/logger"
	"scheme-assistant/internal/dialogue"
	"scheme-assistant/internal/models"
)

// countingProcessor echoes utterances and records overlapping turns per session.
type countingProcessor struct {
	mu       sync.Mutex
	inFlight map[*dialogue.Session]int
	overlap  bool
	delay    time.Duration
}

func newCountingProcessor(delay time.Duration) *countingProcessor {
	return &countingProcessor{inFlight: make(map[*dialogue.Session]int), delay: delay}
}

func (p *countingProcessor) Process(_ context.Context, s *dialogue.Session, utterance string) (string, models.Metadata) {
	p.mu.Lock()
	p.inFlight[s]++
	if p.inFlight[s] > 1 {
		p.overlap = true
	}
	p.mu.Unlock()

	time.Sleep(p.delay)

	p.mu.Lock()
	p.inFlight[s]--
	p.mu.Unlock()
	return "echo: " + utterance, p.Metadata(s)
}

func (p *countingProcessor) Metadata(s *dialogue.Session) models.Metadata {
	return models.Metadata{State: s.State().String(), Profile: s.Profile()}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestManager(t *testing.T, cfg Config) (*Manager, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	m := NewManager(newCountingProcessor(0), cfg, logger.NewTestLogger(t))
	m.now = clock.Now
	return m, clock
}

func TestManager_CreateAndTurn(t *testing.T) {
	m, _ := newTestManager(t, Config{})

	id, err := m.Create()
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, 1, m.Len())

	res, err := m.Turn(context.Background(), id, "  hello ", nil)
	require.NoError(t, err)
	assert.Equal(t, "echo: hello", res.Response)
	assert.Equal(t, 1, res.Turn)
	assert.Equal(t, id, res.SessionID)

	conf := 0.87
	res, err = m.Turn(context.Background(), id, "45", &conf)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Turn)

	view, err := m.View(id)
	require.NoError(t, err)
	require.Len(t, view.Turns, 2)
	assert.Nil(t, view.Turns[0].Confidence)
	require.NotNil(t, view.Turns[1].Confidence)
	assert.InDelta(t, 0.87, *view.Turns[1].Confidence, 1e-9)
	assert.Equal(t, "hello", view.Turns[0].UserText)
}

func TestManager_TurnErrors(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	id, err := m.Create()
	require.NoError(t, err)

	_, err = m.Turn(context.Background(), id, "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyUtterance)

	_, err = m.Turn(context.Background(), "missing", "hello", nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_MaxSessions(t *testing.T) {
	m, _ := newTestManager(t, Config{MaxSessions: 2})

	for i := 0; i < 2; i++ {
		_, err := m.Create()
		require.NoError(t, err)
	}
	_, err := m.Create()
	assert.ErrorIs(t, err, ErrSessionLimit)
	assert.Equal(t, 2, LimitOf(err))
	assert.EqualError(t, err, "SESSION_LIMIT_REACHED: limit 2")
}

func TestLimitOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"limit error", &LimitError{Limit: 5}, 5},
		{"wrapped limit error", fmt.Errorf("create: %w", &LimitError{Limit: 7}), 7},
		{"bare sentinel", ErrSessionLimit, 0},
		{"other error", ErrSessionNotFound, 0},
		{"nil", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LimitOf(tt.err))
		})
	}
}

func TestManager_ResetKeepsID(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	id, _ := m.Create()
	_, err := m.Turn(context.Background(), id, "hello", nil)
	require.NoError(t, err)

	meta, err := m.Reset(id)
	require.NoError(t, err)
	assert.Equal(t, dialogue.Greeting.String(), meta.State)

	view, err := m.View(id)
	require.NoError(t, err)
	assert.Empty(t, view.Turns)
	assert.Equal(t, id, view.ID)

	_, err = m.Reset("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_End(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	id, _ := m.Create()

	require.NoError(t, m.End(id))
	assert.Equal(t, 0, m.Len())
	assert.ErrorIs(t, m.End(id), ErrSessionNotFound)

	_, err := m.Turn(context.Background(), id, "hello", nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_Audio(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	id, _ := m.Create()
	_, err := m.Turn(context.Background(), id, "hello", nil)
	require.NoError(t, err)

	_, err = m.Audio(id, 1)
	assert.ErrorIs(t, err, ErrTurnNotFound)

	require.NoError(t, m.AttachAudio(id, 1, []byte("wav")))
	audio, err := m.Audio(id, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("wav"), audio)

	assert.ErrorIs(t, m.AttachAudio(id, 2, []byte("wav")), ErrTurnNotFound)
}

func TestManager_SweepEvictsIdleSessions(t *testing.T) {
	m, clock := newTestManager(t, Config{IdleTimeout: 10 * time.Minute})
	idle, _ := m.Create()

	clock.Advance(8 * time.Minute)
	active, _ := m.Create()
	_, err := m.Turn(context.Background(), active, "hello", nil)
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	assert.Equal(t, 1, m.Sweep())

	_, err = m.View(idle)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.View(active)
	assert.NoError(t, err)
}

func TestManager_SweepDisabledWithoutTimeout(t *testing.T) {
	m, clock := newTestManager(t, Config{})
	_, _ = m.Create()
	clock.Advance(24 * time.Hour)

	assert.Equal(t, 0, m.Sweep())
	assert.Equal(t, 1, m.Len())
}

func TestManager_SerialisesTurnsPerSession(t *testing.T) {
	proc := newCountingProcessor(2 * time.Millisecond)
	m := NewManager(proc, Config{}, logger.NewTestLogger(t))

	ids := make([]string, 3)
	for i := range ids {
		id, err := m.Create()
		require.NoError(t, err)
		ids[i] = id
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func(id string, i int) {
				defer wg.Done()
				_, err := m.Turn(context.Background(), id, fmt.Sprintf("turn %d", i), nil)
				assert.NoError(t, err)
			}(id, i)
		}
	}
	wg.Wait()

	assert.False(t, proc.overlap)
	for _, id := range ids {
		view, err := m.View(id)
		require.NoError(t, err)
		assert.Len(t, view.Turns, 5)
		for i, turn := range view.Turns {
			assert.Equal(t, i+1, turn.Turn)
		}
	}
}

func TestManager_RunStopsOnCancel(t *testing.T) {
	// stats workers started by package init in transitive deps are not ours.
	defer goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
		goleak.IgnoreCurrent(),
	)

	m := NewManager(newCountingProcessor(0), Config{
		IdleTimeout:   time.Millisecond,
		SweepInterval: time.Millisecond,
	}, logger.NewNoOpLogger())
	_, err := m.Create()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	require.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
