// internal/session/manager.go

// Package session keeps the live conversations of a process: it hands out
// session ids, serialises the turns of each session and evicts idle ones.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"scheme-assistant/internal/common/logger"
	"scheme-assistant/internal/common/metrics"
	"scheme-assistant/internal/dialogue"
	"scheme-assistant/internal/models"
)

var (
	ErrSessionNotFound = errors.New("SESSION_NOT_FOUND")
	ErrSessionLimit    = errors.New("SESSION_LIMIT_REACHED")
	ErrEmptyUtterance  = errors.New("INVALID_TURN_INPUT")
	ErrTurnNotFound    = errors.New("TURN_NOT_FOUND")
)

// LimitError is returned by Create when the configured cap of live sessions
// is reached. It matches ErrSessionLimit.
type LimitError struct {
	Limit int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s: limit %d", ErrSessionLimit, e.Limit)
}

func (e *LimitError) Unwrap() error { return ErrSessionLimit }

// LimitOf returns the cap carried by err, or zero if err is not a LimitError.
func LimitOf(err error) int {
	var le *LimitError
	if errors.As(err, &le) {
		return le.Limit
	}
	return 0
}

// Processor runs one turn of a conversation; *dialogue.Engine implements it.
type Processor interface {
	Process(ctx context.Context, s *dialogue.Session, utterance string) (string, models.Metadata)
	Metadata(s *dialogue.Session) models.Metadata
}

type Config struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
	MaxSessions   int
}

// TurnRecord is one entry of a session's turn log.
type TurnRecord struct {
	Turn       int       `json:"turn"`
	UserText   string    `json:"userText"`
	Confidence *float64  `json:"confidence,omitempty"`
	Response   string    `json:"agentResponse"`
	State      string    `json:"state"`
	Timestamp  time.Time `json:"timestamp"`
	audio      []byte
}

// TurnResult is returned to the transport after a turn.
type TurnResult struct {
	SessionID string          `json:"sessionId"`
	Turn      int             `json:"turnNumber"`
	Response  string          `json:"agentResponse"`
	Metadata  models.Metadata `json:"metadata"`
}

// View is a read-only snapshot of a session.
type View struct {
	ID         string
	StartedAt  time.Time
	LastActive time.Time
	Turns      []TurnRecord
	Metadata   models.Metadata
	Candidates []models.MatchResult
	Focus      *models.Scheme
}

type entry struct {
	mu         sync.Mutex
	sess       *dialogue.Session
	turns      []TurnRecord
	startedAt  time.Time
	lastActive time.Time
	closed     bool
}

type Manager struct {
	engine Processor
	cfg    Config
	logger logger.Logger

	mu       sync.RWMutex
	sessions map[string]*entry

	now   func() time.Time
	newID func() string
}

func NewManager(engine Processor, cfg Config, log logger.Logger) *Manager {
	return &Manager{
		engine:   engine,
		cfg:      cfg,
		logger:   log.WithFields(map[string]interface{}{"component": "session-manager"}),
		sessions: make(map[string]*entry),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Create opens a new session in the greeting state.
func (m *Manager) Create() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		return "", &LimitError{Limit: m.cfg.MaxSessions}
	}

	id := m.newID()
	now := m.now()
	m.sessions[id] = &entry{
		sess:       dialogue.NewSession(id),
		startedAt:  now,
		lastActive: now,
	}
	metrics.ActiveSessions.Set(float64(len(m.sessions)))

	m.logger.Info("session started", map[string]interface{}{"session_id": id})
	return id, nil
}

// Turn runs one utterance through the session's conversation. Turns of the
// same session are serialised; different sessions proceed in parallel.
// confidence is the speech recognition confidence, nil for typed input.
func (m *Manager) Turn(ctx context.Context, id, utterance string, confidence *float64) (*TurnResult, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return nil, ErrEmptyUtterance
	}

	e, err := m.lock(id)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	text, meta := m.engine.Process(ctx, e.sess, utterance)

	now := m.now()
	rec := TurnRecord{
		Turn:       len(e.turns) + 1,
		UserText:   utterance,
		Confidence: confidence,
		Response:   text,
		State:      meta.State,
		Timestamp:  now,
	}
	e.turns = append(e.turns, rec)
	e.lastActive = now

	m.logger.Info("turn processed", map[string]interface{}{
		"session_id": id,
		"turn":       rec.Turn,
		"state":      meta.State,
	})

	return &TurnResult{SessionID: id, Turn: rec.Turn, Response: text, Metadata: meta}, nil
}

// AttachAudio stores the synthesised reply of a turn.
func (m *Manager) AttachAudio(id string, turn int, audio []byte) error {
	e, err := m.lock(id)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()

	if turn < 1 || turn > len(e.turns) {
		return ErrTurnNotFound
	}
	e.turns[turn-1].audio = audio
	return nil
}

// Audio returns the synthesised reply of a turn, if one was stored.
func (m *Manager) Audio(id string, turn int) ([]byte, error) {
	e, err := m.lock(id)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	if turn < 1 || turn > len(e.turns) || e.turns[turn-1].audio == nil {
		return nil, ErrTurnNotFound
	}
	return e.turns[turn-1].audio, nil
}

// Reset clears the conversation but keeps the session id.
func (m *Manager) Reset(id string) (models.Metadata, error) {
	e, err := m.lock(id)
	if err != nil {
		return models.Metadata{}, err
	}
	defer e.mu.Unlock()

	e.sess.Reset()
	e.turns = nil
	e.lastActive = m.now()

	m.logger.Info("session reset", map[string]interface{}{"session_id": id})
	return m.engine.Metadata(e.sess), nil
}

// End removes a session.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	m.logger.Info("session ended", map[string]interface{}{"session_id": id})
	return nil
}

func (m *Manager) View(id string) (*View, error) {
	e, err := m.lock(id)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	turns := make([]TurnRecord, len(e.turns))
	copy(turns, e.turns)
	return &View{
		ID:         id,
		StartedAt:  e.startedAt,
		LastActive: e.lastActive,
		Turns:      turns,
		Metadata:   m.engine.Metadata(e.sess),
		Candidates: e.sess.Candidates(),
		Focus:      e.sess.Focus(),
	}, nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle for longer than the idle timeout. Sessions in
// the middle of a turn are left for the next sweep.
func (m *Manager) Sweep() int {
	if m.cfg.IdleTimeout <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.cfg.IdleTimeout)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, e := range m.sessions {
		if !e.mu.TryLock() {
			continue
		}
		if e.lastActive.Before(cutoff) {
			e.closed = true
			delete(m.sessions, id)
			evicted++
		}
		e.mu.Unlock()
	}
	metrics.ActiveSessions.Set(float64(len(m.sessions)))

	if evicted > 0 {
		m.logger.Info("idle sessions evicted", map[string]interface{}{
			"evicted":   evicted,
			"remaining": len(m.sessions),
		})
	}
	return evicted
}

// Run sweeps on every interval until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	if m.cfg.SweepInterval <= 0 || m.cfg.IdleTimeout <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// lock returns the live entry of id with its mutex held.
func (m *Manager) lock(id string) (*entry, error) {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	return e, nil
}
