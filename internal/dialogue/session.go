// internal/dialogue/session.go
package dialogue

import (
	"time"

	"scheme-assistant/internal/models"
	"scheme-assistant/internal/profile"
)

// Session is the complete state of one conversation. The engine mutates it
// during Process; callers must not run two turns of the same session at once.
type Session struct {
	ID         string
	state      State
	profile    *profile.Store
	candidates []models.MatchResult
	focus      *models.Scheme
	history    []models.SessionTurn
}

func NewSession(id string) *Session {
	return &Session{
		ID:      id,
		state:   Greeting,
		profile: profile.NewStore(),
	}
}

func (s *Session) State() State { return s.state }

// Profile returns a snapshot; changing it does not affect the session.
func (s *Session) Profile() models.Profile { return s.profile.Snapshot() }

// Candidates returns the confirmed candidate set, best first.
func (s *Session) Candidates() []models.MatchResult {
	out := make([]models.MatchResult, len(s.candidates))
	copy(out, s.candidates)
	return out
}

// Focus is the scheme currently under discussion, or nil.
func (s *Session) Focus() *models.Scheme { return s.focus }

func (s *Session) History() []models.SessionTurn {
	out := make([]models.SessionTurn, len(s.history))
	copy(out, s.history)
	return out
}

// Reset returns the session to a fresh conversation, keeping its ID.
func (s *Session) Reset() {
	s.state = Greeting
	s.profile.Reset()
	s.candidates = nil
	s.focus = nil
	s.history = nil
}

func (s *Session) record(role models.Role, text string, at time.Time) {
	s.history = append(s.history, models.SessionTurn{Role: role, Text: text, Timestamp: at})
}
