// internal/models/session.go
package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// SessionTurn is one immutable entry of a conversation history.
type SessionTurn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Metadata accompanies every response produced by the dialogue engine.
type Metadata struct {
	State             string  `json:"state"`
	Profile           Profile `json:"profile"`
	HasRequiredInfo   bool    `json:"hasRequiredInfo"`
	HasSufficientInfo bool    `json:"hasSufficientInfo"`
}
