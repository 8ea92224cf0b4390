// internal/workers/conversation/process-conversation-turn/models.go
package processconversationturn

import "scheme-assistant/internal/models"

// Input starts a new session when SessionID is empty.
type Input struct {
	SessionID  string   `json:"sessionId,omitempty"`
	Utterance  string   `json:"utterance"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type Output struct {
	SessionID         string         `json:"sessionId"`
	TurnNumber        int            `json:"turnNumber"`
	Response          string         `json:"response"`
	State             string         `json:"state"`
	Profile           models.Profile `json:"profile"`
	HasRequiredInfo   bool           `json:"hasRequiredInfo"`
	HasSufficientInfo bool           `json:"hasSufficientInfo"`
	ProcessedAt       string         `json:"processedAt"`
}

const inputSchema = `{
	"type": "object",
	"required": ["utterance"],
	"properties": {
		"sessionId": {"type": "string"},
		"utterance": {"type": "string", "minLength": 1, "maxLength": 2000},
		"confidence": {"type": ["number", "null"], "minimum": 0, "maximum": 1}
	}
}`
