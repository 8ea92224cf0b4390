// internal/workers/conversation/manage-conversation-session/models.go
package manageconversationsession

import "scheme-assistant/internal/models"

// Actions
const (
	ActionStart  = "start"
	ActionReset  = "reset"
	ActionEnd    = "end"
	ActionStatus = "status"
)

type Input struct {
	Action    string `json:"action"`
	SessionID string `json:"sessionId,omitempty"`
}

type Output struct {
	SessionID    string         `json:"sessionId"`
	Action       string         `json:"action"`
	Active       bool           `json:"active"`
	State        string         `json:"state,omitempty"`
	TurnCount    int            `json:"turnCount"`
	Profile      models.Profile `json:"profile"`
	CandidateIDs []string       `json:"candidateIds,omitempty"`
	FocusID      string         `json:"focusId,omitempty"`
}

const inputSchema = `{
	"type": "object",
	"required": ["action"],
	"properties": {
		"action": {"type": "string", "enum": ["start", "reset", "end", "status"]},
		"sessionId": {"type": "string"}
	},
	"if": {"properties": {"action": {"enum": ["reset", "end", "status"]}}},
	"then": {"required": ["sessionId"], "properties": {"sessionId": {"minLength": 1}}}
}`
