// internal/workers/notification/send-application-guide/models.go
package sendapplicationguide

// Input names the scheme directly or through a session's focus.
type Input struct {
	SessionID string `json:"sessionId,omitempty"`
	SchemeID  string `json:"schemeId,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	SchemeID       string   `json:"schemeId"`
	Status         string   `json:"status"`
	Channels       []string `json:"channels,omitempty"`
	FailedChannels []string `json:"failedChannels,omitempty"`
	SentAt         string   `json:"sentAt"`
}

// Statuses
const (
	StatusSent     = "sent"
	StatusPartial  = "partial"
	StatusDisabled = "disabled"
)

// Channels
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

const inputSchema = `{
	"type": "object",
	"properties": {
		"sessionId": {"type": "string"},
		"schemeId": {"type": "string"},
		"email": {"type": "string", "format": "email"},
		"phone": {"type": "string", "pattern": "^\\+[1-9][0-9]{6,14}$"}
	},
	"anyOf": [
		{"required": ["sessionId"], "properties": {"sessionId": {"minLength": 1}}},
		{"required": ["schemeId"], "properties": {"schemeId": {"minLength": 1}}}
	]
}`
