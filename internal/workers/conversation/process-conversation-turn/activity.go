// internal/workers/conversation/process-conversation-turn/activity.go
package processconversationturn

import "scheme-assistant/pkg/registry"

func Activity() registry.Activity {
	return registry.Activity{
		ID:          TaskType,
		DisplayName: "Process Conversation Turn",
		Description: "Runs one citizen utterance through the dialogue engine and returns the reply with the updated profile",
		Category:    "conversation",
		TaskType:    TaskType,
		InputSchema: registry.SchemaMap(inputSchema),
		ErrorCodes:  []string{"SESSION_NOT_FOUND", "SESSION_LIMIT_REACHED", "INVALID_TURN_INPUT"},
		Timeout:     "30s",
		Retries:     3,
	}
}
