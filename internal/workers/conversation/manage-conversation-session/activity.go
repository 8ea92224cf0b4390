// internal/workers/conversation/manage-conversation-session/activity.go
package manageconversationsession

import "scheme-assistant/pkg/registry"

func Activity() registry.Activity {
	return registry.Activity{
		ID:          TaskType,
		DisplayName: "Manage Conversation Session",
		Description: "Starts, resets, ends or reports on a conversation session",
		Category:    "conversation",
		TaskType:    TaskType,
		InputSchema: registry.SchemaMap(inputSchema),
		ErrorCodes:  []string{"SESSION_NOT_FOUND", "SESSION_LIMIT_REACHED", "INVALID_TURN_INPUT"},
		Timeout:     "10s",
		Retries:     3,
	}
}
