// internal/workers/notification/send-application-guide/activity.go
package sendapplicationguide

import "scheme-assistant/pkg/registry"

func Activity() registry.Activity {
	return registry.Activity{
		ID:          TaskType,
		DisplayName: "Send Application Guide",
		Description: "Sends a scheme's application steps to the citizen by email and SMS",
		Category:    "notification",
		TaskType:    TaskType,
		InputSchema: registry.SchemaMap(inputSchema),
		ErrorCodes:  []string{"FOCUS_NOT_RESOLVED", "SESSION_NOT_FOUND", "NOTIFICATION_SEND_FAILED"},
		Timeout:     "30s",
		Retries:     3,
	}
}
