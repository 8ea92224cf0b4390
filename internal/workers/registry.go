// internal/workers/registry.go

// Package workers lists the job types this service registers with Zeebe.
package workers

import (
	mcs "scheme-assistant/internal/workers/conversation/manage-conversation-session"
	pct "scheme-assistant/internal/workers/conversation/process-conversation-turn"
	sag "scheme-assistant/internal/workers/notification/send-application-guide"
	"scheme-assistant/pkg/registry"
)

const RegistryVersion = "1.0.0"

func Registry() *registry.ActivityRegistry {
	return &registry.ActivityRegistry{
		Version: RegistryVersion,
		Activities: []registry.Activity{
			pct.Activity(),
			mcs.Activity(),
			sag.Activity(),
		},
	}
}
