// pkg/registry/schema.go
package registry

// ActivityRegistry is the published list of job types a deployment serves,
// consumed by process modelers.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated,omitempty"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	ID          string                 `json:"id"`
	DisplayName string                 `json:"displayName"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	TaskType    string                 `json:"taskType"`
	InputSchema map[string]interface{} `json:"inputSchema,omitempty"`
	ErrorCodes  []string               `json:"errorCodes"`
	Timeout     string                 `json:"timeout,omitempty"`
	Retries     int                    `json:"retries"`
}
