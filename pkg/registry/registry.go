// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Write emits the registry as indented JSON with activities sorted by task type.
func (r *ActivityRegistry) Write(w io.Writer) error {
	sort.Slice(r.Activities, func(i, j int) bool { return r.Activities[i].TaskType < r.Activities[j].TaskType })
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(r)
}

// Diff reports task types the published registry and the served set
// disagree on.
func Diff(published, served *ActivityRegistry) (missing, unknown []string) {
	have := make(map[string]bool, len(published.Activities))
	for _, a := range published.Activities {
		have[a.TaskType] = true
	}
	serve := make(map[string]bool, len(served.Activities))
	for _, a := range served.Activities {
		serve[a.TaskType] = true
		if !have[a.TaskType] {
			missing = append(missing, a.TaskType)
		}
	}
	for _, a := range published.Activities {
		if !serve[a.TaskType] {
			unknown = append(unknown, a.TaskType)
		}
	}
	sort.Strings(missing)
	sort.Strings(unknown)
	return missing, unknown
}

// SchemaMap decodes a JSON schema document for embedding in an Activity.
func SchemaMap(doc string) map[string]interface{} {
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(doc), &m); err != nil {
		return nil
	}
	return m
}
