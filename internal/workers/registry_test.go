// internal/workers/registry_test.go
package workers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	reg := Registry()

	seen := map[string]bool{}
	for _, a := range reg.Activities {
		assert.False(t, seen[a.TaskType], "duplicate task type %s", a.TaskType)
		seen[a.TaskType] = true
		assert.NotNil(t, a.InputSchema, "schema of %s should parse", a.TaskType)
		assert.NotEmpty(t, a.ErrorCodes)
	}
	assert.Len(t, seen, 3)
}
