// pkg/registry/registry_test.go
package registry

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteThenLoad(t *testing.T) {
	reg := &ActivityRegistry{
		Version: "1.0.0",
		Activities: []Activity{
			{ID: "b", TaskType: "send-application-guide", ErrorCodes: []string{"FOCUS_NOT_RESOLVED"}},
			{ID: "a", TaskType: "manage-conversation-session"},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, reg.Write(&buf))

	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	got, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "manage-conversation-session", got.Activities[0].TaskType)
	assert.Equal(t, []string{"FOCUS_NOT_RESOLVED"}, got.Activities[1].ErrorCodes)
}

func TestLoadRegistry_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := LoadRegistry(path)
	assert.Error(t, err)
}

func TestDiff(t *testing.T) {
	published := &ActivityRegistry{Activities: []Activity{{TaskType: "a"}, {TaskType: "old"}}}
	served := &ActivityRegistry{Activities: []Activity{{TaskType: "a"}, {TaskType: "new"}}}

	missing, unknown := Diff(published, served)
	assert.Equal(t, []string{"new"}, missing)
	assert.Equal(t, []string{"old"}, unknown)
}

func TestSchemaMap(t *testing.T) {
	assert.Equal(t, "object", SchemaMap(`{"type":"object"}`)["type"])
	assert.Nil(t, SchemaMap("not json"))
}
