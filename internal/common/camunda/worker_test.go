// internal/common/camunda/worker_test.go
package camunda

import (
	"errors"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "scheme-assistant/internal/common/errors"
	"scheme-assistant/internal/common/validation"
)

func jobWith(vars string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Type: "test", Variables: vars}}
}

func TestDecodeVariables(t *testing.T) {
	schema := validation.MustCompile(`{
		"type": "object",
		"required": ["sessionId"],
		"properties": {"sessionId": {"type": "string", "minLength": 1}}
	}`)

	var out struct {
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, DecodeVariables(jobWith(`{"sessionId":"abc"}`), schema, &out))
	assert.Equal(t, "abc", out.SessionID)

	tests := []struct {
		name string
		vars string
	}{
		{"missing field", `{}`},
		{"wrong type", `{"sessionId": 5}`},
		{"not json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DecodeVariables(jobWith(tt.vars), schema, &out)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidTurnInput))
		})
	}

	// without a schema only decoding is checked
	assert.NoError(t, DecodeVariables(jobWith(`{}`), nil, &out))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(errors.New("rpc error: code = Unavailable")))
	assert.True(t, IsRetryable(errors.New("context deadline exceeded")))
	assert.False(t, IsRetryable(errors.New("permission denied")))
}

func TestBackoff(t *testing.T) {
	rc := &RetryConfig{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: 5 * time.Second}
	assert.Equal(t, time.Second, backoff(rc, 0))
	assert.Equal(t, 4*time.Second, backoff(rc, 2))
	assert.Equal(t, 5*time.Second, backoff(rc, 4))
}
