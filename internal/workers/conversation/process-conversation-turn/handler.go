// internal/workers/conversation/process-conversation-turn/handler.go
package processconversationturn

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"scheme-assistant/internal/common/camunda"
	apperrors "scheme-assistant/internal/common/errors"
	"scheme-assistant/internal/common/logger"
	"scheme-assistant/internal/common/validation"
	"scheme-assistant/internal/session"
)

const (
	TaskType = "process-conversation-turn"
)

var schema = validation.MustCompile(inputSchema)

// Sessions is the slice of session.Manager this worker drives.
type Sessions interface {
	Create() (string, error)
	Turn(ctx context.Context, id, utterance string, confidence *float64) (*session.TurnResult, error)
}

type Handler struct {
	config   *Config
	sessions Sessions
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
	now      func() time.Time
}

func NewHandler(config *Config, sessions Sessions, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		sessions: sessions,
		errors:   apperrors.NewErrorHandler(l),
		logger:   l,
		now:      time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := camunda.DecodeVariables(job, schema, &input); err != nil {
		camunda.Finish(client, job, nil, err, h.errors, h.logger)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	camunda.Finish(client, job, output, err, h.errors, h.logger)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Utterance) == "" {
		return nil, apperrors.NewInvalidTurnInputError("utterance is empty")
	}

	id := input.SessionID
	if id == "" {
		var err error
		if id, err = h.sessions.Create(); err != nil {
			return nil, translate(id, err)
		}
	}

	res, err := h.sessions.Turn(ctx, id, input.Utterance, input.Confidence)
	if err != nil {
		return nil, translate(id, err)
	}

	return &Output{
		SessionID:         id,
		TurnNumber:        res.Turn,
		Response:          res.Response,
		State:             res.Metadata.State,
		Profile:           res.Metadata.Profile,
		HasRequiredInfo:   res.Metadata.HasRequiredInfo,
		HasSufficientInfo: res.Metadata.HasSufficientInfo,
		ProcessedAt:       h.now().UTC().Format(time.RFC3339),
	}, nil
}

func translate(id string, err error) error {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return apperrors.NewSessionNotFoundError(id)
	case errors.Is(err, session.ErrSessionLimit):
		return apperrors.NewSessionLimitError(session.LimitOf(err))
	case errors.Is(err, session.ErrEmptyUtterance):
		return apperrors.NewInvalidTurnInputError("utterance is empty")
	}
	return err
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
