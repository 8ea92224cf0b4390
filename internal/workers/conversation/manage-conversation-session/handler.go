// internal/workers/conversation/manage-conversation-session/handler.go
package manageconversationsession

import (
	"context"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"scheme-assistant/internal/common/camunda"
	apperrors "scheme-assistant/internal/common/errors"
	"scheme-assistant/internal/common/logger"
	"scheme-assistant/internal/common/validation"
	"scheme-assistant/internal/models"
	"scheme-assistant/internal/session"
)

const (
	TaskType = "manage-conversation-session"
)

var ErrUnknownAction = errors.New("UNKNOWN_ACTION")

var schema = validation.MustCompile(inputSchema)

type Sessions interface {
	Create() (string, error)
	Reset(id string) (models.Metadata, error)
	End(id string) error
	View(id string) (*session.View, error)
}

type Handler struct {
	config   *Config
	sessions Sessions
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, sessions Sessions, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		sessions: sessions,
		errors:   apperrors.NewErrorHandler(l),
		logger:   l,
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

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	switch input.Action {
	case ActionStart:
		id, err := h.sessions.Create()
		if err != nil {
			if errors.Is(err, session.ErrSessionLimit) {
				return nil, apperrors.NewSessionLimitError(session.LimitOf(err))
			}
			return nil, err
		}
		return h.status(id, ActionStart)

	case ActionReset:
		if _, err := h.sessions.Reset(input.SessionID); err != nil {
			return nil, notFound(input.SessionID, err)
		}
		return h.status(input.SessionID, ActionReset)

	case ActionEnd:
		if err := h.sessions.End(input.SessionID); err != nil {
			return nil, notFound(input.SessionID, err)
		}
		return &Output{SessionID: input.SessionID, Action: ActionEnd, Active: false}, nil

	case ActionStatus:
		return h.status(input.SessionID, ActionStatus)
	}
	return nil, apperrors.NewInvalidTurnInputError(fmt.Sprintf("%v: %q", ErrUnknownAction, input.Action))
}

func (h *Handler) status(id, action string) (*Output, error) {
	view, err := h.sessions.View(id)
	if err != nil {
		return nil, notFound(id, err)
	}

	out := &Output{
		SessionID: id,
		Action:    action,
		Active:    true,
		State:     view.Metadata.State,
		TurnCount: len(view.Turns),
		Profile:   view.Metadata.Profile,
	}
	for _, c := range view.Candidates {
		out.CandidateIDs = append(out.CandidateIDs, c.Scheme.ID)
	}
	if view.Focus != nil {
		out.FocusID = view.Focus.ID
	}
	return out, nil
}

func notFound(id string, err error) error {
	if errors.Is(err, session.ErrSessionNotFound) {
		return apperrors.NewSessionNotFoundError(id)
	}
	return err
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
