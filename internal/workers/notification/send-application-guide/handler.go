// internal/workers/notification/send-application-guide/handler.go
package sendapplicationguide

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"scheme-assistant/internal/common/camunda"
	apperrors "scheme-assistant/internal/common/errors"
	"scheme-assistant/internal/common/logger"
	"scheme-assistant/internal/common/validation"
	"scheme-assistant/internal/dialogue"
	"scheme-assistant/internal/models"
	"scheme-assistant/internal/session"
)

const (
	TaskType = "send-application-guide"
)

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

var schema = validation.MustCompile(inputSchema)

type Catalog interface {
	Find(id string) (*models.Scheme, bool)
}

type Sessions interface {
	View(id string) (*session.View, error)
}

// EmailSender and SMSSender are satisfied by the aws senders.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) (string, error)
}

type SMSSender interface {
	Send(ctx context.Context, phone, message string) (string, error)
}

type Handler struct {
	config   *Config
	catalog  Catalog
	sessions Sessions
	messages dialogue.Messages
	email    EmailSender
	sms      SMSSender
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
	now      func() time.Time
}

func NewHandler(config *Config, catalog Catalog, sessions Sessions, messages dialogue.Messages,
	email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		catalog:  catalog,
		sessions: sessions,
		messages: messages,
		email:    email,
		sms:      sms,
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
	scheme, err := h.resolveScheme(input)
	if err != nil {
		return nil, err
	}

	out := &Output{
		NotificationID: uuid.New().String(),
		SchemeID:       scheme.ID,
		SentAt:         h.now().UTC().Format(time.RFC3339),
	}
	subject := h.messages.SchemeName(scheme)
	body := h.messages.ApplicationSteps(scheme)

	attempted := 0
	if h.config.EmailEnabled && h.email != nil && input.Email != "" {
		attempted++
		if _, err := h.email.Send(ctx, input.Email, subject, body); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{"schemeId": scheme.ID, "error": err.Error()})
			out.FailedChannels = append(out.FailedChannels, ChannelEmail)
		} else {
			out.Channels = append(out.Channels, ChannelEmail)
		}
	}
	if h.config.SMSEnabled && h.sms != nil && input.Phone != "" {
		attempted++
		if _, err := h.sms.Send(ctx, input.Phone, body); err != nil {
			h.logger.Error("SMS send failed", map[string]interface{}{"schemeId": scheme.ID, "error": err.Error()})
			out.FailedChannels = append(out.FailedChannels, ChannelSMS)
		} else {
			out.Channels = append(out.Channels, ChannelSMS)
		}
	}

	switch {
	case attempted == 0:
		out.Status = StatusDisabled
	case len(out.Channels) == 0:
		// nothing went out, so a retry cannot duplicate a message
		return nil, apperrors.NewNotificationSendFailedError(
			strings.Join(out.FailedChannels, ","), ErrNotificationSendFailed).
			WithMetadata("schemeId", scheme.ID)
	case len(out.FailedChannels) > 0:
		out.Status = StatusPartial
	default:
		out.Status = StatusSent
	}

	h.logger.Info("application guide delivered", map[string]interface{}{
		"schemeId": scheme.ID,
		"status":   out.Status,
		"channels": out.Channels,
	})
	return out, nil
}

// resolveScheme prefers an explicit scheme id, then the session focus, then
// the session's top candidate.
func (h *Handler) resolveScheme(input *Input) (*models.Scheme, error) {
	if input.SchemeID != "" {
		s, ok := h.catalog.Find(input.SchemeID)
		if !ok {
			return nil, apperrors.NewFocusNotResolvedError(input.SessionID).
				WithMetadata("schemeId", input.SchemeID)
		}
		return s, nil
	}

	view, err := h.sessions.View(input.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, apperrors.NewSessionNotFoundError(input.SessionID)
		}
		return nil, err
	}
	if view.Focus != nil {
		return view.Focus, nil
	}
	if len(view.Candidates) > 0 {
		return view.Candidates[0].Scheme, nil
	}
	return nil, apperrors.NewFocusNotResolvedError(input.SessionID)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
