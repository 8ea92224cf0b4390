// internal/workers/notification/send-application-guide/handler_test.go
package sendapplicationguide

import (
	"context"
	"errors"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scheme-assistant/internal/catalog"
	"scheme-assistant/internal/common/aws"
	apperrors "scheme-assistant/internal/common/errors"
	"scheme-assistant/internal/common/logger"
	"scheme-assistant/internal/common/observability"
	"scheme-assistant/internal/dialogue"
	"scheme-assistant/internal/models"
	"scheme-assistant/internal/render"
	"scheme-assistant/internal/session"
)

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

type stubRenderer struct{}

func (stubRenderer) Render(context.Context, render.Prompt) string { return "పథకాలు" }

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]models.Scheme{
		{
			ID: "aasara_pension", Name: "ఆసరా పింఛను", NameEnglish: "Aasara Pension",
			Eligibility: models.Constraints{AgeMin: models.IntPtr(57), Region: "Telangana"},
			Application: models.ApplicationProcess{
				Steps:           []string{"గ్రామ పంచాయతీలో దరఖాస్తు ఇవ్వండి"},
				OfflineLocation: "గ్రామ పంచాయతీ",
			},
		},
		{
			ID: "pm_kisan", Name: "పీఎం కిసాన్",
			Eligibility: models.Constraints{Region: "All India", Occupations: models.StringList{"farmer"}},
			Application: models.ApplicationProcess{OnlineURL: "https://pmkisan.gov.in"},
		},
	})
	require.NoError(t, err)
	return c
}

type harness struct {
	handler  *Handler
	sessions *session.Manager
	emails   []*ses.SendEmailInput
	sms      []*sns.PublishInput
	sesErr   error
	snsErr   error
}

func newHarness(t *testing.T, cfg *Config) *harness {
	t.Helper()
	h := &harness{}
	c := testCatalog(t)
	log := logger.NewTestLogger(t)

	engine := dialogue.NewEngine(c, stubRenderer{}, dialogue.Options{}, log, observability.NewNoop())
	h.sessions = session.NewManager(engine, session.Config{}, log)

	sesMock := &MockSESService{
		SendEmailFunc: func(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			if h.sesErr != nil {
				return nil, h.sesErr
			}
			h.emails = append(h.emails, params)
			return &ses.SendEmailOutput{MessageId: awssdk.String("email-1")}, nil
		},
	}
	snsMock := &MockSNSService{
		PublishFunc: func(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
			if h.snsErr != nil {
				return nil, h.snsErr
			}
			h.sms = append(h.sms, params)
			return &sns.PublishOutput{MessageId: awssdk.String("sms-1")}, nil
		},
	}

	h.handler = NewHandler(cfg, c, h.sessions, dialogue.MessagesFor(render.Telugu),
		aws.NewEmailSender(sesMock, "schemes@example.gov.in"),
		aws.NewSMSSender(snsMock, "SCHEME"), log)
	h.handler.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	return h
}

func enabled() *Config {
	return &Config{EmailEnabled: true, SMSEnabled: true, Timeout: time.Second}
}

func TestHandler_Execute_ExplicitScheme(t *testing.T) {
	h := newHarness(t, enabled())

	out, err := h.handler.Execute(context.Background(), &Input{
		SchemeID: "aasara_pension",
		Email:    "citizen@example.com",
		Phone:    "+919876543210",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, out.NotificationID)
	assert.Equal(t, "aasara_pension", out.SchemeID)
	assert.Equal(t, StatusSent, out.Status)
	assert.Equal(t, []string{ChannelEmail, ChannelSMS}, out.Channels)
	assert.Equal(t, "2026-03-01T10:00:00Z", out.SentAt)

	require.Len(t, h.emails, 1)
	assert.Equal(t, "ఆసరా పింఛను", *h.emails[0].Message.Subject.Data)
	steps := dialogue.MessagesFor(render.Telugu).ApplicationSteps(mustFind(t, h, "aasara_pension"))
	assert.Equal(t, steps, *h.emails[0].Message.Body.Text.Data)

	require.Len(t, h.sms, 1)
	assert.Equal(t, "+919876543210", *h.sms[0].PhoneNumber)
	assert.Equal(t, steps, *h.sms[0].Message)
}

func TestHandler_Execute_SessionFocus(t *testing.T) {
	h := newHarness(t, enabled())
	ctx := context.Background()

	id, err := h.sessions.Create()
	require.NoError(t, err)
	for _, u := range []string{"hello", "60 years Telangana", "I don't work"} {
		_, err := h.sessions.Turn(ctx, id, u, nil)
		require.NoError(t, err)
	}

	// no focus yet: falls back to the top candidate
	out, err := h.handler.Execute(ctx, &Input{SessionID: id, Email: "citizen@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "aasara_pension", out.SchemeID)
	assert.Equal(t, []string{ChannelEmail}, out.Channels)
	assert.Empty(t, h.sms)
}

func TestHandler_Execute_Resolution(t *testing.T) {
	h := newHarness(t, enabled())
	ctx := context.Background()

	fresh, err := h.sessions.Create()
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    *Input
		wantCode apperrors.ErrorCode
	}{
		{"unknown scheme", &Input{SchemeID: "missing"}, apperrors.ErrCodeFocusNotResolved},
		{"unknown session", &Input{SessionID: "missing"}, apperrors.ErrCodeSessionNotFound},
		{"session without candidates", &Input{SessionID: fresh}, apperrors.ErrCodeFocusNotResolved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.handler.Execute(ctx, tt.input)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.wantCode))
		})
	}
}

func TestHandler_Execute_Delivery(t *testing.T) {
	tests := []struct {
		name         string
		config       *Config
		input        *Input
		sesErr       error
		snsErr       error
		wantStatus   string
		wantChannels []string
		wantFailed   []string
		wantErrCode  apperrors.ErrorCode
	}{
		{
			name:       "channels disabled",
			config:     &Config{Timeout: time.Second},
			input:      &Input{SchemeID: "pm_kisan", Email: "citizen@example.com", Phone: "+919876543210"},
			wantStatus: StatusDisabled,
		},
		{
			name:       "no contact details",
			config:     enabled(),
			input:      &Input{SchemeID: "pm_kisan"},
			wantStatus: StatusDisabled,
		},
		{
			name:         "sms fails after email",
			config:       enabled(),
			input:        &Input{SchemeID: "pm_kisan", Email: "citizen@example.com", Phone: "+919876543210"},
			snsErr:       errors.New("throttled"),
			wantStatus:   StatusPartial,
			wantChannels: []string{ChannelEmail},
			wantFailed:   []string{ChannelSMS},
		},
		{
			name:        "every channel fails",
			config:      enabled(),
			input:       &Input{SchemeID: "pm_kisan", Email: "citizen@example.com", Phone: "+919876543210"},
			sesErr:      errors.New("rejected"),
			snsErr:      errors.New("throttled"),
			wantErrCode: apperrors.ErrCodeNotificationSendFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.config)
			h.sesErr, h.snsErr = tt.sesErr, tt.snsErr

			out, err := h.handler.Execute(context.Background(), tt.input)

			if tt.wantErrCode != "" {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, tt.wantErrCode))
				std, ok := apperrors.AsStandard(err)
				require.True(t, ok)
				assert.True(t, std.Retryable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, out.Status)
			assert.Equal(t, tt.wantChannels, out.Channels)
			assert.Equal(t, tt.wantFailed, out.FailedChannels)
		})
	}
}

func TestInputSchema(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		valid bool
	}{
		{"scheme id", `{"schemeId": "pm_kisan"}`, true},
		{"session id", `{"sessionId": "abc", "phone": "+919876543210"}`, true},
		{"neither", `{"email": "citizen@example.com"}`, false},
		{"bad phone", `{"schemeId": "pm_kisan", "phone": "98765"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := schema.ValidateBytes([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid)
		})
	}
}

func mustFind(t *testing.T, h *harness, id string) *models.Scheme {
	t.Helper()
	s, ok := h.handler.catalog.Find(id)
	require.True(t, ok)
	return s
}
