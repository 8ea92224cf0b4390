// internal/common/aws/ses.go
package aws

import (
	"context"
	"errors"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

var ErrMissingRecipient = errors.New("MISSING_RECIPIENT")

// SESAPI is the SES call used here; *ses.Client satisfies it.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailSender sends UTF-8 plain text mail from one address.
type EmailSender struct {
	client SESAPI
	from   string
}

func NewEmailSender(client SESAPI, from string) *EmailSender {
	return &EmailSender{client: client, from: from}
}

func NewSESClient(cfg awssdk.Config) *ses.Client {
	return ses.NewFromConfig(cfg)
}

// Send returns the SES message id.
func (s *EmailSender) Send(ctx context.Context, to, subject, body string) (string, error) {
	if to == "" {
		return "", ErrMissingRecipient
	}
	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: []string{to}},
		Message: &types.Message{
			Subject: &types.Content{Data: awssdk.String(subject), Charset: awssdk.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: awssdk.String(body), Charset: awssdk.String("UTF-8")},
			},
		},
		Source: awssdk.String(s.from),
	})
	if err != nil {
		return "", err
	}
	return awssdk.ToString(out.MessageId), nil
}
