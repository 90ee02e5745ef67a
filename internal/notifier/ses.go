package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/amishk599/jobwatch/internal/model"
)

// Ensure SESMailer implements model.Mailer.
var _ model.Mailer = (*SESMailer)(nil)

// sesAPI is the subset of the SES v2 client the mailer uses.
type sesAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESMailer sends email through Amazon SES v2.
type SESMailer struct {
	client sesAPI
	logger *slog.Logger
}

// NewSESMailer loads the default AWS credential chain for region.
func NewSESMailer(ctx context.Context, region string, logger *slog.Logger) (*SESMailer, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SESMailer{client: sesv2.NewFromConfig(awsCfg), logger: logger}, nil
}

// Send delivers one HTML email.
func (m *SESMailer) Send(ctx context.Context, email model.Email) error {
	out, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(email.From),
		Destination: &types.Destination{
			ToAddresses: []string{email.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(email.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(email.HTML), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send to %s: %w", email.To, err)
	}
	m.logger.Info("email sent", "provider", "ses", "to", email.To, "id", aws.ToString(out.MessageId))
	return nil
}
