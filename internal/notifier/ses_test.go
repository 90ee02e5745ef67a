package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
)

type fakeSES struct {
	in  *sesv2.SendEmailInput
	err error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESMailer_Send(t *testing.T) {
	fake := &fakeSES{}
	m := &SESMailer{client: fake, logger: discardLogger()}

	if err := m.Send(context.Background(), sampleEmail()); err != nil {
		t.Fatalf("Send() = %v", err)
	}
	if aws.ToString(fake.in.FromEmailAddress) != "alerts@example.com" {
		t.Errorf("From = %q", aws.ToString(fake.in.FromEmailAddress))
	}
	if to := fake.in.Destination.ToAddresses; len(to) != 1 || to[0] != "dev@example.com" {
		t.Errorf("To = %v", to)
	}
	msg := fake.in.Content.Simple
	if aws.ToString(msg.Subject.Data) != "1 new job match" {
		t.Errorf("Subject = %q", aws.ToString(msg.Subject.Data))
	}
	if aws.ToString(msg.Body.Html.Data) != "<p>hi</p>" {
		t.Errorf("Html = %q", aws.ToString(msg.Body.Html.Data))
	}
}

func TestSESMailer_Error(t *testing.T) {
	m := &SESMailer{client: &fakeSES{err: errors.New("throttled")}, logger: discardLogger()}
	if err := m.Send(context.Background(), sampleEmail()); err == nil {
		t.Fatal("expected error, got nil")
	}
}
