package notifier

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/jobwatch/internal/model"
)

func sampleListing(title, company string) model.Listing {
	return model.Listing{
		Title:    title,
		Company:  company,
		Location: "Remote, US",
		Link:     "https://example.com/apply/" + company,
		PostedAt: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestCompose(t *testing.T) {
	sub := model.Subscription{ID: "s1", Email: "dev@example.com"}
	matches := []model.Listing{
		sampleListing("Backend Engineer", "Acme Corp"),
		sampleListing("SRE <Platform>", "Globex"),
	}

	email, err := Compose("alerts@example.com", sub, matches)
	if err != nil {
		t.Fatalf("Compose() = %v", err)
	}
	if email.From != "alerts@example.com" || email.To != "dev@example.com" {
		t.Errorf("envelope = %q -> %q", email.From, email.To)
	}
	if email.Subject != "2 new job matches" {
		t.Errorf("Subject = %q", email.Subject)
	}
	for _, want := range []string{"Backend Engineer", "Acme Corp", "https://example.com/apply/Globex", "2024-01-02", "SRE &lt;Platform&gt;"} {
		if !strings.Contains(email.HTML, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
	if strings.Contains(email.HTML, "<Platform>") {
		t.Error("listing title was not escaped")
	}
}

func TestSubject(t *testing.T) {
	tests := map[int]string{1: "1 new job match", 2: "2 new job matches", 10: "10 new job matches"}
	for n, want := range tests {
		if got := Subject(n); got != want {
			t.Errorf("Subject(%d) = %q, want %q", n, got, want)
		}
	}
}

type recordingMailer struct {
	sent []model.Email
}

func (r *recordingMailer) Send(_ context.Context, e model.Email) error {
	r.sent = append(r.sent, e)
	return nil
}

func TestSendTestMessage(t *testing.T) {
	rec := &recordingMailer{}
	if err := SendTestMessage(context.Background(), rec, "alerts@example.com", "me@example.com"); err != nil {
		t.Fatalf("SendTestMessage() = %v", err)
	}
	if len(rec.sent) != 1 || rec.sent[0].To != "me@example.com" || rec.sent[0].Subject != "1 new job match" {
		t.Errorf("sent = %+v", rec.sent)
	}
}
