package notifier

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/amishk599/jobwatch/internal/model"
)

var digestTemplate = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif;">
<h2>{{.Heading}}</h2>
<ul>
{{- range .Listings}}
<li style="margin-bottom: 12px;">
<a href="{{.Link}}"><strong>{{.Title}}</strong></a><br>
{{.Company}}{{if .Location}} &middot; {{.Location}}{{end}}<br>
<small>Posted {{.Posted}}</small>
</li>
{{- end}}
</ul>
<p><small>You are receiving this because you subscribed to job alerts with this address.</small></p>
</body>
</html>
`))

type digestListing struct {
	Title    string
	Company  string
	Location string
	Link     string
	Posted   string
}

type digestData struct {
	Heading  string
	Listings []digestListing
}

// Compose builds the single summary email for a subscription's matches.
func Compose(from string, sub model.Subscription, matches []model.Listing) (model.Email, error) {
	subject := Subject(len(matches))

	data := digestData{Heading: subject}
	for _, l := range matches {
		data.Listings = append(data.Listings, digestListing{
			Title:    l.Title,
			Company:  l.Company,
			Location: l.Location,
			Link:     l.Link,
			Posted:   l.PostedAt.UTC().Format(time.DateOnly),
		})
	}

	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, data); err != nil {
		return model.Email{}, fmt.Errorf("render digest for %s: %w", sub.Email, err)
	}

	return model.Email{
		From:    from,
		To:      sub.Email,
		Subject: subject,
		HTML:    buf.String(),
	}, nil
}

// Subject returns the email subject for n matches.
func Subject(n int) string {
	if n == 1 {
		return "1 new job match"
	}
	return fmt.Sprintf("%d new job matches", n)
}

// SendTestMessage sends a sample digest to verify the provider integration.
func SendTestMessage(ctx context.Context, m model.Mailer, from, to string) error {
	sub := model.Subscription{ID: "test", Email: to}
	email, err := Compose(from, sub, []model.Listing{{
		Title:    "Test Notification",
		Company:  "jobwatch",
		Location: "Everywhere",
		Link:     "https://example.com/jobs/test",
		PostedAt: time.Now(),
	}})
	if err != nil {
		return err
	}
	return m.Send(ctx, email)
}
