package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/amishk599/jobwatch/internal/model"
)

const resendBaseURL = "https://api.resend.com"

// Ensure ResendMailer implements model.Mailer.
var _ model.Mailer = (*ResendMailer)(nil)

// ResendMailer sends email through the Resend HTTP API.
type ResendMailer struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewResendMailer returns a mailer for the Resend API. An empty baseURL
// uses the public endpoint.
func NewResendMailer(baseURL, apiKey string, httpClient *http.Client, logger *slog.Logger) *ResendMailer {
	if baseURL == "" {
		baseURL = resendBaseURL
	}
	return &ResendMailer{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendResponse struct {
	ID string `json:"id"`
}

type resendError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Send posts one email. Any non-2xx response is returned as *model.HTTPError.
func (m *ResendMailer) Send(ctx context.Context, email model.Email) error {
	body, err := json.Marshal(resendRequest{
		From:    email.From,
		To:      []string{email.To},
		Subject: email.Subject,
		HTML:    email.HTML,
	})
	if err != nil {
		return fmt.Errorf("marshal resend payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to resend: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post to resend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr resendError
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return &model.HTTPError{StatusCode: resp.StatusCode, Err: fmt.Errorf("resend: %s", apiErr.Message)}
		}
		return &model.HTTPError{StatusCode: resp.StatusCode, Err: fmt.Errorf("resend returned %d", resp.StatusCode)}
	}

	var out resendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		m.logger.Warn("resend response not decodable", "to", email.To, "error", err)
	}
	m.logger.Info("email sent", "provider", "resend", "to", email.To, "id", out.ID)
	return nil
}
