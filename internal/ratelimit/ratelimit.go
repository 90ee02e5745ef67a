package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/amishk599/jobwatch/internal/model"
)

// Ensure RateLimitedMailer implements model.Mailer.
var _ model.Mailer = (*RateLimitedMailer)(nil)

// RateLimitedMailer is a decorator that enforces a minimum gap between sends
// before delegating to the wrapped Mailer. Transactional email providers
// reject bursts above their per-second quota.
type RateLimitedMailer struct {
	inner   model.Mailer
	limiter *rate.Limiter
}

// NewRateLimitedMailer wraps a Mailer so consecutive sends are at least
// minDelay apart. A non-positive minDelay disables limiting.
func NewRateLimitedMailer(inner model.Mailer, minDelay time.Duration) *RateLimitedMailer {
	limit := rate.Inf
	if minDelay > 0 {
		limit = rate.Every(minDelay)
	}
	return &RateLimitedMailer{
		inner:   inner,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Send blocks until the limiter allows a request, then delegates to the
// wrapped mailer. Returns an error if ctx is cancelled while waiting.
func (m *RateLimitedMailer) Send(ctx context.Context, email model.Email) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", email.To, err)
	}
	return m.inner.Send(ctx, email)
}
