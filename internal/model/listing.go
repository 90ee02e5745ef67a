package model

import (
	"context"
	"time"
)

// Listing is a single job posting as returned by the listings endpoint.
type Listing struct {
	Title    string    `json:"title"`
	Company  string    `json:"company"`
	Location string    `json:"location"`
	Link     string    `json:"link"`
	PostedAt time.Time `json:"postedDate"`
}

// Subscription is a saved job alert tied to an email address.
type Subscription struct {
	ID           string
	Email        string
	Criteria     []Criterion
	LastNotified time.Time // watermark: only listings posted after this are new

	// CriteriaErr is set by the loader when the persisted criteria could not
	// be decoded. The subscription is reported as failed for the run.
	CriteriaErr error
}

// Email is a single outgoing message.
type Email struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// ListingSource fetches the current set of job listings.
type ListingSource interface {
	FetchListings(ctx context.Context) ([]Listing, error)
}

// SubscriptionStore opens the transaction a run works in.
type SubscriptionStore interface {
	Begin(ctx context.Context) (SubscriptionTx, error)
	Close() error
}

// SubscriptionTx reads subscriptions and advances watermarks inside one
// transaction. Exactly one of Commit or Rollback ends it.
type SubscriptionTx interface {
	ListSubscriptions(ctx context.Context) ([]Subscription, error)
	UpdateLastNotified(ctx context.Context, id string, at time.Time) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Mailer delivers an email through a provider.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}
