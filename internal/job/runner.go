package job

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/amishk599/jobwatch/internal/matcher"
	"github.com/amishk599/jobwatch/internal/metrics"
	"github.com/amishk599/jobwatch/internal/model"
	"github.com/amishk599/jobwatch/internal/notifier"
)

// Report is the outcome of one run, serialized as the trigger response.
type Report struct {
	RunID     string   `json:"-"`
	Success   bool     `json:"success"`
	Processed []Result `json:"processed"`
}

// Result is the per-subscription outcome.
type Result struct {
	Email           string `json:"email"`
	MatchedListings *int   `json:"matchedListings,omitempty"`
	Error           string `json:"error,omitempty"`
	Success         bool   `json:"success"`
}

// Runner owns the full notification pipeline for one run:
// load subscriptions → fetch listings → match → email → advance watermark.
type Runner struct {
	mu sync.Mutex // one run at a time

	store  model.SubscriptionStore
	source model.ListingSource
	mailer model.Mailer
	from   string
	dryRun bool
	now    func() time.Time
	logger *slog.Logger
}

// NewRunner creates a runner wired with all its dependencies. from is the
// sender address on every digest. A dry-run runner rolls back its watermark
// updates instead of committing them.
func NewRunner(
	store model.SubscriptionStore,
	source model.ListingSource,
	mailer model.Mailer,
	from string,
	dryRun bool,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		store:  store,
		source: source,
		mailer: mailer,
		from:   from,
		dryRun: dryRun,
		now:    time.Now,
		logger: logger,
	}
}

// Run executes one pass over every subscription. The returned error is
// non-nil only for run-level failures (store unreachable, transaction
// failure); per-subscription failures are recorded in the report. Calls
// are serialized.
//
// The run is detached from ctx cancellation: once an email has gone out its
// watermark must be committed, so a disconnecting caller or a shutdown
// signal does not abort the transaction. Values on ctx are kept.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	ctx = context.WithoutCancel(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	runID := ulid.MustNew(ulid.Now(), rand.Reader).String()
	logger := r.logger.With("run_id", runID)

	// One timestamp for every watermark advanced in this run.
	now := r.now()

	report, err := r.run(ctx, now, logger)
	metrics.RunDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		logger.Error("run failed", "error", err)
		return nil, err
	}
	metrics.RunsTotal.WithLabelValues("success").Inc()
	report.RunID = runID

	failed := 0
	for _, res := range report.Processed {
		if !res.Success {
			failed++
		}
	}
	logger.Info("run complete",
		"subscriptions", len(report.Processed),
		"failed", failed,
		"dry_run", r.dryRun,
		"duration", time.Since(start).String(),
	)
	return report, nil
}

func (r *Runner) run(ctx context.Context, now time.Time, logger *slog.Logger) (*Report, error) {
	tx, err := r.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting run: %w", err)
	}
	done := false
	defer func() {
		if done {
			return
		}
		if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil {
			logger.Error("rollback failed", "error", err)
		}
	}()

	subs, err := tx.ListSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading subscriptions: %w", err)
	}

	report := &Report{Success: true, Processed: make([]Result, 0, len(subs))}
	if len(subs) == 0 {
		logger.Info("no subscriptions")
	} else {
		// Fetched once for the whole run. A fetch failure fails every
		// subscription but not the run.
		listings, fetchErr := r.source.FetchListings(ctx)
		if fetchErr != nil {
			logger.Error("listing fetch failed", "error", fetchErr)
		} else {
			logger.Info("fetched listings", "count", len(listings))
		}

		for _, sub := range subs {
			res := r.process(ctx, tx, sub, listings, fetchErr, now, logger)
			if res.Success {
				metrics.SubscriptionsProcessed.WithLabelValues("success").Inc()
			} else {
				metrics.SubscriptionsProcessed.WithLabelValues("failed").Inc()
			}
			report.Processed = append(report.Processed, res)
		}
	}

	if r.dryRun {
		if err := tx.Rollback(ctx); err != nil {
			return nil, fmt.Errorf("discarding dry run: %w", err)
		}
		done = true
		return report, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing run: %w", err)
	}
	done = true
	return report, nil
}

// process handles a single subscription. Every failure is captured in the
// result so the caller can move on to the next subscription.
func (r *Runner) process(
	ctx context.Context,
	tx model.SubscriptionTx,
	sub model.Subscription,
	listings []model.Listing,
	fetchErr error,
	now time.Time,
	logger *slog.Logger,
) Result {
	logger = logger.With("subscription", sub.ID)
	fail := func(err error) Result {
		logger.Error("subscription failed", "email", sub.Email, "error", err)
		return Result{Email: sub.Email, Error: err.Error(), Success: false}
	}

	if fetchErr != nil {
		return fail(fetchErr)
	}
	if sub.CriteriaErr != nil {
		return fail(sub.CriteriaErr)
	}

	matches := matcher.Match(sub, listings)
	count := len(matches)
	if count == 0 {
		logger.Debug("no new matches", "last_notified", sub.LastNotified)
		return Result{Email: sub.Email, MatchedListings: &count, Success: true}
	}

	email, err := notifier.Compose(r.from, sub, matches)
	if err != nil {
		return fail(err)
	}
	if err := r.mailer.Send(ctx, email); err != nil {
		return fail(fmt.Errorf("sending email: %w", err))
	}
	metrics.EmailsSent.Inc()
	metrics.ListingsMatched.Add(float64(count))

	if err := tx.UpdateLastNotified(ctx, sub.ID, now); err != nil {
		return fail(err)
	}

	logger.Info("notified subscription", "email", sub.Email, "matched", count)
	return Result{Email: sub.Email, MatchedListings: &count, Success: true}
}
