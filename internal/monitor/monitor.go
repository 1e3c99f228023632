// Package monitor drives the poll, classify, notify and persist pipeline.
package monitor

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stellarlinkco/truthwatch/internal/classify"
	"github.com/stellarlinkco/truthwatch/internal/config"
	"github.com/stellarlinkco/truthwatch/internal/cursor"
	"github.com/stellarlinkco/truthwatch/internal/extract"
	"github.com/stellarlinkco/truthwatch/internal/feed"
	"github.com/stellarlinkco/truthwatch/internal/notify"
)

const (
	persistMaxTries      = 3
	persistRetryInterval = time.Second
)

// Notifier delivers one alert; satisfied by notify.Manager.
type Notifier interface {
	Notify(ctx context.Context, alert notify.Alert) error
}

// Outcome says how a cycle ended.
type Outcome string

const (
	OutcomeFetchError Outcome = "fetch_error"
	OutcomeNoPosts    Outcome = "no_posts"
	OutcomeDuplicate  Outcome = "duplicate"
	OutcomeProcessed  Outcome = "processed"
)

// Result reports what one cycle did. FetchErr, ClassifyErr and NotifyErr
// record failures the cycle absorbed under its fail-safe policies.
type Result struct {
	Outcome     Outcome
	PostID      string
	Verdict     bool
	Rationale   string
	Notified    bool
	FetchErr    error
	ClassifyErr error
	NotifyErr   error
}

// Monitor owns the cursor and runs one pipeline pass at a time. It is not
// safe for concurrent use; Run executes cycles strictly sequentially.
type Monitor struct {
	cfg        *config.Config
	fetcher    feed.Fetcher
	classifier classify.Classifier
	notifier   Notifier
	store      cursor.Store

	lastID      string
	now         func() time.Time
	persistWait time.Duration
}

// New loads the persisted cursor and holds it in memory for the lifetime of
// the monitor.
func New(cfg *config.Config, fetcher feed.Fetcher, classifier classify.Classifier, notifier Notifier, store cursor.Store) (*Monitor, error) {
	lastID, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load cursor: %w", err)
	}
	if lastID == "" {
		log.Printf("[monitor] no cursor found, starting cold")
	} else {
		log.Printf("[monitor] resuming after post %s", lastID)
	}

	return &Monitor{
		cfg:         cfg,
		fetcher:     fetcher,
		classifier:  classifier,
		notifier:    notifier,
		store:       store,
		lastID:      lastID,
		now:         time.Now,
		persistWait: persistRetryInterval,
	}, nil
}

// LastID returns the id of the last fully processed post, or "".
func (m *Monitor) LastID() string { return m.lastID }

// Cycle runs one fetch-classify-notify-persist pass. Fetch, classification
// and notification failures are absorbed per policy and reported in the
// Result; the returned error is non-nil only when the cursor could not be
// persisted after retries, which callers must treat as fatal.
func (m *Monitor) Cycle(ctx context.Context) (Result, error) {
	log.Printf("[monitor] checking @%s for new posts", m.cfg.Account.Handle)

	// Cold start is bounded by the lookback window instead of an id query.
	var createdAfter time.Time
	if m.lastID == "" {
		createdAfter = m.now().Add(-m.cfg.Poll.LookbackDuration())
	}

	posts, err := m.fetcher.Fetch(ctx, m.lastID, createdAfter)
	if err != nil {
		log.Printf("[monitor] fetch failed: %v", err)
		return Result{Outcome: OutcomeFetchError, FetchErr: err}, nil
	}
	if len(posts) == 0 {
		log.Printf("[monitor] no posts found")
		return Result{Outcome: OutcomeNoPosts}, nil
	}

	// Only the newest candidate is processed per cycle; anything older in
	// the same batch is superseded.
	newest := feed.Newest(posts)
	if newest.ID == m.lastID {
		log.Printf("[monitor] no new posts (newest %s already processed)", newest.ID)
		return Result{Outcome: OutcomeDuplicate, PostID: newest.ID}, nil
	}

	log.Printf("[monitor] new post found: %s", newest.ID)
	res := Result{Outcome: OutcomeProcessed, PostID: newest.ID}

	if content := extract.Text(newest.Content); content != "" {
		verdict, err := m.classifier.Classify(ctx, content)
		if err != nil {
			// Fail safe: never notify on a classifier error. The post still
			// counts as processed so it is not retried forever.
			log.Printf("[monitor] classification failed: %v", err)
			res.ClassifyErr = err
		} else {
			res.Verdict = verdict.CouldImpactMarket
			res.Rationale = verdict.Rationale
			if verdict.CouldImpactMarket {
				log.Printf("[monitor] post %s could impact market, sending alert", newest.ID)
				alert := notify.Alert{Content: content, Rationale: verdict.Rationale}
				if err := m.notifier.Notify(ctx, alert); err != nil {
					log.Printf("[monitor] notification failed: %v", err)
					res.NotifyErr = err
				} else {
					res.Notified = true
				}
			} else {
				log.Printf("[monitor] post %s unlikely to impact market", newest.ID)
			}
		}
	} else {
		log.Printf("[monitor] post %s has no extractable text, skipping analysis", newest.ID)
	}

	// The cursor advances whether or not classification or notification
	// succeeded; the same post must never be reprocessed.
	if err := m.persist(ctx, newest.ID); err != nil {
		return res, fmt.Errorf("persist cursor %s: %w", newest.ID, err)
	}
	m.lastID = newest.ID

	return res, nil
}

// persist saves the cursor, retrying transient storage failures. Giving up
// here breaks the no-reprocess guarantee, so exhaustion surfaces as an
// error instead of being swallowed.
func (m *Monitor) persist(ctx context.Context, id string) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = m.persistWait

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if err := m.store.Save(id); err != nil {
			log.Printf("[monitor] cursor save failed, retrying: %v", err)
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(persistMaxTries))
	return err
}

// Run executes cycles until ctx is cancelled: one immediately, then one per
// poll interval, or on the configured cron schedule when one is set. A
// cycle that cannot persist its cursor stops the loop so a supervisor can
// restart the process.
func (m *Monitor) Run(ctx context.Context) error {
	if m.cfg.Poll.Schedule != "" {
		return m.runCron(ctx)
	}

	interval := m.cfg.Poll.IntervalDuration()
	log.Printf("[monitor] watching @%s every %s", m.cfg.Account.Handle, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := m.Cycle(ctx); err != nil {
			return err
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			log.Printf("[monitor] stopped")
			return ctx.Err()
		}
	}
}
