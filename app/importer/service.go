package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/news-importer/app/database"
	"github.com/lysyi3m/news-importer/app/events"
)

// Sources is the read side of the feed registry
type Sources interface {
	ActiveURLs(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id int64) (*database.Feed, error)
}

// Service is the trigger surface shared by the scheduler and the admin API
type Service struct {
	importer *Importer
	sources  Sources
	lock     *Lock
	notifier events.Notifier
}

func NewService(importer *Importer, sources Sources, lock *Lock, notifier events.Notifier) *Service {
	if notifier == nil {
		notifier = events.Nop{}
	}
	return &Service{
		importer: importer,
		sources:  sources,
		lock:     lock,
		notifier: notifier,
	}
}

// ImportAll runs a batch over every active feed. The run is refused with
// ErrLockActive while a previous run's lock has not expired.
func (s *Service) ImportAll(ctx context.Context) (Summary, error) {
	if err := s.lock.Acquire(ctx); err != nil {
		return Summary{}, err
	}

	urls, err := s.sources.ActiveURLs(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to enumerate feeds: %w", err)
	}
	if len(urls) == 0 {
		slog.Info("No feeds found")
		return Summary{}, ErrNoSources
	}

	summary, err := s.importer.Run(ctx, urls)
	if err != nil {
		return summary, err
	}

	s.complete(ctx, summary)
	return summary, nil
}

// ImportFeed runs a batch over one registered feed. It does not take the lock.
func (s *Service) ImportFeed(ctx context.Context, feedID int64) (Summary, error) {
	feed, err := s.sources.Get(ctx, feedID)
	if err != nil {
		return Summary{}, err
	}

	summary, err := s.importer.Run(ctx, []string{feed.URL})
	if err != nil {
		return summary, err
	}

	s.complete(ctx, summary)
	return summary, nil
}

// LockExpiry reports when the current import lock expires
func (s *Service) LockExpiry(ctx context.Context) (time.Time, error) {
	return s.lock.Expiry(ctx)
}

func (s *Service) complete(ctx context.Context, summary Summary) {
	s.notifier.ImportComplete(ctx, events.ImportCompleted{
		RunID:      summary.RunID,
		Feeds:      summary.Feeds,
		Published:  summary.Published,
		Skipped:    summary.Skipped,
		Failed:     summary.Failed,
		FinishedAt: summary.FinishedAt,
	})
}
