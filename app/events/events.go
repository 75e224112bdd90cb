package events

import (
	"context"
	"time"
)

// ContentImported is emitted once per article that reached published status
type ContentImported struct {
	ArticleID  int64     `json:"article_id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Excerpt    string    `json:"excerpt"`
	Language   string    `json:"language"`
	FeedURL    string    `json:"feed_url"`
	Link       string    `json:"link,omitempty"`
	ImportedAt time.Time `json:"imported_at"`
}

// ImportCompleted is emitted once after a batch finished
type ImportCompleted struct {
	RunID      string    `json:"run_id"`
	Feeds      int       `json:"feeds"`
	Published  int       `json:"published"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	FinishedAt time.Time `json:"finished_at"`
}

// Notifier receives import events. Implementations must not block the import
// for long; delivery errors are theirs to log.
type Notifier interface {
	ContentImported(ctx context.Context, event ContentImported)
	ImportComplete(ctx context.Context, event ImportCompleted)
}

// Multi fans each event out to every notifier in order
type Multi []Notifier

func (m Multi) ContentImported(ctx context.Context, event ContentImported) {
	for _, n := range m {
		n.ContentImported(ctx, event)
	}
}

func (m Multi) ImportComplete(ctx context.Context, event ImportCompleted) {
	for _, n := range m {
		n.ImportComplete(ctx, event)
	}
}

// Nop discards all events
type Nop struct{}

func (Nop) ContentImported(context.Context, ContentImported) {}
func (Nop) ImportComplete(context.Context, ImportCompleted)  {}
