package events

import (
	"context"
	"log/slog"
)

type LogNotifier struct{}

func (LogNotifier) ContentImported(_ context.Context, event ContentImported) {
	slog.Info("Content imported",
		"article_id", event.ArticleID,
		"slug", event.Slug,
		"feed", event.FeedURL)
}

func (LogNotifier) ImportComplete(_ context.Context, event ImportCompleted) {
	slog.Info("Import complete",
		"run_id", event.RunID,
		"feeds", event.Feeds,
		"published", event.Published,
		"skipped", event.Skipped,
		"failed", event.Failed)
}
