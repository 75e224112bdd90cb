package tasks

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/lysyi3m/news-importer/app/importer"
)

// ImportFeedsTask runs one batch over every active feed. It never retries:
// the next tick is the retry.
type ImportFeedsTask struct {
	Task
	service ImportService
}

func NewImportFeedsTask(service ImportService) *ImportFeedsTask {
	task := NewTask(TaskTypeImportFeeds, "all")
	task.MaxRetries = 0
	return &ImportFeedsTask{
		Task:    task,
		service: service,
	}
}

func (t *ImportFeedsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	summary, err := t.service.ImportAll(ctx)
	switch {
	case errors.Is(err, importer.ErrLockActive):
		slog.Info("Import skipped, previous run lock still active", "task_id", t.ID)
		return nil
	case errors.Is(err, importer.ErrNoSources):
		slog.Info("Import skipped, no feeds registered", "task_id", t.ID)
		return nil
	case err != nil:
		return err
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"run_id", summary.RunID,
		"duration", t.GetDuration(),
		"published", summary.Published,
		"skipped", summary.Skipped,
		"failed", summary.Failed)

	return nil
}

// ImportFeedTask runs one batch over a single registered feed
type ImportFeedTask struct {
	Task
	FeedID  int64
	service ImportService
}

func NewImportFeedTask(service ImportService, feedID int64) *ImportFeedTask {
	task := NewTask(TaskTypeImportFeed, strconv.FormatInt(feedID, 10))
	task.MaxRetries = 0
	return &ImportFeedTask{
		Task:    task,
		FeedID:  feedID,
		service: service,
	}
}

func (t *ImportFeedTask) Execute(ctx context.Context) error {
	summary, err := t.service.ImportFeed(ctx, t.FeedID)
	if err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"feed_id", t.FeedID,
		"run_id", summary.RunID,
		"duration", t.GetDuration(),
		"published", summary.Published)

	return nil
}
