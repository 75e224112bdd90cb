package tasks

import (
	"context"

	"github.com/lysyi3m/news-importer/app/database"
	"github.com/lysyi3m/news-importer/app/importer"
)

// TaskSchedulerInterface is what main and the API need from the scheduler
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// ImportService runs import batches
type ImportService interface {
	ImportAll(ctx context.Context) (importer.Summary, error)
	ImportFeed(ctx context.Context, feedID int64) (importer.Summary, error)
}

// SearchIndexer rebuilds the search index from stored articles
type SearchIndexer interface {
	Reindex(articles []database.Article) error
}
