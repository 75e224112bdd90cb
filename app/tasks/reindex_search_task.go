package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/news-importer/app/database"
)

// ReindexSearchTask loads published articles into the search index
type ReindexSearchTask struct {
	Task
	articles database.ArticleRepository
	indexer  SearchIndexer
	limit    int
}

func NewReindexSearchTask(articles database.ArticleRepository, indexer SearchIndexer, limit int) *ReindexSearchTask {
	return &ReindexSearchTask{
		Task:     NewTask(TaskTypeReindexSearch, "articles"),
		articles: articles,
		indexer:  indexer,
		limit:    limit,
	}
}

func (t *ReindexSearchTask) Execute(ctx context.Context) error {
	articles, err := t.articles.ListPublishedArticles(ctx, t.limit)
	if err != nil {
		return fmt.Errorf("failed to load articles for indexing: %w", err)
	}

	if err := t.indexer.Reindex(articles); err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"duration", t.GetDuration(),
		"articles", len(articles))

	return nil
}
