package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/lysyi3m/news-importer/app/database"
	"github.com/lysyi3m/news-importer/app/events"
)

var _ events.Notifier = (*Index)(nil)

type Result struct {
	ArticleID int64   `json:"article_id"`
	Title     string  `json:"title"`
	Slug      string  `json:"slug"`
	Excerpt   string  `json:"excerpt"`
	Score     float64 `json:"score"`
}

// Index is a full text index of published articles. It subscribes to import
// events so new articles become searchable as soon as they are published.
type Index struct {
	mu  sync.RWMutex
	idx bleve.Index
}

// NewIndex opens or creates the index at path; an empty path keeps it in memory
func NewIndex(path string) (*Index, error) {
	if path == "" {
		idx, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory index: %w", err)
		}
		return &Index{idx: idx}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	idx, err := bleve.Open(path)
	if err != nil {
		idx, err = bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create index: %w", err)
		}
	}
	return &Index{idx: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.Store = true
	title.IncludeTermVectors = true

	excerpt := bleve.NewTextFieldMapping()
	excerpt.Analyzer = standard.Name
	excerpt.Store = true

	slug := bleve.NewKeywordFieldMapping()
	slug.Store = true

	language := bleve.NewKeywordFieldMapping()
	language.Store = true

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("excerpt", excerpt)
	dm.AddFieldMappingsAt("slug", slug)
	dm.AddFieldMappingsAt("language", language)

	im.DefaultMapping = dm
	return im
}

func docID(articleID int64) string {
	return "article:" + strconv.FormatInt(articleID, 10)
}

func (i *Index) ContentImported(_ context.Context, event events.ContentImported) {
	i.mu.Lock()
	defer i.mu.Unlock()

	err := i.idx.Index(docID(event.ArticleID), map[string]any{
		"title":    event.Title,
		"excerpt":  event.Excerpt,
		"slug":     event.Slug,
		"language": event.Language,
	})
	if err != nil {
		slog.Warn("Failed to index article", "article_id", event.ArticleID, "error", err)
	}
}

func (i *Index) ImportComplete(_ context.Context, event events.ImportCompleted) {
	count, err := i.idx.DocCount()
	if err != nil {
		return
	}
	slog.Debug("Search index updated", "run_id", event.RunID, "documents", count)
}

// Reindex adds or replaces the given articles in one batch
func (i *Index) Reindex(articles []database.Article) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.idx.NewBatch()
	for _, a := range articles {
		if err := batch.Index(docID(a.ID), map[string]any{
			"title":    a.Title,
			"excerpt":  a.Excerpt,
			"slug":     a.Slug,
			"language": a.Language,
		}); err != nil {
			return fmt.Errorf("failed to queue article %d: %w", a.ID, err)
		}
	}
	if err := i.idx.Batch(batch); err != nil {
		return fmt.Errorf("failed to index articles: %w", err)
	}
	return nil
}

// Search matches query against titles (boosted) and excerpts
func (i *Index) Search(query string, limit int) ([]Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []Result{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	var qs []bleveQuery.Query
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		qt := bleve.NewMatchQuery(tok)
		qt.SetField("title")
		qt.SetBoost(3.0)
		qs = append(qs, qt)

		qtp := bleve.NewPrefixQuery(tok)
		qtp.SetField("title")
		qtp.SetBoost(2.5)
		qs = append(qs, qtp)

		qe := bleve.NewMatchQuery(tok)
		qe.SetField("excerpt")
		qs = append(qs, qe)
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	req.Fields = []string{"title", "slug", "excerpt"}

	i.mu.RLock()
	res, err := i.idx.Search(req)
	i.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	out := make([]Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		id, err := strconv.ParseInt(strings.TrimPrefix(h.ID, "article:"), 10, 64)
		if err != nil {
			continue
		}
		r := Result{ArticleID: id, Score: h.Score}
		if t, ok := h.Fields["title"].(string); ok {
			r.Title = t
		}
		if s, ok := h.Fields["slug"].(string); ok {
			r.Slug = s
		}
		if e, ok := h.Fields["excerpt"].(string); ok {
			r.Excerpt = e
		}
		out = append(out, r)
	}
	return out, nil
}

func (i *Index) Close() error {
	return i.idx.Close()
}
