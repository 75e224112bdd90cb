package api

import (
	"context"
	"time"

	"github.com/spf13/afero"

	"github.com/lysyi3m/news-importer/app/cache"
	"github.com/lysyi3m/news-importer/app/database"
	"github.com/lysyi3m/news-importer/app/importer"
	"github.com/lysyi3m/news-importer/app/search"
	"github.com/lysyi3m/news-importer/app/seed"
	"github.com/lysyi3m/news-importer/app/source"
	"github.com/lysyi3m/news-importer/app/tasks"
)

// FeedRegistry is the admin side of the feed source registry
type FeedRegistry interface {
	Register(ctx context.Context, rawURL string, categoryID int64, userID *int64) (*database.Feed, error)
	Update(ctx context.Context, id int64, rawURL string, categoryID int64) (*database.Feed, error)
	Trash(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
	ForceDelete(ctx context.Context, id int64) error
	EmptyTrash(ctx context.Context) (int, error)
	List(ctx context.Context, page, perPage int) (*source.Page, error)
	ListTrashed(ctx context.Context) ([]database.Feed, error)
	Get(ctx context.Context, id int64) (*database.Feed, error)
}

var _ FeedRegistry = (*source.Registry)(nil)

// ImportService is the import trigger surface
type ImportService interface {
	ImportAll(ctx context.Context) (importer.Summary, error)
	ImportFeed(ctx context.Context, feedID int64) (importer.Summary, error)
	LockExpiry(ctx context.Context) (time.Time, error)
}

var _ ImportService = (*importer.Service)(nil)

type Searcher interface {
	Search(query string, limit int) ([]search.Result, error)
}

type Seeder interface {
	Seed(ctx context.Context, file *seed.File) (seed.Result, error)
}

type Dependencies struct {
	Registry   FeedRegistry
	Categories database.CategoryRepository
	Articles   database.ArticleRepository
	Meta       database.MetaRepository
	Service    ImportService
	Scheduler  tasks.TaskSchedulerInterface

	Seeder   Seeder       // optional
	Search   Searcher     // optional
	Cache    cache.Store  // optional
	Fs       afero.Fs     // seed file lookup
	SeedFile string

	BaseURL  string
	Language string
	Version  string
	UserID   *int64
}

type Handler struct {
	deps Dependencies
}

// Message is the admin outcome shown to the operator
type Message struct {
	Class string `json:"class"`
	Text  string `json:"text"`
}

const (
	ClassSuccess = "success"
	ClassDanger  = "danger"
	ClassWarning = "warning"
)

type feedRequest struct {
	URL        string `json:"url" binding:"required"`
	CategoryID int64  `json:"category_id" binding:"required"`
}
