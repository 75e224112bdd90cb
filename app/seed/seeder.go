package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lysyi3m/news-importer/app/content"
	"github.com/lysyi3m/news-importer/app/database"
	"github.com/lysyi3m/news-importer/app/source"
)

// FeedRegistrar is the part of the feed registry the seeder needs
type FeedRegistrar interface {
	Register(ctx context.Context, rawURL string, categoryID int64, userID *int64) (*database.Feed, error)
}

// Seeder creates categories and registers feeds from a seed file. Running it
// twice is harmless: categories are found before created and known feeds are
// skipped.
type Seeder struct {
	categories database.CategoryRepository
	feeds      FeedRegistrar
	language   string
	userID     *int64
	tag        language.Tag
}

func NewSeeder(categories database.CategoryRepository, feeds FeedRegistrar, lang string, userID *int64) *Seeder {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return &Seeder{
		categories: categories,
		feeds:      feeds,
		language:   lang,
		userID:     userID,
		tag:        tag,
	}
}

func (s *Seeder) Seed(ctx context.Context, file *File) (Result, error) {
	var result Result
	caser := cases.Title(s.tag)

	for _, top := range file.Categories {
		name := caser.String(strings.TrimSpace(top.Name))
		parent, created, err := s.ensureCategory(ctx, name, content.Slugify(name), nil)
		if err != nil {
			return result, err
		}
		if created {
			result.Categories++
		}

		s.registerFeeds(ctx, parent, top.Feeds, &result)

		for _, sub := range top.Subcategories {
			subName := caser.String(strings.TrimSpace(sub.Name))
			child, created, err := s.ensureCategory(ctx, subName, content.Slugify(parent.Name+"-"+subName), &parent.ID)
			if err != nil {
				return result, err
			}
			if created {
				result.Categories++
			}

			s.registerFeeds(ctx, child, sub.Feeds, &result)
		}
	}

	slog.Info("Seeding finished", "categories", result.Categories, "feeds", result.Feeds, "skipped", result.Skipped)
	return result, nil
}

func (s *Seeder) ensureCategory(ctx context.Context, name, slug string, parentID *int64) (*database.Category, bool, error) {
	existing, err := s.categories.FindCategory(ctx, name, s.language, parentID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	category := &database.Category{
		Name:     name,
		Slug:     slug,
		ParentID: parentID,
		Language: s.language,
	}
	if err := s.categories.CreateCategory(ctx, category); err != nil {
		return nil, false, fmt.Errorf("failed to create category %q: %w", name, err)
	}

	return category, true, nil
}

func (s *Seeder) registerFeeds(ctx context.Context, category *database.Category, urls []string, result *Result) {
	for _, url := range urls {
		_, err := s.feeds.Register(ctx, url, category.ID, s.userID)
		switch {
		case err == nil:
			result.Feeds++
		case errors.Is(err, source.ErrDuplicateURL), errors.Is(err, source.ErrInvalidURL):
			result.Skipped++
			slog.Debug("Seed feed skipped", "feed", url, "category", category.Name, "error", err)
		default:
			result.Skipped++
			slog.Warn("Failed to register seed feed", "feed", url, "category", category.Name, "error", err)
		}
	}
}
