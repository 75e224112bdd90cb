package database

import (
	"context"
)

type FeedRepository interface {
	GetFeed(ctx context.Context, id int64, withTrashed bool) (*Feed, error)
	GetActiveFeedByURL(ctx context.Context, url string) (*Feed, error)
	GetFeedByHash(ctx context.Context, hash string) (*Feed, error)
	ListActiveFeeds(ctx context.Context, limit, offset int) ([]Feed, error)
	ListTrashedFeeds(ctx context.Context) ([]Feed, error)
	GetActiveFeedURLs(ctx context.Context) ([]string, error)
	GetActiveFeedCount(ctx context.Context) (int, error)

	CreateFeed(ctx context.Context, feed *Feed) error
	UpdateFeed(ctx context.Context, feed *Feed) error
	TrashFeed(ctx context.Context, id int64) error
	RestoreFeed(ctx context.Context, id int64) error
	DeleteTrashedFeed(ctx context.Context, id int64) (bool, error)
}

type CategoryRepository interface {
	GetCategory(ctx context.Context, id int64) (*Category, error)
	GetTopCategories(ctx context.Context, language string) ([]Category, error)
	GetChildCategories(ctx context.Context, parentID int64) ([]Category, error)
	FindCategory(ctx context.Context, name, language string, parentID *int64) (*Category, error)

	CreateCategory(ctx context.Context, category *Category) error
}

type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetFirstUserByRole(ctx context.Context, role string) (*User, error)

	CreateUser(ctx context.Context, user *User) error
}

type ArticleRepository interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
	GetArticleBySlug(ctx context.Context, slug string) (*Article, error)
	ListPublishedArticles(ctx context.Context, limit int) ([]Article, error)
	GetArticleCategoryIDs(ctx context.Context, articleID int64) ([]int64, error)
	GetArticleTagIDs(ctx context.Context, articleID int64) ([]int64, error)

	CreateArticle(ctx context.Context, article *Article) error
	UpdateArticleStatus(ctx context.Context, articleID int64, status string) error
	SetArticleCategories(ctx context.Context, articleID int64, categoryIDs []int64) error
	SetArticleTags(ctx context.Context, articleID int64, tagIDs []int64) error
}

type TagRepository interface {
	GetTagBySlug(ctx context.Context, slug, language, postType string) (*Tag, error)

	CreateTag(ctx context.Context, tag *Tag) error
}

type MetaRepository interface {
	GetMeta(ctx context.Context, articleID int64, language, name string) (*ArticleMeta, error)
	ListMeta(ctx context.Context, articleID int64) ([]ArticleMeta, error)

	UpsertMeta(ctx context.Context, articleID int64, language, name, value string) error
}

type MediaRepository interface {
	GetMediaBySlug(ctx context.Context, slug string) (*MediaFile, error)

	CreateMedia(ctx context.Context, media *MediaFile) error
}

type OptionRepository interface {
	GetOption(ctx context.Context, name string) (*Option, error)

	SetOption(ctx context.Context, name, value string) error
}
