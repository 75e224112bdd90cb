package database

import (
	"time"
)

const (
	StatusDraft   = "draft"
	StatusPublish = "publish"

	PostTypePost = "post"

	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleAuthor     = "author"

	MetaPostImage = "_post_image"
	MetaLinkBack  = "_link_back"
	MetaVideoURL  = "_video_url"
)

// Feed is a registered syndication source
type Feed struct {
	ID         int64      `db:"id" json:"id"`
	URL        string     `db:"url" json:"url"`
	Hash       string     `db:"hash" json:"hash"` // md5 of the canonical URL, unique even across trashed rows
	CategoryID *int64     `db:"category_id" json:"category_id"`
	UserID     *int64     `db:"user_id" json:"user_id"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt  *time.Time `db:"deleted_at" json:"deleted_at"`
}

func (f Feed) IsTrashed() bool {
	return f.DeletedAt != nil
}

type Category struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	ParentID  *int64    `db:"parent_id" json:"parent_id"`
	Language  string    `db:"language" json:"language"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type User struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Article struct {
	ID        int64      `db:"id" json:"id"`
	Title     string     `db:"title" json:"title"`
	Slug      string     `db:"slug" json:"slug"`
	Content   string     `db:"content" json:"content"`
	Excerpt   string     `db:"excerpt" json:"excerpt"`
	UserID    *int64     `db:"user_id" json:"user_id"`
	Language  string     `db:"language" json:"language"`
	PostType  string     `db:"post_type" json:"post_type"`
	Status    string     `db:"status" json:"status"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at"`
}

type Tag struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	Language  string    `db:"language" json:"language"`
	PostType  string    `db:"post_type" json:"post_type"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ArticleMeta is a key/value pair scoped to (article, language, name)
type ArticleMeta struct {
	ID        int64  `db:"id" json:"id"`
	ArticleID int64  `db:"article_id" json:"article_id"`
	Language  string `db:"language" json:"language"`
	Name      string `db:"meta_name" json:"name"`
	Value     string `db:"meta_value" json:"value"`
}

// MediaFile is a locally cached copy of a remote image
type MediaFile struct {
	ID        int64     `db:"id" json:"id"`
	Slug      string    `db:"slug" json:"slug"`
	Path      string    `db:"path" json:"path"` // relative to the uploads root, partitioned by Y/n/j
	Language  string    `db:"language" json:"language"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Option struct {
	Name      string    `db:"name" json:"name"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
