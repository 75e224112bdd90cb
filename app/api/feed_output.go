package api

import (
	"cmp"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/feeds"

	"github.com/lysyi3m/news-importer/app/cache"
	"github.com/lysyi3m/news-importer/app/database"
)

const feedXMLLimit = 50

// GetFeedXML publishes the newest imported articles as RSS 2.0
func (h *Handler) GetFeedXML(c *gin.Context) {
	ctx := c.Request.Context()
	key := cache.FeedXMLKey(feedXMLLimit)

	if cached, ok := h.cached(c, key); ok {
		c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(cached))
		return
	}

	articles, err := h.deps.Articles.ListPublishedArticles(ctx, feedXMLLimit)
	if err != nil {
		slog.Error("Database error", "operation", "list_articles", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	links := make(map[int64]string, len(articles))
	if h.deps.Meta != nil {
		for _, article := range articles {
			meta, err := h.deps.Meta.GetMeta(ctx, article.ID, article.Language, database.MetaLinkBack)
			if err != nil {
				slog.Warn("Failed to load link back", "article_id", article.ID, "error", err)
				continue
			}
			if meta != nil {
				links[article.ID] = meta.Value
			}
		}
	}

	rss, err := h.renderFeed(articles, links)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if h.deps.Cache != nil {
		if err := h.deps.Cache.Set(ctx, key, rss, contentCacheTTL); err != nil {
			slog.Warn("Cache write failed", "key", key, "error", err)
		}
	}

	c.Header("X-Feed-Items", strconv.Itoa(len(articles)))
	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(rss))
}

func (h *Handler) renderFeed(articles []database.Article, links map[int64]string) (string, error) {
	baseURL := strings.TrimRight(cmp.Or(h.deps.BaseURL, "http://localhost"), "/")

	updated := time.Now().In(time.Local)
	if len(articles) > 0 {
		updated = cmp.Or(articles[0].UpdatedAt, articles[0].CreatedAt, updated)
	}

	feed := &feeds.Feed{
		Title:       "News Importer",
		Link:        &feeds.Link{Href: baseURL + "/"},
		Description: "Latest imported articles",
		Created:     updated,
		Updated:     updated,
	}

	for _, article := range articles {
		link := cmp.Or(links[article.ID], fmt.Sprintf("%s/%s", baseURL, article.Slug))
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          fmt.Sprintf("%s/%s", baseURL, article.Slug),
			Title:       article.Title,
			Link:        &feeds.Link{Href: link},
			Description: article.Excerpt,
			Content:     article.Content,
			Created:     article.CreatedAt,
			Updated:     article.UpdatedAt,
		})
	}

	return feed.ToRss()
}
