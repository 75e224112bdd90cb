package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/news-importer/app/cache"
	"github.com/lysyi3m/news-importer/app/database"
	"github.com/lysyi3m/news-importer/app/source"
)

const (
	defaultArticleLimit = 20
	maxArticleLimit     = 100
	contentCacheTTL     = 10 * time.Minute
)

type categoryTreeResponse struct {
	Language   string              `json:"language"`
	Categories []database.Category `json:"categories"`
	Tree       source.CategoryTree `json:"tree"`
}

func (h *Handler) GetCategoryTree(c *gin.Context) {
	ctx := c.Request.Context()
	language := c.DefaultQuery("language", h.deps.Language)
	key := cache.CategoryTreeKey(language)

	if cached, ok := h.cached(c, key); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
		return
	}

	top, err := h.deps.Categories.GetTopCategories(ctx, language)
	if err != nil {
		slog.Error("Database error", "operation", "get_top_categories", "error", err)
		respondMessage(c, http.StatusInternalServerError, ClassDanger, "Failed to load categories")
		return
	}

	tree, err := source.BuildCategoryTree(ctx, h.deps.Categories, top)
	if err != nil {
		slog.Error("Database error", "operation", "build_category_tree", "error", err)
		respondMessage(c, http.StatusInternalServerError, ClassDanger, "Failed to load categories")
		return
	}

	h.respondCachedJSON(c, key, categoryTreeResponse{Language: language, Categories: top, Tree: tree})
}

func (h *Handler) ListArticles(c *gin.Context) {
	limit := queryLimit(c)
	key := cache.ArticlesKey(limit)

	if cached, ok := h.cached(c, key); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
		return
	}

	articles, err := h.deps.Articles.ListPublishedArticles(c.Request.Context(), limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_articles", "error", err)
		respondMessage(c, http.StatusInternalServerError, ClassDanger, "Failed to list articles")
		return
	}

	h.respondCachedJSON(c, key, gin.H{"articles": articles, "total": len(articles)})
}

func (h *Handler) SearchArticles(c *gin.Context) {
	if h.deps.Search == nil {
		respondMessage(c, http.StatusServiceUnavailable, ClassDanger, "Search is not available")
		return
	}

	query := c.Query("q")
	results, err := h.deps.Search.Search(query, queryLimit(c))
	if err != nil {
		slog.Error("Search failed", "query", query, "error", err)
		respondMessage(c, http.StatusInternalServerError, ClassDanger, "Search failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": results,
		"total":   len(results),
	})
}

func (h *Handler) cached(c *gin.Context, key string) (string, bool) {
	if h.deps.Cache == nil {
		return "", false
	}

	value, ok, err := h.deps.Cache.Get(c.Request.Context(), key)
	if err != nil {
		slog.Warn("Cache read failed", "key", key, "error", err)
		return "", false
	}
	if ok {
		c.Header("X-Cache", "HIT")
	}
	return value, ok
}

func (h *Handler) respondCachedJSON(c *gin.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if h.deps.Cache != nil {
		if err := h.deps.Cache.Set(c.Request.Context(), key, data, contentCacheTTL); err != nil {
			slog.Warn("Cache write failed", "key", key, "error", err)
		}
		c.Header("X-Cache", "MISS")
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultArticleLimit)))
	if err != nil || limit <= 0 {
		return defaultArticleLimit
	}
	if limit > maxArticleLimit {
		return maxArticleLimit
	}
	return limit
}
