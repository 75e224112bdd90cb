package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/news-importer/app/source"
)

type healthChecker interface {
	Health(ctx context.Context) map[string]any
}

func NewHandler(deps Dependencies) *Handler {
	return &Handler{deps: deps}
}

func (h *Handler) Root(apiEnabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		endpoints := map[string]string{
			"health": "/health",
			"feed":   "/feed.xml",
		}

		if apiEnabled {
			endpoints["feeds"] = "/api/feeds (requires X-API-Key header)"
			endpoints["import"] = "/api/import (POST, requires X-API-Key header)"
			endpoints["cron"] = "/api/import-feeds (requires X-API-Key header)"
			endpoints["search"] = "/api/articles/search?q=<query> (requires X-API-Key header)"
		}

		c.JSON(http.StatusOK, gin.H{
			"service":     "News Importer",
			"version":     h.deps.Version,
			"description": "Imports RSS and Atom feeds into published articles",
			"endpoints":   endpoints,
			"api_status": map[string]any{
				"enabled":       apiEnabled,
				"auth_required": apiEnabled,
				"header":        "X-API-Key",
			},
		})
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	ctx := c.Request.Context()

	health := map[string]any{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.deps.Version,
	}

	if page, err := h.deps.Registry.List(ctx, 1, 1); err == nil {
		health["feeds"] = page.Total
	}

	if expiry, err := h.deps.Service.LockExpiry(ctx); err == nil && !expiry.IsZero() {
		health["import_lock_expires_at"] = expiry.Format(time.RFC3339)
		health["import_running"] = expiry.After(time.Now())
	}

	if checker, ok := h.deps.Cache.(healthChecker); ok {
		health["cache"] = checker.Health(ctx)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) ListFeeds(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	result, err := h.deps.Registry.List(c.Request.Context(), page, perPage)
	if err != nil {
		slog.Error("Database error", "operation", "list_feeds", "error", err)
		respondMessage(c, http.StatusInternalServerError, ClassDanger, "Failed to list feeds")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) ListTrashedFeeds(c *gin.Context) {
	feeds, err := h.deps.Registry.ListTrashed(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "list_trashed_feeds", "error", err)
		respondMessage(c, http.StatusInternalServerError, ClassDanger, "Failed to list trashed feeds")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feeds": feeds,
		"total": len(feeds),
	})
}

func (h *Handler) GetFeed(c *gin.Context) {
	id, ok := feedID(c)
	if !ok {
		return
	}

	feed, err := h.deps.Registry.Get(c.Request.Context(), id)
	if err != nil {
		h.registryError(c, "get_feed", err)
		return
	}

	c.JSON(http.StatusOK, feed)
}

func (h *Handler) CreateFeed(c *gin.Context) {
	var req feedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, ClassDanger, "Both url and category_id are required")
		return
	}

	feed, err := h.deps.Registry.Register(c.Request.Context(), req.URL, req.CategoryID, h.deps.UserID)
	if err != nil {
		h.registryError(c, "create_feed", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"feed":    feed,
		"message": Message{Class: ClassSuccess, Text: "The feed has been added"},
	})
}

func (h *Handler) UpdateFeed(c *gin.Context) {
	id, ok := feedID(c)
	if !ok {
		return
	}

	var req feedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, ClassDanger, "Both url and category_id are required")
		return
	}

	feed, err := h.deps.Registry.Update(c.Request.Context(), id, req.URL, req.CategoryID)
	if err != nil {
		h.registryError(c, "update_feed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feed":    feed,
		"message": Message{Class: ClassSuccess, Text: "The feed has been updated"},
	})
}

func (h *Handler) TrashFeed(c *gin.Context) {
	id, ok := feedID(c)
	if !ok {
		return
	}

	if err := h.deps.Registry.Trash(c.Request.Context(), id); err != nil {
		h.registryError(c, "trash_feed", err)
		return
	}

	respondMessage(c, http.StatusOK, ClassSuccess, "The feed has been moved to the trash")
}

func (h *Handler) RestoreFeed(c *gin.Context) {
	id, ok := feedID(c)
	if !ok {
		return
	}

	if err := h.deps.Registry.Restore(c.Request.Context(), id); err != nil {
		h.registryError(c, "restore_feed", err)
		return
	}

	respondMessage(c, http.StatusOK, ClassSuccess, "The feed has been restored")
}

func (h *Handler) PurgeFeed(c *gin.Context) {
	id, ok := feedID(c)
	if !ok {
		return
	}

	if err := h.deps.Registry.ForceDelete(c.Request.Context(), id); err != nil {
		h.registryError(c, "purge_feed", err)
		return
	}

	respondMessage(c, http.StatusOK, ClassSuccess, "The feed has been permanently deleted")
}

func (h *Handler) EmptyTrash(c *gin.Context) {
	deleted, err := h.deps.Registry.EmptyTrash(c.Request.Context())
	if err != nil {
		slog.Error("Failed to empty trash", "deleted", deleted, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"deleted": deleted,
			"message": Message{Class: ClassDanger, Text: "Some feeds could not be deleted"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deleted": deleted,
		"message": Message{Class: ClassSuccess, Text: "The trash has been emptied"},
	})
}

func (h *Handler) registryError(c *gin.Context, operation string, err error) {
	switch {
	case errors.Is(err, source.ErrFeedNotFound):
		respondMessage(c, http.StatusNotFound, ClassDanger, err.Error())
	case errors.Is(err, source.ErrDuplicateURL):
		respondMessage(c, http.StatusConflict, ClassDanger, err.Error())
	case errors.Is(err, source.ErrInvalidURL), errors.Is(err, source.ErrCategoryNotFound):
		respondMessage(c, http.StatusUnprocessableEntity, ClassDanger, err.Error())
	default:
		slog.Error("Database error", "operation", operation, "error", err)
		respondMessage(c, http.StatusInternalServerError, ClassDanger, "Something went wrong, please try again")
	}
}

func feedID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondMessage(c, http.StatusBadRequest, ClassDanger, "Invalid feed id")
		return 0, false
	}
	return id, true
}

func respondMessage(c *gin.Context, status int, class, text string) {
	c.JSON(status, gin.H{"message": Message{Class: class, Text: text}})
}
