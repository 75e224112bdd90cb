package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/news-importer/app/cache"
	"github.com/lysyi3m/news-importer/app/importer"
	"github.com/lysyi3m/news-importer/app/seed"
	"github.com/lysyi3m/news-importer/app/tasks"
)

// Import queues a full import run unless the previous run still holds the lock
func (h *Handler) Import(c *gin.Context) {
	expiry, err := h.deps.Service.LockExpiry(c.Request.Context())
	if err != nil {
		slog.Error("Failed to read import lock", "error", err)
		respondMessage(c, http.StatusInternalServerError, ClassDanger, "Failed to read the import lock")
		return
	}
	if expiry.After(time.Now().Add(importer.LockGrace)) {
		respondMessage(c, http.StatusConflict, ClassWarning, "An import is already running")
		return
	}

	task := tasks.NewImportFeedsTask(h.deps.Service)
	if err := h.deps.Scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing import task", "error", err)
		respondMessage(c, http.StatusServiceUnavailable, ClassDanger, "Failed to start the import")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"task":    gin.H{"id": task.ID, "type": task.Type},
		"message": Message{Class: ClassSuccess, Text: "The import has been started"},
	})
}

// ImportFeed queues an import of a single registered feed
func (h *Handler) ImportFeed(c *gin.Context) {
	id, ok := feedID(c)
	if !ok {
		return
	}

	if _, err := h.deps.Registry.Get(c.Request.Context(), id); err != nil {
		h.registryError(c, "import_feed", err)
		return
	}

	task := tasks.NewImportFeedTask(h.deps.Service, id)
	if err := h.deps.Scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing import task", "feed_id", id, "error", err)
		respondMessage(c, http.StatusServiceUnavailable, ClassDanger, "Failed to start the import")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"task":    gin.H{"id": task.ID, "type": task.Type},
		"message": Message{Class: ClassSuccess, Text: "The feed import has been started"},
	})
}

// ImportFeeds is the cron trigger. It runs the import inline and only
// reports whether the run happened.
func (h *Handler) ImportFeeds(c *gin.Context) {
	summary, err := h.deps.Service.ImportAll(c.Request.Context())
	if err != nil {
		if errors.Is(err, importer.ErrLockActive) || errors.Is(err, importer.ErrNoSources) {
			slog.Info("Cron import refused", "reason", err)
		} else {
			slog.Error("Cron import failed", "error", err)
		}
		c.JSON(http.StatusOK, gin.H{"success": 0})
		return
	}

	slog.Info("Cron import finished", "run_id", summary.RunID, "published", summary.Published)
	c.JSON(http.StatusOK, gin.H{"success": 1})
}

// Seed loads categories and feeds from the request body, or from the
// configured seed file when the body is empty
func (h *Handler) Seed(c *gin.Context) {
	if h.deps.Seeder == nil {
		respondMessage(c, http.StatusServiceUnavailable, ClassDanger, "Seeding is not available")
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, ClassDanger, "Failed to read request body")
		return
	}

	var file *seed.File
	if len(body) > 0 {
		file, err = seed.Parse(body)
	} else if h.deps.SeedFile != "" && h.deps.Fs != nil {
		file, err = seed.Load(h.deps.Fs, h.deps.SeedFile)
	} else {
		respondMessage(c, http.StatusBadRequest, ClassDanger, "No seed document provided")
		return
	}
	if err != nil {
		respondMessage(c, http.StatusUnprocessableEntity, ClassDanger, err.Error())
		return
	}

	result, err := h.deps.Seeder.Seed(c.Request.Context(), file)
	if err != nil {
		slog.Error("Seeding failed", "error", err)
		respondMessage(c, http.StatusInternalServerError, ClassDanger, "Seeding failed")
		return
	}

	if h.deps.Cache != nil {
		if err := h.deps.Cache.Delete(c.Request.Context(), cache.CategoryTreeKey(h.deps.Language)); err != nil {
			slog.Warn("Failed to invalidate category tree cache", "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"result":  result,
		"message": Message{Class: ClassSuccess, Text: "Seeding finished"},
	})
}
