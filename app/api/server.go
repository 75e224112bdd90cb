package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/health"},
	}))

	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-API-Key")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/", handler.Root(apiAccessKey != ""))
	r.GET("/health", handler.GetHealth)
	r.GET("/feed.xml", handler.GetFeedXML)

	if apiAccessKey != "" {
		api := r.Group("/api")
		api.Use(authMiddleware(apiAccessKey))
		{
			api.GET("/feeds", handler.ListFeeds)
			api.GET("/feeds/trash", handler.ListTrashedFeeds)
			api.DELETE("/feeds/trash", handler.EmptyTrash)
			api.GET("/feeds/:id", handler.GetFeed)
			api.POST("/feeds", handler.CreateFeed)
			api.PUT("/feeds/:id", handler.UpdateFeed)
			api.DELETE("/feeds/:id", handler.TrashFeed)
			api.POST("/feeds/:id/restore", handler.RestoreFeed)
			api.DELETE("/feeds/:id/purge", handler.PurgeFeed)
			api.POST("/feeds/:id/import", handler.ImportFeed)

			api.POST("/import", handler.Import)
			api.GET("/import-feeds", handler.ImportFeeds)
			api.POST("/seed", handler.Seed)

			api.GET("/categories/tree", handler.GetCategoryTree)
			api.GET("/articles", handler.ListArticles)
			api.GET("/articles/search", handler.SearchArticles)
		}
		slog.Info("API endpoints enabled with authentication")
	} else {
		slog.Warn("API endpoints disabled (API_ACCESS_KEY not set)")
	}

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// authMiddleware accepts the key in X-API-Key or as a Bearer token
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
