package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/lysyi3m/news-importer/app/api"
	"github.com/lysyi3m/news-importer/app/cache"
	"github.com/lysyi3m/news-importer/app/cfg"
	"github.com/lysyi3m/news-importer/app/content"
	"github.com/lysyi3m/news-importer/app/database"
	"github.com/lysyi3m/news-importer/app/events"
	"github.com/lysyi3m/news-importer/app/importer"
	"github.com/lysyi3m/news-importer/app/media"
	"github.com/lysyi3m/news-importer/app/search"
	"github.com/lysyi3m/news-importer/app/seed"
	"github.com/lysyi3m/news-importer/app/source"
	"github.com/lysyi3m/news-importer/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting News Importer", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	feedRepo := database.NewFeedRepository(db)
	categoryRepo := database.NewCategoryRepository(db)
	userRepo := database.NewUserRepository(db)
	articleRepo := database.NewArticleRepository(db)
	tagRepo := database.NewTagRepository(db)
	metaRepo := database.NewMetaRepository(db)
	mediaRepo := database.NewMediaRepository(db)
	optionRepo := database.NewOptionRepository(db)

	ctx := context.Background()

	authorID, err := importer.ResolveAuthor(ctx, userRepo, appCfg.AuthorEmail)
	if err != nil {
		slog.Error("Failed to resolve author", "error", err)
		os.Exit(1)
	}
	if authorID == nil {
		slog.Warn("No author found, imported articles will have no owner")
	}

	notifiers := events.Multi{events.LogNotifier{}}

	var store cache.Store
	if appCfg.RedisAddr != "" {
		redisCache, err := cache.NewCache(ctx, appCfg.RedisAddr, appCfg.RedisPassword)
		if err != nil {
			slog.Warn("Redis unavailable, continuing without cache and event publishing", "error", err)
		} else {
			defer redisCache.Close()
			store = redisCache
			notifiers = append(notifiers, events.NewRedisNotifier(redisCache.Client(), redisCache))
		}
	}

	index, err := search.NewIndex(appCfg.SearchIndex)
	if err != nil {
		slog.Error("Failed to open search index", "error", err)
		os.Exit(1)
	}
	defer index.Close()
	notifiers = append(notifiers, index)

	httpClient := &http.Client{Timeout: 60 * time.Second}

	uploads := afero.NewBasePathFs(afero.NewOsFs(), appCfg.UploadsDir)
	mediaImporter := media.NewImporter(uploads, mediaRepo, httpClient, appCfg.UserAgent, appCfg.Language, media.NewImagingResizer())

	deps := importer.Dependencies{
		Feeds:      feedRepo,
		Articles:   articleRepo,
		Tags:       tagRepo,
		Meta:       metaRepo,
		Media:      mediaImporter,
		Notifier:   notifiers,
		HTTPClient: httpClient,
		UserAgent:  appCfg.UserAgent,
		Language:   appCfg.Language,
		AuthorID:   authorID,
	}
	if appCfg.ExtractContent {
		deps.Extractor = content.NewExtractor(httpClient, appCfg.UserAgent)
	}

	registry := source.NewRegistry(feedRepo, categoryRepo)
	seeder := seed.NewSeeder(categoryRepo, registry, appCfg.Language, authorID)

	if appCfg.SeedFile != "" {
		seedFs := afero.NewOsFs()
		file, err := seed.Load(seedFs, appCfg.SeedFile)
		if err != nil {
			slog.Error("Failed to load seed file", "path", appCfg.SeedFile, "error", err)
			os.Exit(1)
		}
		if _, err := seeder.Seed(ctx, file); err != nil {
			slog.Error("Failed to seed feeds", "error", err)
			os.Exit(1)
		}
	}

	service := importer.NewService(
		importer.New(deps),
		registry,
		importer.NewLock(optionRepo, appCfg.LockTTLDuration()),
		notifiers,
	)

	slog.Info("Starting import scheduler", "interval", appCfg.ImportIntervalDuration())
	scheduler := tasks.NewScheduler(service, articleRepo, index, appCfg.ImportIntervalDuration())
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(api.Dependencies{
		Registry:   registry,
		Categories: categoryRepo,
		Articles:   articleRepo,
		Meta:       metaRepo,
		Service:    service,
		Scheduler:  scheduler,
		Seeder:     seeder,
		Search:     index,
		Cache:      store,
		Fs:         afero.NewOsFs(),
		SeedFile:   appCfg.SeedFile,
		BaseURL:    appCfg.BaseUrl,
		Language:   appCfg.Language,
		Version:    appCfg.Version,
		UserID:     authorID,
	})
	server := api.NewServer(handler, appCfg.APIAccessKey)

	// the cron trigger runs a whole import inside the request
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: appCfg.LockTTLDuration(),
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("News Importer shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}
