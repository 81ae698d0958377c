package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-blog-app/internal/auth"
	"go-blog-app/internal/avatar"
	"go-blog-app/internal/cache"
	"go-blog-app/internal/data"
	"go-blog-app/internal/handler"
	"go-blog-app/internal/logger"
	"go-blog-app/internal/markdown"
	"go-blog-app/internal/middleware"
	"go-blog-app/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v3"
)

func serve(ctx context.Context, c *cli.Command) error {
	printBanner()

	// --- Configuration Loading ---
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}

	// --- Database Initialization and Migration ---
	log.Info("Applying database migrations...")
	if err := data.ApplyMigrations(cfg.DB); err != nil {
		log.Fatal(err, "Failed to apply migrations")
	}
	log.Info("Migrations applied successfully.")

	log.Info("Connecting to the database...")
	db, err := data.NewDB(cfg.DB)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()
	log.Info("Database connection successful.")

	// --- Cache Initialization ---
	log.Info(fmt.Sprintf("Initializing %s cache...", cfg.Cache.Driver))
	store, err := cache.New(cfg.Cache, cfg.Redis)
	if err != nil {
		log.Fatal(err, "Failed to initialize cache")
	}
	defer store.Close()
	log.Info("Cache initialized.")

	// --- Dependency Injection and Handler Initialization ---
	articles := data.NewSQLArticleRepository(db)
	repos := service.Repositories{
		Articles:   articles,
		Categories: data.NewCategoryRepository(db),
		Tags:       data.NewTagRepository(db),
		Comments:   data.NewCommentRepository(db),
		Sidebars:   data.NewSidebarRepository(db),
	}

	inv := cache.NewInvalidator(store, log)
	settings := service.NewSettingsService(data.NewSettingsRepository(db), store, inv, log)
	site := service.NewSite(cfg.Server, store, cache.WithLogger(log))
	views := service.NewViewCounter(articles, log)
	blog := service.NewBlogService(repos, store, settings, views, markdown.New(), log)

	storage, err := avatar.NewStorage(ctx, cfg.Avatar)
	if err != nil {
		log.Fatal(err, "Failed to initialize avatar storage")
	}
	fetcher := avatar.NewFetcher(storage, log,
		avatar.WithTimeout(cfg.Avatar.Timeout),
		avatar.WithResourcePath(func(ctx context.Context) string {
			s, err := settings.GetSettings(ctx)
			if err != nil {
				return data.DefaultBlogSettings().ResourcePath
			}
			return s.ResourcePath
		}),
	)
	users := service.NewUserService(data.NewUserRepository(db), fetcher, log)

	blogHandler := handler.NewBlogHandler(blog, settings, users, log)
	seoHandler := handler.NewSeoHandler(blog, site)

	// --- Authorization Setup ---
	enforcer, err := auth.NewEnforcer()
	if err != nil {
		log.Fatal(err, "Failed to initialize enforcer")
	}
	if err := auth.SeedDefaultPolicies(enforcer, log); err != nil {
		log.Fatal(err, "Failed to seed authorization policies")
	}
	if cfg.Server.AdminToken == "" {
		log.Warn("server.admin_token is not set; settings and avatar updates are disabled")
	}
	authz := middleware.Authorizer(enforcer, cfg.Server.AdminToken, log)

	// --- Scheduled Jobs ---
	jobs, err := scheduleJobs(cfg.Views.FlushSpec, cfg.Cache.PurgeSpec, blog, store, log)
	if err != nil {
		log.Fatal(err, "Failed to schedule background jobs")
	}
	jobs.Start()

	// --- Router Setup ---
	router := handler.NewRouter(blogHandler, seoHandler, authz, log)

	// --- Server Initialization and Graceful Shutdown ---
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if cfg.Server.TLS.Enabled {
			log.Info(fmt.Sprintf("Starting HTTPS server on %s", server.Addr))
			if err := server.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTPS server")
			}
		} else {
			log.Info(fmt.Sprintf("Starting HTTP server on %s", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTP server")
			}
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Warn("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "Server forced to shutdown")
	}
	<-jobs.Stop().Done()

	// Counts still buffered would otherwise be lost.
	if err := blog.FlushViews(shutdownCtx); err != nil {
		log.Error(err, "Failed to flush article views")
	}
	log.Info("Server exiting")
	return nil
}

// scheduleJobs registers the periodic view flush and, for the sqlite cache
// store, the removal of expired rows.
func scheduleJobs(flushSpec, purgeSpec string, blog *service.BlogService, store cache.Store, log logger.Logger) (*cron.Cron, error) {
	cl := logger.Cron(log)
	jobs := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl)))

	if _, err := jobs.AddFunc(flushSpec, func() {
		if err := blog.FlushViews(context.Background()); err != nil {
			log.Error(err, "Failed to flush article views")
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid views flush spec %q: %w", flushSpec, err)
	}

	if sqlite, ok := store.(*cache.SQLiteStore); ok && purgeSpec != "" {
		if _, err := jobs.AddFunc(purgeSpec, func() {
			n, err := sqlite.PurgeExpired(context.Background())
			if err != nil {
				log.Error(err, "Failed to purge expired cache entries")
				return
			}
			if n > 0 {
				log.Debug(fmt.Sprintf("Purged %d expired cache entries", n))
			}
		}); err != nil {
			return nil, fmt.Errorf("invalid cache purge spec %q: %w", purgeSpec, err)
		}
	}
	return jobs, nil
}
