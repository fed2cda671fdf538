package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/catalog-sync/internal/adapter/chromedp_crawler"
	"github.com/user/catalog-sync/internal/adapter/httpfetch"
	"github.com/user/catalog-sync/internal/adapter/itunes"
	"github.com/user/catalog-sync/internal/adapter/postgres"
	redis_adapter "github.com/user/catalog-sync/internal/adapter/redis"
	"github.com/user/catalog-sync/internal/category"
	"github.com/user/catalog-sync/internal/delivery/http/handler"
	"github.com/user/catalog-sync/internal/delivery/http/router"
	"github.com/user/catalog-sync/internal/matcher"
	"github.com/user/catalog-sync/internal/repository"
	"github.com/user/catalog-sync/internal/scraper"
	"github.com/user/catalog-sync/internal/usecase"
	"github.com/user/catalog-sync/pkg/config"
	"github.com/user/catalog-sync/pkg/logger"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		// No logger yet.
		panic(err)
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	// --- PostgreSQL ---
	dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatal("unable to connect to database", zap.Error(err))
	}
	defer dbpool.Close()
	if err := dbpool.Ping(ctx); err != nil {
		log.Fatal("database unreachable", zap.Error(err))
	}
	if err := postgres.Migrate(ctx, dbpool); err != nil {
		log.Fatal("schema migration failed", zap.Error(err))
	}
	log.Info("postgres connection pool established")

	checks := map[string]handler.Pinger{"postgres": dbpool}

	// --- Redis (optional search cache) ---
	var searchCache repository.SearchCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("unable to connect to redis", zap.Error(err))
		}
		cacheImpl := redis_adapter.NewSearchCache(rdb)
		searchCache = cacheImpl
		checks["redis"] = cacheImpl
		log.Info("redis search cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	// --- Fetcher ---
	rotator := httpfetch.NewRotator(config.SplitList(cfg.UserAgents), config.SplitList(cfg.Proxies))
	var fetcher repository.PageFetcher
	switch cfg.FetchMode {
	case "browser":
		browser := chromedp_crawler.NewBrowserFetcher(cfg.FetchTimeout, rotator.UserAgent(), log)
		defer browser.Close()
		fetcher = browser
	default:
		fetcher = httpfetch.NewFetcher(cfg.FetchTimeout, rotator, log)
	}
	log.Info("page fetcher ready", zap.String("mode", cfg.FetchMode))

	// --- Repositories ---
	catalogRepo := postgres.NewCatalogRepo(dbpool)
	sessionRepo := postgres.NewCrawlSessionRepo(dbpool)
	attemptRepo := postgres.NewMatchAttemptRepo(dbpool)

	// --- Use Cases ---
	validator := scraper.NewURLValidator(cfg.SourceDomain)
	extractor := scraper.NewExtractor(validator)
	dedup := usecase.NewDedupChecker(catalogRepo, validator, log)
	cursor := usecase.NewCursorTracker(sessionRepo, cfg.SourceType, log)

	orchestrator := usecase.NewCrawlOrchestrator(fetcher, extractor, dedup, cursor, usecase.CrawlSettings{
		Delay:               cfg.CrawlDelay,
		DefaultPerPageLimit: cfg.DefaultPerPageLimit,
		DefaultPageCount:    cfg.DefaultPageCount,
		MaxPageCount:        cfg.MaxPageCount,
		MinItemsPerPage:     cfg.MinItemsPerPage,
	}, log)
	importer := usecase.NewPageImporter(sessionRepo, catalogRepo, fetcher, extractor, dedup,
		category.NewStaticResolver(nil), cfg.CrawlDelay, log)

	searchClient := itunes.NewClient(itunes.Config{
		BaseURL:    cfg.SearchAPIURL,
		Country:    cfg.SearchCountry,
		Limit:      cfg.SearchLimit,
		Timeout:    cfg.SearchTimeout,
		MaxRetries: cfg.SearchMaxRetries,
	}, log)
	appMatcher := matcher.New(searchClient, searchCache, cfg.SearchCacheTTL, log)
	reconciler := usecase.NewReconciler(catalogRepo, attemptRepo, appMatcher, usecase.ReconcileSettings{
		Delay:              cfg.ReconcileDelay,
		AutoApplyThreshold: cfg.AutoApplyThreshold,
	}, log)

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(orchestrator, importer, reconciler, cursor, checks, log)
	server := &http.Server{
		Addr:        ":" + cfg.ServerPort,
		Handler:     router.New(apiHandler, log, cfg.RequestTimeout),
		ReadTimeout: 10 * time.Second,
		// Crawl and import requests run for up to RequestTimeout.
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("could not start server", zap.Error(err))
		}
	}()
	log.Info("server started", zap.String("port", cfg.ServerPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exiting")
}
