package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rcs-software/rcs-crm/internal/app"
	"github.com/rcs-software/rcs-crm/internal/catalog"
	"github.com/rcs-software/rcs-crm/internal/clients"
	"github.com/rcs-software/rcs-crm/internal/observability"
	"github.com/rcs-software/rcs-crm/internal/platform/cache"
	"github.com/rcs-software/rcs-crm/internal/platform/db"
	"github.com/rcs-software/rcs-crm/internal/quotes"
	"github.com/rcs-software/rcs-crm/internal/taxes"
	"github.com/rcs-software/rcs-crm/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, search cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	gotenberg := report.NewClient(cfg.GotenbergURL, cfg.GotenbergTimeout)
	if err := gotenberg.Ping(ctx); err != nil {
		logger.Warn("gotenberg ping", slog.Any("error", err))
	}

	clientRepo := clients.NewRepository(dbpool)

	searchCache := catalog.NewSearchCache(redisClient, cfg.SearchCacheTTL)
	catalogRepo := catalog.NewRepository(dbpool)
	catalogService := catalog.NewService(logger, catalogRepo, clientRepo, searchCache)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	taxRepo := taxes.NewRepository(dbpool)
	taxResolver := taxes.NewResolver(logger, taxRepo, clientRepo)

	quoteRepo := quotes.NewRepository(dbpool)
	quoteRenderer := report.NewQuoteRenderer(gotenberg)
	quoteService := quotes.NewService(logger, quoteRepo, clientRepo, taxResolver, quoteRenderer)
	quoteHandler := quotes.NewHandler(logger, quoteService)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		CatalogHandler: catalogHandler,
		QuotesHandler:  quoteHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
