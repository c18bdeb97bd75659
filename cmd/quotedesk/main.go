package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quotedesk/quotedesk/internal/app"
	"github.com/quotedesk/quotedesk/internal/auth"
	"github.com/quotedesk/quotedesk/internal/backend"
	"github.com/quotedesk/quotedesk/internal/catalog"
	"github.com/quotedesk/quotedesk/internal/documents"
	"github.com/quotedesk/quotedesk/internal/draft"
	"github.com/quotedesk/quotedesk/internal/observability"
	"github.com/quotedesk/quotedesk/internal/platform/cache"
	"github.com/quotedesk/quotedesk/internal/wizard"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := auth.NewSessionManager(redisClient, "quotedesk_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	metrics := observability.NewMetrics()

	client := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, logger, metrics)
	authService := backend.NewAuthService(client)
	inventoryService := backend.NewInventoryService(client)
	aiService := backend.NewAIService(client)
	quotationService := backend.NewQuotationService(client)
	invoiceService := backend.NewInvoiceService(client)
	pdfService := backend.NewPDFService(client)

	catalogService := catalog.NewService(inventoryService, redisClient, cfg.CatalogTTL, logger)
	draftStore := draft.NewStore(redisClient, cfg.DraftTTL, logger)
	parser := wizard.NewParser(aiService, logger)
	wizardService := wizard.NewService(draftStore, quotationService, invoiceService, catalogService, parser, logger)

	authHandler := auth.NewHandler(logger, authService, sessionManager)
	catalogHandler := catalog.NewHandler(logger, catalogService, sessionManager)
	wizardHandler := wizard.NewHandler(logger, wizardService, sessionManager)
	documentsHandler := documents.NewHandler(logger, quotationService, invoiceService, pdfService, sessionManager)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		AuthHandler:      authHandler,
		CatalogHandler:   catalogHandler,
		WizardHandler:    wizardHandler,
		DocumentsHandler: documentsHandler,
		Metrics:          metrics,
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
