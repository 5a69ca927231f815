package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/docs"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apiclient"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/config"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/database"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/handlers"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/logger"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/metrics"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/middleware"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/repository"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/scheduler"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/service"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/session"
)

// @title Indicador Online Dashboard API
// @version 1.0
// @description Back office for building inspection checklists and reviewing field responses.
// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey SessionAuth
// @in header
// @name X-Session-ID

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger.Setup(logger.Config{
		Level:   cfg.App.LogLevel,
		App:     cfg.App.Name,
		Version: cfg.App.Version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Session tokens are sealed at rest with a key from Vault or the environment
	box, err := loadSealer(ctx, cfg)
	if err != nil {
		slog.Error("Failed to load session encryption key", "error", err)
		os.Exit(1)
	}

	// Initialize database
	db, err := database.New(ctx, &cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("Database connection established")

	// Run database migrations
	if err := database.NewMigrationExecutor(db.DB).RunMigrations(ctx); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed")

	// Initialize repositories
	sessionRepo := repository.NewSessionRepository(db.DB, box)
	draftRepo := repository.NewDraftRepository(db.DB)
	auditRepo := repository.NewAuditRepository(db.DB)

	// Initialize services
	m := metrics.New()
	client := apiclient.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, m)
	sessions := session.NewManager(sessionRepo, client, m, cfg.Session.Timeout)

	auditSvc := service.NewAuditService(auditRepo)
	authSvc := service.NewAuthService(sessions, auditSvc)
	checklistSvc := service.NewChecklistService(draftRepo, auditSvc, m)
	responseSvc := service.NewResponseService()
	anomalySvc := service.NewAnomalyService(auditSvc, m)
	catalogSvc := service.NewCatalogService(auditSvc)

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(sessions, client, cfg.Session.CookieName)
	corsMw := middleware.NewCORSMiddleware(&cfg.CORS)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authSvc, authMw, cfg.Session)
	checklistHandler := handlers.NewChecklistHandler(checklistSvc)
	responseHandler := handlers.NewResponseHandler(responseSvc, anomalySvc)
	catalogHandler := handlers.NewCatalogHandler(catalogSvc)
	auditHandler := handlers.NewAuditHandler(auditSvc)
	healthHandler := handlers.NewHealthHandler(db, cfg.App.Version)

	// Setup router
	mux := http.NewServeMux()
	protected := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, authMw.Authenticate(h))
	}

	// Public routes
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.Handle("GET /metrics", m.Handler())
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Session
	protected("POST /api/v1/auth/logout", authHandler.Logout)
	protected("GET /api/v1/auth/me", authHandler.Me)

	// Checklist drafts
	protected("GET /api/v1/drafts", checklistHandler.ListDrafts)
	protected("POST /api/v1/drafts", checklistHandler.CreateDraft)
	protected("GET /api/v1/drafts/{id}", checklistHandler.GetDraft)
	protected("DELETE /api/v1/drafts/{id}", checklistHandler.DeleteDraft)
	protected("POST /api/v1/drafts/{id}/commands", checklistHandler.ApplyCommand)
	protected("GET /api/v1/drafts/{id}/payload", checklistHandler.Payload)
	protected("POST /api/v1/drafts/{id}/submit", checklistHandler.Submit)

	// Published checklists
	protected("GET /api/v1/checklists", checklistHandler.ListChecklists)
	protected("DELETE /api/v1/checklists/{id}", checklistHandler.RemoveChecklist)
	protected("PUT /api/v1/checklists/{id}/expiry", checklistHandler.SetExpiry)
	protected("PUT /api/v1/checklists/{id}/company", checklistHandler.SetCompany)
	protected("POST /api/v1/checklists/{id}/companies", checklistHandler.ConnectCompanies)
	protected("POST /api/v1/checklists/{id}/employees", checklistHandler.ConnectEmployees)

	// Responses and anomaly review
	protected("GET /api/v1/responses", responseHandler.ListResponses)
	protected("GET /api/v1/answers/{id}/anomaly", responseHandler.GetResolution)
	protected("POST /api/v1/anomalies/{id}/transition", responseHandler.Transition)

	// Catalog
	protected("GET /api/v1/categories", catalogHandler.ListCategories)
	protected("POST /api/v1/categories", catalogHandler.CreateCategory)
	protected("GET /api/v1/companies", catalogHandler.ListCompanies)
	protected("POST /api/v1/companies", catalogHandler.CreateCompany)
	protected("GET /api/v1/companies/{id}", catalogHandler.GetCompany)
	protected("PUT /api/v1/companies/{id}", catalogHandler.UpdateCompany)
	protected("GET /api/v1/employees", catalogHandler.ListEmployees)
	protected("POST /api/v1/employees", catalogHandler.CreateEmployee)
	protected("DELETE /api/v1/employees/{id}", catalogHandler.RemoveEmployee)
	protected("GET /api/v1/roles", catalogHandler.ListRoles)

	// Admin routes
	mux.Handle("GET /api/v1/admin/audit-logs",
		authMw.Authenticate(
			middleware.RequireRole("superAdmin")(
				http.HandlerFunc(auditHandler.ListAuditLogs),
			),
		),
	)

	// Apply global middleware
	handler := middleware.SecurityHeaders(cfg.App.Env == "production")(
		corsMw.Handler(
			rateLimiter.Limit(
				middleware.LoggingMiddleware(
					middleware.Metrics(m)(mux),
				),
			),
		),
	)

	// Housekeeping
	sched := scheduler.New()
	if err := sched.Every("session_sweep", cfg.Session.SweepInterval, sweepSessions(sessions)); err != nil {
		slog.Error("Failed to schedule session sweep", "error", err)
		os.Exit(1)
	}
	if err := sched.Every("draft_eviction", cfg.Session.SweepInterval, evictDrafts(checklistSvc, cfg.Session.DraftIdle)); err != nil {
		slog.Error("Failed to schedule draft eviction", "error", err)
		os.Exit(1)
	}
	if err := sched.Every("rate_limit_cleanup", time.Minute, func(context.Context) error {
		rateLimiter.Cleanup()
		return nil
	}); err != nil {
		slog.Error("Failed to schedule rate limit cleanup", "error", err)
		os.Exit(1)
	}
	sched.Start(ctx)
	defer sched.Stop()

	// Create server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", addr, "upstream", cfg.Upstream.BaseURL, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		slog.Error("Server failed to start", "error", err)
		os.Exit(1)
	}

	slog.Info("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := getContext(30 * time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}
