// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/pursuegen/pursue-go/internal/access"
	"github.com/pursuegen/pursue-go/internal/cache"
	"github.com/pursuegen/pursue-go/internal/config"
	"github.com/pursuegen/pursue-go/internal/content"
	"github.com/pursuegen/pursue-go/internal/handler"
	"github.com/pursuegen/pursue-go/internal/handler/api"
	"github.com/pursuegen/pursue-go/internal/logging"
	"github.com/pursuegen/pursue-go/internal/middleware"
	"github.com/pursuegen/pursue-go/internal/notify"
	"github.com/pursuegen/pursue-go/internal/pco"
	"github.com/pursuegen/pursue-go/internal/render"
	"github.com/pursuegen/pursue-go/internal/scheduler"
	"github.com/pursuegen/pursue-go/internal/session"
	"github.com/pursuegen/pursue-go/internal/store"
	"github.com/pursuegen/pursue-go/internal/version"
	"github.com/pursuegen/pursue-go/web"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Pursue - student ministry site engine\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PURSUE_SESSION_SECRET     Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PURSUE_DB_PATH            SQLite database path (default: ./data/pursue.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PURSUE_SERVER_PORT        Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PURSUE_ENV                Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PURSUE_CONTENT_BACKEND    Section storage: sql|options (default: sql)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PURSUE_ADMIN_EMAILS       Comma-separated access request recipients\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PURSUE_REDIS_URL          Redis URL for distributed caching (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		_, _ = fmt.Printf("pursue %s\n", version.String())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data and uploads directories exist
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the audit log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	eventLogHandler := logging.NewEventLogHandler(textHandler, db)
	logger = slog.New(eventLogHandler)
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	// Seed the default administrator, and demo content when enabled
	ctx := context.Background()
	if err := store.Seed(ctx, db); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}
	if cfg.DoSeed {
		if err := store.SeedContent(ctx, db); err != nil {
			return fmt.Errorf("seeding content: %w", err)
		}
	}

	queries := store.New(db)

	// Initialize session manager
	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	// Initialize cache
	appCache, err := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:    cfg.CacheMaxSize,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() {
		if err := appCache.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	if cfg.UseRedisCache() {
		slog.Info("cache initialized", "backend", "redis", "url", cfg.RedisURL)
	} else {
		slog.Info("cache initialized", "backend", "memory")
	}

	// Select the section storage backend
	var backend content.Backend
	if cfg.ContentBackend == "options" {
		backend = content.NewOptionBackend(queries)
	} else {
		backend = content.NewSQLBackend(queries)
	}
	contentStore := content.NewStore(backend, appCache)
	slog.Info("content store initialized", "backend", cfg.ContentBackend)

	// Outbound mail: real SMTP when configured, logged otherwise
	var notifier notify.Notifier
	if cfg.MailEnabled() {
		notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.MailFrom,
		})
		slog.Info("smtp notifier initialized", "host", cfg.SMTPHost)
	} else {
		notifier = notify.NewLogNotifier(logger)
		slog.Warn("outbound mail not configured; notifications are logged only")
	}
	dispatcher := notify.NewDispatcher(notifier, logger, 2)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	// Access lifecycle controller
	accessController := access.NewController(queries, dispatcher, logger, cfg.BaseURL, cfg.AdminEmails)

	// Planning Center sync (mock client) and background jobs
	var syncer *pco.Syncer
	if cfg.PCOSyncEnabled {
		syncer = pco.NewSyncer(pco.MockClient{}, queries, logger)
		slog.Info("planning center sync enabled")
	}
	sched := scheduler.New(db, syncer, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Initialize template renderer
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	// Create router
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))

	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())
	r.Use(middleware.SecurityHeaders(securityConfig))

	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.LoadUser(sessionManager, db))

	csrfConfig := middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())
	csrfMiddleware := middleware.CSRF(csrfConfig)
	slog.Info("CSRF protection initialized")

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	slog.Info("login protection initialized",
		"max_failed_attempts", 5,
		"lockout_duration", "15m",
	)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(db, renderer, sessionManager, loginProtection, accessController)
	leaderHandler := handler.NewLeaderHandler(db, contentStore, renderer, sessionManager)
	accessHandler := handler.NewAccessHandler(accessController, renderer, sessionManager)
	healthHandler := handler.NewHealthHandler(db, cfg.UploadsDir)
	apiHandler := api.NewHandler(api.Config{
		DB:         db,
		Content:    contentStore,
		Access:     accessController,
		Syncer:     syncer,
		UploadsDir: cfg.UploadsDir,
	})

	// Health check routes
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// Auth and registration routes (CSRF protected)
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.Post(handler.RouteLogin, authHandler.Login)
		r.Get(handler.RouteLogout, authHandler.Logout)
		r.Post(handler.RouteLogout, authHandler.Logout)
		r.Get(handler.RouteRegister, authHandler.RegisterForm)
		r.Post(handler.RouteRegister, authHandler.Register)
		r.Get(handler.RouteDenied, authHandler.Denied)
	})

	// Approval links mailed to administrators
	r.Get(handler.RouteAccessAction, accessHandler.Action)

	// Leader area
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.RequireLeader(sessionManager))
		r.Get(handler.RouteLeader, leaderHandler.Dashboard)
		r.Get(handler.RouteUsers, leaderHandler.Users)
	})
	r.With(csrfMiddleware, middleware.RequireViewer(sessionManager)).
		Get(handler.RouteView, leaderHandler.View)

	// REST API
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", apiHandler.Status)
		r.Get("/auth/user", apiHandler.AuthUser)

		// Public site reads
		r.Get("/content/{page}", apiHandler.ListSections)
		r.Get("/content/{page}/{key}", apiHandler.GetSection)
		r.Get("/settings", apiHandler.ListSettings)
		r.Get("/shortcuts", apiHandler.ListShortcuts)
		r.Get("/events", apiHandler.ListEvents)
		r.Get("/media", apiHandler.ListMedia)

		// Privileged reads
		r.With(middleware.RequireViewerAPI).Get("/users", apiHandler.ListUsers)

		// Writes require the editing role
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireEditorAPI)
			r.Put("/content/{page}/{key}", apiHandler.UpdateSection)
			r.Put("/settings", apiHandler.UpdateSettings)
			r.Post("/shortcuts", apiHandler.CreateShortcut)
			r.Delete("/shortcuts/{id}", apiHandler.DeleteShortcut)
			r.Post("/events", apiHandler.CreateEvent)
			r.Put("/events/{id}", apiHandler.UpdateEvent)
			r.Delete("/events/{id}", apiHandler.DeleteEvent)
			r.Post("/media", apiHandler.UploadMedia)
			r.Delete("/media/{id}", apiHandler.DeleteMedia)
			r.Post("/users", apiHandler.CreateUser)
			r.Put("/users/{id}/role", apiHandler.SetUserRole)
			r.Delete("/users/{id}", apiHandler.DeleteUser)
			r.Post("/pco/sync", apiHandler.SyncPCO)
		})
	})
	slog.Info("REST API mounted at /api")

	// Serve uploaded media files
	uploadsHandler := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir)))
	r.Handle("/uploads/*", uploadsHandler)

	// Root redirects to the leader area; the public site is served separately.
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, handler.RouteLeader, http.StatusSeeOther)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
