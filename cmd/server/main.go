// farmerchat - Farmer.Chat advisor and alert pages server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/farmerchat/internal/api"
	"github.com/ashureev/farmerchat/internal/backend"
	"github.com/ashureev/farmerchat/internal/config"
	"github.com/ashureev/farmerchat/internal/identity"
	"github.com/ashureev/farmerchat/internal/live"
	"github.com/ashureev/farmerchat/internal/middleware"
	"github.com/ashureev/farmerchat/internal/render"
	"github.com/ashureev/farmerchat/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting server",
		"port", cfg.Port,
		"dev", cfg.IsDevelopment(),
		"query_api", cfg.Backend.QueryURL,
		"alert_api", cfg.Backend.AlertURL,
		"timezone", cfg.Display.TimeZone)

	// Initialize dependencies.
	client := backend.NewClient(cfg.Backend.Timeout)
	queries := backend.NewQueryClient(client, cfg.Backend.QueryURL)
	alerts := backend.NewAlertClient(client, cfg.Backend.AlertURL)

	views, err := web.NewViews(cfg.Display.Location, render.DefaultStyles)
	if err != nil {
		slog.Error("Failed to parse templates", "error", err)
		os.Exit(1)
	}

	registry := live.NewRegistry()

	// Initialize handlers.
	pageHandler := api.NewHandler(registry, views, queries, alerts)
	healthHandler := api.NewHealthHandler(registry, cfg)
	liveHandler := live.NewHandler(registry, views, queries, alerts, cfg.AllowedOrigins, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Public routes.
	healthHandler.RegisterHealth(r)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", web.StaticHandler("/static/"))

	// Page and live routes carry the anonymous device identity.
	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(cfg.IsDevelopment()))
		pageHandler.RegisterRoutes(r)
		r.Get("/ws/advisor", liveHandler.For(live.AppAdvisor).ServeHTTP)
		r.Get("/ws/alerts", liveHandler.For(live.AppAlerts).ServeHTTP)
	})

	// Create server.
	// Live connections are long-lived, so there is no WriteTimeout; form
	// submits are bounded by BACKEND_TIMEOUT instead.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start session sweeper.
	live.StartSweeper(ctx, registry, cfg.Session.SweepInterval, cfg.Session.TTL)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
