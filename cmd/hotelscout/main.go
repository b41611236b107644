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

	"github.com/umerzulfiqar021/Puppeteer/antidetect"
	"github.com/umerzulfiqar021/Puppeteer/api"
	"github.com/umerzulfiqar021/Puppeteer/backend"
	"github.com/umerzulfiqar021/Puppeteer/cache"
	"github.com/umerzulfiqar021/Puppeteer/config"
	"github.com/umerzulfiqar021/Puppeteer/scraper"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("hotelscout starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
	)

	// ── 3. Assemble rendering backends, in attempt order ────────────
	ad := antidetect.New(cfg.AntiDetect)
	backends := buildBackends(cfg, ad)
	if len(backends) == 0 {
		slog.Warn("no rendering backend configured, scrape requests will fail")
	}

	// ── 4. Orchestrator + cache ─────────────────────────────────────
	store := cache.New(cfg.Cache.MaxEntries)
	orch := scraper.New(backends, cfg, store, slog.Default())
	slog.Info("backends configured", "backends", orch.Kinds())

	// ── 5. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(orch, cfg, startTime)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("hotelscout stopped")
}

// buildBackends returns the configured backends in default attempt order:
// cloud browser, local browser, serverless browser, render API.
func buildBackends(cfg *config.Config, ad *antidetect.Controller) []backend.Backend {
	nav := cfg.Scraper.NavigationTimeout
	var backends []backend.Backend

	if cfg.Backends.CloudWSURL != "" {
		backends = append(backends, backend.NewCloud(cfg.Backends.CloudWSURL, ad, nav))
	}
	if cfg.Backends.LocalEnabled {
		backends = append(backends, backend.NewLocal(cfg.Backends, ad, nav))
	}
	if cfg.Backends.ServerlessBin != "" {
		backends = append(backends, backend.NewServerless(cfg.Backends, ad, nav))
	}
	if cfg.Backends.RenderAPIURL != "" && cfg.Backends.RenderAPIKey != "" {
		backends = append(backends, backend.NewRenderAPI(
			cfg.Backends.RenderAPIURL,
			cfg.Backends.RenderAPIKey,
			cfg.Backends.CountryHint,
			ad,
			cfg.Scraper.RenderTimeout,
		))
	}
	return backends
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
