package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fetchdl/fetchdl/internal/api"
	"github.com/fetchdl/fetchdl/internal/api/handler"
	"github.com/fetchdl/fetchdl/internal/bot"
	"github.com/fetchdl/fetchdl/internal/config"
	"github.com/fetchdl/fetchdl/internal/fetch"
	"github.com/fetchdl/fetchdl/internal/pipeline"
	"github.com/fetchdl/fetchdl/internal/provider"
	"github.com/fetchdl/fetchdl/internal/repository"
	"github.com/fetchdl/fetchdl/internal/worker"
	"github.com/fetchdl/fetchdl/pkg/telegram"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("fetchdl %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// A local .env is optional; real deployments set the environment.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting fetchdl",
		"version", Version,
		"build_time", BuildTime,
	)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
		logger.Error("failed to create store directory", "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.Download.Dir, 0755); err != nil {
		logger.Error("failed to create download directory", "error", err)
		os.Exit(1)
	}

	store, err := repository.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	client := telegram.NewClient(cfg.Telegram.Token)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	me, err := client.GetMe(startupCtx)
	cancelStartup()
	if err != nil {
		logger.Error("telegram getMe failed", "error", err)
		os.Exit(1)
	}

	stats, err := store.Stats(context.Background())
	if err != nil {
		logger.Error("failed to read store stats", "error", err)
		os.Exit(1)
	}
	logger.Info("bot operational",
		"bot_username", me.Username,
		"users", stats.Users,
		"pending_requests", stats.Pending,
	)

	source := fetch.NewYtDlp(cfg.Download, logger.With("component", "fetch"))
	dispatcher := provider.NewDispatcher(source)
	pl := pipeline.New(client, logger.With("component", "pipeline"))

	proc := worker.New(
		worker.Config{
			PollInterval: cfg.Worker.PollInterval,
			JobTimeout:   cfg.Telegram.HandlerTimeout,
		},
		store,
		dispatcher,
		pl,
		client,
		logger.With("component", "worker"),
	)
	proc.Start()

	var adminServer *http.Server
	if cfg.Admin.Enabled {
		healthHandler := handler.NewHealthHandler(store)
		adminServer = &http.Server{
			Addr:         cfg.Admin.Address(),
			Handler:      api.NewRouter(healthHandler, logger.With("component", "admin")),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		}
		go func() {
			logger.Info("admin server listening", "addr", cfg.Admin.Address())
			if err := adminServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("admin server failed", "error", err)
			}
		}()
	}

	b := bot.New(
		bot.Config{
			PollTimeout:     cfg.Telegram.PollTimeout,
			CallbackTimeout: cfg.Telegram.HandlerTimeout,
		},
		client,
		store,
		dispatcher,
		pl,
		logger.With("component", "bot"),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	b.Run(ctx)

	// Shutdown: the update loop has returned; drain the rest.
	logger.Info("shutting down")

	if err := proc.Stop(30 * time.Second); err != nil {
		logger.Error("worker shutdown", "error", err)
	}
	if adminServer != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		if err := adminServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("admin server shutdown", "error", err)
		}
		cancelShutdown()
	}

	logger.Info("bye")
}
