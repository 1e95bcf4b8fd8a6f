// Command homied is the homie server daemon: it owns the SQLite database and
// serves the household chore-rota API.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MrJohz/homie/auth"
	"github.com/MrJohz/homie/config"
	"github.com/MrJohz/homie/db"
	"github.com/MrJohz/homie/internal/version"
	"github.com/MrJohz/homie/server"
	"github.com/MrJohz/homie/task"
)

var configPath = flag.String("config", "homie.yaml", "path to config file")

func main() {
	flag.Parse()

	cfg := loadConfig(*configPath)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	logger.Info("starting homied",
		"version", version.Version,
		"commit", version.Commit,
	)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data dir %s: %v", cfg.DataDir, err)
	}
	dbh, err := db.Open(cfg.DBPath())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer dbh.Close() //nolint:errcheck

	authStore, err := auth.NewStore(dbh)
	if err != nil {
		log.Fatalf("Failed to set up auth store: %v", err)
	}
	taskStore, err := task.NewSQLiteStore(dbh)
	if err != nil {
		log.Fatalf("Failed to set up task store: %v", err)
	}

	srv := server.New(*cfg, version.Version, logger)
	srv.SetAuthStore(authStore)
	srv.SetTaskService(task.NewService(taskStore, task.SystemClock(), cfg.DefaultLanguage))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	case <-sigCh:
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			logger.Error("server stop error", "error", err)
		}
	}
}

// loadConfig reads the config file, falling back to defaults when it does
// not exist so a fresh install can start with no config at all.
func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg
	}
	if os.IsNotExist(err) || errors.Is(err, os.ErrNotExist) {
		return config.DefaultConfig()
	}
	log.Fatalf("Failed to load config %s: %v", path, err)
	return nil
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
