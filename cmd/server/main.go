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

	"github.com/joho/godotenv"

	"github.com/apizfit/racekit/internal/api"
	"github.com/apizfit/racekit/internal/auth"
	"github.com/apizfit/racekit/internal/collection"
	"github.com/apizfit/racekit/internal/config"
	"github.com/apizfit/racekit/internal/database"
	"github.com/apizfit/racekit/internal/kit"
	"github.com/apizfit/racekit/internal/profile"
	"github.com/apizfit/racekit/internal/runner"
	"github.com/apizfit/racekit/internal/stats"
)

const bootstrapAdminEmail = "admin@racekit.local"

func main() {
	// Optional .env for local development; environment wins in production.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := database.New(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	accountRepo := auth.NewAccountRepository(db.Pool())
	sessionRepo := auth.NewSessionRepository(db.Pool())
	profileRepo := profile.NewRepository(db.Pool())
	runnerRepo := runner.NewRepository(db.Pool())
	kitRepo := kit.NewRepository(db.Pool())
	collectionRepo := collection.NewRepository(db.Pool())
	statsRepo := stats.NewRepository(db.Pool())

	authService := auth.NewService(
		accountRepo, sessionRepo, profileRepo,
		cfg.BcryptCost,
		time.Duration(cfg.SessionTTLHours)*time.Hour,
		cfg.ResetTokenSecret,
		time.Duration(cfg.ResetTokenTTLMinutes)*time.Minute,
	)

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := authService.BootstrapAdmin(bootCtx, bootstrapAdminEmail); err != nil {
		slog.Error("failed to bootstrap admin account", "error", err)
		bootCancel()
		os.Exit(1)
	}
	bootCancel()

	router := api.NewRouter(api.RouterDeps{
		DBPinger:       db,
		Version:        cfg.Version,
		AuthService:    authService,
		AccountRepo:    accountRepo,
		ProfileRepo:    profileRepo,
		RunnerRepo:     runnerRepo,
		KitRepo:        kitRepo,
		CollectionRepo: collectionRepo,
		StatsRepo:      statsRepo,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting race kit server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
