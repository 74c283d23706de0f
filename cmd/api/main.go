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

	"github.com/gin-gonic/gin"

	"github.com/GemmaRyan/FoodManagementApp-server/internal/api"
	"github.com/GemmaRyan/FoodManagementApp-server/internal/config"
	"github.com/GemmaRyan/FoodManagementApp-server/internal/database"
	"github.com/GemmaRyan/FoodManagementApp-server/internal/favorite"
	"github.com/GemmaRyan/FoodManagementApp-server/internal/fridge"
	"github.com/GemmaRyan/FoodManagementApp-server/internal/logging"
	"github.com/GemmaRyan/FoodManagementApp-server/internal/platform/classifier"
	"github.com/GemmaRyan/FoodManagementApp-server/internal/platform/spoonacular"
	"github.com/GemmaRyan/FoodManagementApp-server/internal/shopping"
)

const (
	name            = "fridge-api"
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logging.SetDefault(name, cfg.LogLevel)
	if logging.ParseLevel(cfg.LogLevel) != slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	dsn, err := cfg.DSN()
	if err != nil {
		return err
	}

	if err := database.Migrate(dsn); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	db, err := database.Open(ctx, dsn)
	cancel()
	if err != nil {
		return err
	}
	defer db.Close()

	ingredientClassifier, closeClassifier, err := newClassifier(cfg)
	if err != nil {
		return err
	}
	defer closeClassifier()

	handler := api.NewHandler(
		fridge.NewPostgresStore(db),
		favorite.NewPostgresStore(db),
		shopping.NewPostgresStore(db),
		spoonacular.NewClient(cfg.SpoonacularURL, cfg.SpoonacularAPIKey),
		ingredientClassifier,
	)
	handler.DB = db
	handler.UploadDir = cfg.UploadDir
	handler.DefaultUserID = cfg.DefaultUserID

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(handler, cfg.AllowedOrigins),
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server started", "port", cfg.Port, "classifier", cfg.ClassifierBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to listen on port %s: %w", cfg.Port, err)
	case sig := <-shutdownChan:
		slog.Info("shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server exited gracefully")
	return nil
}

// newClassifier builds the configured image classification backend.
func newClassifier(cfg *config.Config) (api.IngredientClassifier, func(), error) {
	if cfg.ClassifierBackend == config.ClassifierGemini {
		client, err := classifier.NewGeminiClient(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			return nil, nil, fmt.Errorf("error creating gemini client: %w", err)
		}
		return client, func() {
			if err := client.Close(); err != nil {
				slog.Warn("failed to close gemini client", "error", err)
			}
		}, nil
	}
	return classifier.NewHTTPClient(cfg.MLServiceURL), func() {}, nil
}
