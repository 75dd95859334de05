package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/joshua-takyi/tourly/internal/config"
	"github.com/joshua-takyi/tourly/internal/connect"
	"github.com/joshua-takyi/tourly/internal/container"
	"github.com/joshua-takyi/tourly/internal/helpers"
	"github.com/joshua-takyi/tourly/internal/notify"
	"github.com/joshua-takyi/tourly/internal/routes"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg)
	logger.Info("Starting Tourly API server", "environment", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cld, err := connect.CloudinaryCredentials(cfg, logger)
	if err != nil {
		logger.Error("Failed to connect to Cloudinary", "error", err)
		os.Exit(1)
	}

	// Initialize database connections
	supaClient, err := connect.InitSupabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to Supabase", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to Supabase successfully")

	verifier, err := helpers.NewJWKSVerifier(ctx, cfg.SupabaseURL, logger)
	if err != nil {
		logger.Error("Failed to load signing keys", "error", err)
		os.Exit(1)
	}
	defer verifier.Close()

	mongoClient, err := connect.MongoDBConnect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := connect.MongoDBDisconnect(mongoClient); err != nil {
			logger.Error("Error disconnecting from MongoDB", "error", err)
		}
	}()

	broadcaster, err := setupBroadcaster(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to connect notification broker", "broker", cfg.NotifyBroker, "error", err)
		os.Exit(1)
	}

	// Initialize dependency container
	appContainer := container.NewContainer(container.Options{
		Logger:         logger,
		Cloudinary:     cld,
		SupabaseClient: supaClient,
		MongoDBClient:  mongoClient,
		Database:       cfg.MongoDBDatabase,
		Transactions:   cfg.MongoDBTransactions,
		Verifier:       verifier,
		Broadcaster:    broadcaster,
		SupaURL:        cfg.SupabaseURL,
		SupaKey:        cfg.SupabaseAnonKey,
	})

	indexCtx, cancelIndexes := context.WithTimeout(ctx, 30*time.Second)
	if err := appContainer.Repo.EnsureIndexes(indexCtx); err != nil {
		cancelIndexes()
		logger.Error("Failed to create MongoDB indexes", "error", err)
		os.Exit(1)
	}
	cancelIndexes()

	// Setup routes
	router := routes.SetupRoutes(appContainer, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		logger.Error("Server failed to start", "error", err)
	}

	logger.Info("Server is shutting down...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// drain queued notifications before the store goes away
	if err := appContainer.Dispatcher.Close(shutdownCtx); err != nil {
		logger.Error("Error closing notification dispatcher", "error", err)
	}

	logger.Info("Server exited")
}

// setupBroadcaster connects the live notification broker selected by NOTIFY_BROKER.
func setupBroadcaster(ctx context.Context, cfg *config.Config, logger *slog.Logger) (notify.Broadcaster, error) {
	switch cfg.NotifyBroker {
	case config.BrokerRedis:
		client, err := connect.RedisConnect(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return notify.NewRedisBroadcaster(client, notify.DefaultChannel), nil
	case config.BrokerRabbit:
		conn, err := connect.RabbitMQConnect(cfg, logger)
		if err != nil {
			return nil, err
		}
		b, err := notify.NewRabbitBroadcaster(conn, notify.DefaultExchange)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		return b, nil
	}
	logger.Info("Live notification broadcast disabled")
	return nil, nil
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	if cfg.IsProduction() {
		// JSON logging for production
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: parseLevel(cfg.LogLevel, slog.LevelInfo),
		})
	} else {
		// Human-readable logging for development
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: parseLevel(cfg.LogLevel, slog.LevelDebug),
		})
	}

	return slog.New(handler)
}

// parseLevel reads LOG_LEVEL (debug, info, warn, error); unset keeps the environment default.
func parseLevel(raw string, fallback slog.Level) slog.Level {
	var level slog.Level
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return fallback
	}
	return level
}
