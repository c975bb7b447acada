package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/joshua-takyi/travelease/internal/config"
	"github.com/joshua-takyi/travelease/internal/connect"
	"github.com/joshua-takyi/travelease/internal/container"
	"github.com/joshua-takyi/travelease/internal/helpers"
	"github.com/joshua-takyi/travelease/internal/models"
	"github.com/joshua-takyi/travelease/internal/routes"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// Load environment variables; .env.local wins over .env
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("Starting TravelEase API server", "environment", cfg.Environment, "db_driver", cfg.DBDriver)

	ctx := context.Background()

	// Initialize database connections
	db, err := connect.OpenDatabase(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database successfully", "driver", cfg.DBDriver)

	repo := models.SQLNewRepo(db)
	applied, err := repo.Migrate(ctx)
	if err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}
	if len(applied) > 0 {
		logger.Info("Applied migrations", "versions", applied)
	}

	if cfg.SeedPackages {
		n, err := models.SeedIfEmpty(ctx, repo)
		if err != nil {
			logger.Error("Failed to seed travel packages", "error", err)
			os.Exit(1)
		}
		if n > 0 {
			logger.Info("Seeded travel packages", "count", n)
		}
	}

	var mongoClient *mongo.Client
	if cfg.CartSyncEnabled() {
		mongoClient, err = connect.MongoDBConnect(ctx, cfg)
		if err != nil {
			logger.Error("Failed to connect to MongoDB", "error", err)
			os.Exit(1)
		}
		if err := models.MongodbNewRepo(mongoClient, cfg.MongoDBDatabase).EnsureCartIndexes(ctx); err != nil {
			logger.Warn("Failed to create saved cart indexes", "error", err)
		}
		logger.Info("Connected to MongoDB successfully")
	} else {
		logger.Info("MONGODB_URI not set, saved carts disabled")
	}

	tokens := helpers.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)
	if cfg.JWTJWKSURL != "" {
		jwks, err := helpers.LoadJWKS(ctx, cfg.JWTJWKSURL)
		if err != nil {
			logger.Error("Failed to load JWKS", "url", cfg.JWTJWKSURL, "error", err)
			os.Exit(1)
		}
		defer jwks.EndBackground()
		tokens = tokens.WithJWKS(jwks)
		logger.Info("Loaded JWKS", "url", cfg.JWTJWKSURL)
	}

	// Initialize dependency container
	appContainer := container.NewContainer(logger, db, mongoClient, cfg.MongoDBDatabase, tokens)

	// Setup routes
	router := routes.SetupRoutes(appContainer, cfg.CORSAllowOrigins)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Close database connections
	if err := db.Close(); err != nil {
		logger.Error("Error closing database", "error", err)
	}
	if err := connect.MongoDBDisconnect(mongoClient); err != nil {
		logger.Error("Error disconnecting from MongoDB", "error", err)
	}

	logger.Info("Server exited")
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	if cfg.IsProduction() {
		// JSON logging for production
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.SlogLevel(),
		})
	} else {
		// Human-readable logging for development
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.SlogLevel(),
		})
	}

	return slog.New(handler)
}
