package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/bingoloco/backend/internal/api"
	"github.com/bingoloco/backend/internal/config"
	"github.com/bingoloco/backend/internal/db/mongodb"
	"github.com/bingoloco/backend/internal/db/redis"
	"github.com/bingoloco/backend/internal/game/caller"
	"github.com/bingoloco/backend/internal/game/manager"
	"github.com/bingoloco/backend/internal/game/websocket"
)

func main() {
	// Initialize logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	// Load .env if present, then configuration
	if err := godotenv.Load(); err != nil {
		sugar.Debug("No .env file found, using environment and defaults")
	}

	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Announcement provider; without a configured endpoint every draw uses
	// the deterministic fallback phrase
	var announcer caller.Provider
	if cfg.Caller.URL != "" {
		announcer = caller.NewHTTPProvider(cfg.Caller.URL, time.Duration(cfg.Caller.TimeoutSeconds)*time.Second, sugar)
		sugar.Infof("Using external caller at %s", cfg.Caller.URL)
	} else {
		announcer = caller.StaticProvider{}
		sugar.Info("No caller endpoint configured, using fallback announcements")
	}

	// Initialize game manager
	gameManager := manager.NewGameManager(ctx, cfg.Game, announcer, sugar)
	sugar.Info("Game manager initialized")

	// Wire optional backends; the game runs fully in memory without them
	mongoClient, redisClient := connectBackends(ctx, cfg, gameManager, sugar)
	if mongoClient != nil {
		defer func() {
			if err := mongoClient.Disconnect(ctx); err != nil {
				sugar.Errorf("Failed to disconnect from MongoDB: %v", err)
			}
		}()
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				sugar.Errorf("Failed to close Redis connection: %v", err)
			}
		}()
	}

	// Initialize WebSocket hub for viewer pushes
	hub := websocket.NewHub(ctx, sugar)
	go hub.Run()
	gameManager.SetBroadcaster(hub)
	sugar.Info("WebSocket hub is running")

	// Initialize API server
	server, err := api.NewServer(cfg, gameManager, hub, mongoClient, redisClient, sugar)
	if err != nil {
		sugar.Fatalf("Failed to initialize server: %v", err)
	}

	// Start the server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			sugar.Fatalf("Failed to start the server: %v", err)
		}
	}()
	sugar.Infof("Server started on port %d", cfg.Server.Port)

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sugar.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		sugar.Fatalf("Server forced to shutdown: %v", err)
	}

	sugar.Info("Server exited properly")
}

// connectBackends connects the enabled backends and wires them into the game
// manager as snapshot store and public-state cache.
func connectBackends(ctx context.Context, cfg *config.Config, gameManager *manager.GameManager, sugar *zap.SugaredLogger) (*mongo.Client, *goredis.Client) {
	var mongoClient *mongo.Client
	var redisClient *goredis.Client

	if cfg.MongoDB.Enabled {
		client, err := mongodb.Connect(ctx, cfg.MongoDB.URI, sugar)
		if err != nil {
			sugar.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		sugar.Info("Connected to MongoDB")
		store := mongodb.NewGameStore(client, cfg.MongoDB.Database, cfg.MongoDB.SnapshotColl)
		if snap, err := store.LoadSnapshot(ctx); err != nil {
			sugar.Warnf("Failed to load previous snapshot: %v", err)
		} else if snap != nil {
			sugar.Infow("Found snapshot from a previous session",
				"phase", snap.GamePhase,
				"players", len(snap.Players),
				"calledNumbers", len(snap.CalledNumbers))
		}
		gameManager.SetSnapshotStore(store)
		mongoClient = client
	} else {
		sugar.Info("MongoDB disabled, snapshots will not be persisted")
	}

	if cfg.Redis.Enabled {
		client, err := redis.Connect(ctx, cfg.Redis.URI, cfg.Redis.Password, cfg.Redis.DB, sugar)
		if err != nil {
			sugar.Fatalf("Failed to connect to Redis: %v", err)
		}
		sugar.Info("Connected to Redis")
		gameManager.SetStateCache(redis.NewPublicStateCache(client, 5*time.Minute, sugar))
		redisClient = client
	} else {
		sugar.Info("Redis disabled, public-state cache will not be populated")
	}

	return mongoClient, redisClient
}
