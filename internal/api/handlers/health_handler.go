package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	mongoClient *mongo.Client
	redisClient *redis.Client
	logger      *zap.SugaredLogger
}

// HealthStatus represents the health status of a component
type HealthStatus struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"responseTimeMs"`
	Error        string `json:"error,omitempty"`
}

// SystemHealth represents the health of the entire system
type SystemHealth struct {
	Status     string                  `json:"status"`
	Timestamp  string                  `json:"timestamp"`
	Version    string                  `json:"version"`
	Components map[string]HealthStatus `json:"components"`
}

// NewHealthHandler creates a new health handler. Either client may be nil
// when the corresponding backend is disabled; disabled components are
// reported as such without failing the check.
func NewHealthHandler(mongoClient *mongo.Client, redisClient *redis.Client, logger *zap.SugaredLogger) *HealthHandler {
	return &HealthHandler{
		mongoClient: mongoClient,
		redisClient: redisClient,
		logger:      logger,
	}
}

// Check performs a health check of all system components
func (h *HealthHandler) Check(c echo.Context) error {
	systemHealth := SystemHealth{
		Status:     "healthy",
		Timestamp:  time.Now().Format(time.RFC3339),
		Version:    "1.0.0",
		Components: make(map[string]HealthStatus),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	wg.Add(1)
	go func() {
		defer wg.Done()
		status := h.checkMongoDB()
		mu.Lock()
		systemHealth.Components["mongodb"] = status
		if status.Status == "unhealthy" {
			systemHealth.Status = "degraded"
		}
		mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		status := h.checkRedis()
		mu.Lock()
		systemHealth.Components["redis"] = status
		if status.Status == "unhealthy" {
			systemHealth.Status = "degraded"
		}
		mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		status := h.checkAPIServer()
		mu.Lock()
		systemHealth.Components["api"] = status
		mu.Unlock()
	}()

	wg.Wait()

	statusCode := http.StatusOK
	if systemHealth.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, systemHealth)
}

// checkMongoDB checks the health of the MongoDB connection
func (h *HealthHandler) checkMongoDB() HealthStatus {
	if h.mongoClient == nil {
		return HealthStatus{Status: "disabled"}
	}

	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := h.mongoClient.Ping(ctx, readpref.Primary())

	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		h.logger.Errorw("MongoDB health check failed", "error", err)
		return HealthStatus{
			Status:       "unhealthy",
			ResponseTime: elapsed,
			Error:        err.Error(),
		}
	}

	return HealthStatus{
		Status:       "healthy",
		ResponseTime: elapsed,
	}
}

// checkRedis checks the health of the Redis connection
func (h *HealthHandler) checkRedis() HealthStatus {
	if h.redisClient == nil {
		return HealthStatus{Status: "disabled"}
	}

	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := h.redisClient.Ping(ctx).Result()

	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		h.logger.Errorw("Redis health check failed", "error", err)
		return HealthStatus{
			Status:       "unhealthy",
			ResponseTime: elapsed,
			Error:        err.Error(),
		}
	}

	return HealthStatus{
		Status:       "healthy",
		ResponseTime: elapsed,
	}
}

// checkAPIServer checks the health of the API server itself
func (h *HealthHandler) checkAPIServer() HealthStatus {
	start := time.Now()
	elapsed := time.Since(start).Milliseconds()

	return HealthStatus{
		Status:       "healthy",
		ResponseTime: elapsed,
	}
}
