package api

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/bingoloco/backend/internal/api/handlers"
	"github.com/bingoloco/backend/internal/api/middleware/auth"
	"github.com/bingoloco/backend/internal/config"
	"github.com/bingoloco/backend/internal/game/manager"
	"github.com/bingoloco/backend/internal/game/websocket"
)

// CustomValidator is the request validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// RequestMetrics tracks metrics for API requests
type RequestMetrics struct {
	RequestCount map[string]int
	DurationSum  map[string]float64
	mutex        sync.RWMutex
}

// Server represents the API server
type Server struct {
	echo        *echo.Echo
	cfg         *config.Config
	gameManager *manager.GameManager
	wsHub       *websocket.Hub
	logger      *zap.SugaredLogger
	metrics     *RequestMetrics
	mongoClient *mongo.Client
	redisClient *redis.Client
}

// NewServer creates a new API server. The Mongo and Redis clients may be nil
// when those backends are disabled; the health endpoint reports them as such.
func NewServer(cfg *config.Config, gameManager *manager.GameManager, wsHub *websocket.Hub, mongoClient *mongo.Client, redisClient *redis.Client, logger *zap.SugaredLogger) (*Server, error) {
	e := echo.New()
	e.HideBanner = true

	e.Validator = &CustomValidator{validator: validator.New()}

	metrics := &RequestMetrics{
		RequestCount: make(map[string]int),
		DurationSum:  make(map[string]float64),
	}

	server := &Server{
		echo:        e,
		cfg:         cfg,
		gameManager: gameManager,
		wsHub:       wsHub,
		logger:      logger,
		metrics:     metrics,
		mongoClient: mongoClient,
		redisClient: redisClient,
	}

	server.configureMiddleware()

	if err := server.configureRoutes(); err != nil {
		return nil, err
	}

	return server, nil
}

// configureMiddleware sets up Echo middleware
func (s *Server) configureMiddleware() {
	s.echo.Use(middleware.Logger())
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORS())
	s.echo.Use(middleware.RequestID())

	s.echo.Use(s.metricsMiddleware)

	// Attach a request-scoped logger carrying the request ID
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Response().Header().Get(echo.HeaderXRequestID)
			c.Set("requestID", requestID)

			requestLogger := s.logger.With(
				"requestID", requestID,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"clientIP", c.RealIP(),
			)
			c.Set("logger", requestLogger)

			return next(c)
		}
	})
}

// metricsMiddleware records metrics for each request
func (s *Server) metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)

		duration := time.Since(start).Seconds()
		key := c.Request().Method + ":" + c.Request().URL.Path + ":" + strconv.Itoa(c.Response().Status)

		s.metrics.mutex.Lock()
		s.metrics.RequestCount[key]++
		s.metrics.DurationSum[key] += duration
		s.metrics.mutex.Unlock()

		return err
	}
}

// configureRoutes sets up API routes
func (s *Server) configureRoutes() error {
	gameHandler := handlers.NewGameHandler(s.gameManager, s.logger)
	stateHandler := handlers.NewStateHandler(s.gameManager, s.logger)
	wsHandler := handlers.NewWebSocketHandler(s.wsHub, s.logger)
	healthHandler := handlers.NewHealthHandler(s.mongoClient, s.redisClient, s.logger)

	authHandler, err := handlers.NewAuthHandler(s.cfg, s.logger)
	if err != nil {
		return err
	}

	apiV1 := s.echo.Group("/api/v1")

	// Authentication (no JWT required)
	authGroup := apiV1.Group("/auth")
	authGroup.POST("/login", authHandler.Login)

	jwtMiddleware := auth.JWTMiddleware(s.cfg.JWT.Secret)

	// Operator-only state and commands
	apiV1.GET("/state", stateHandler.GetAdminState, jwtMiddleware)

	poolGroup := apiV1.Group("/pool", jwtMiddleware)
	poolGroup.POST("/generate", gameHandler.GeneratePool)
	poolGroup.PUT("/size", gameHandler.SetPoolSize)

	apiV1.PUT("/price", gameHandler.SetCardPrice, jwtMiddleware)
	apiV1.PUT("/prizes/distribution", gameHandler.UpdateDistribution, jwtMiddleware)
	apiV1.PATCH("/settings", gameHandler.UpdateSettings, jwtMiddleware)

	gameGroup := apiV1.Group("/game", jwtMiddleware)
	gameGroup.POST("/start", gameHandler.StartGame)
	gameGroup.POST("/draw", gameHandler.DrawNumber)
	gameGroup.POST("/reset", gameHandler.ResetGame)

	// Player lifecycle; reservation and lookup are open so remote players
	// can reserve cards and log back in by name, the rest is operator-only
	playerGroup := apiV1.Group("/players")
	playerGroup.POST("", gameHandler.AddPlayer)
	playerGroup.GET("/lookup", stateHandler.LookupPlayer)
	playerGroup.PATCH("/:playerId/dauber", gameHandler.ChangeDauber)
	playerGroup.POST("/:playerId/confirm", gameHandler.ConfirmPayment, jwtMiddleware)
	playerGroup.DELETE("/:playerId", gameHandler.CancelOrder, jwtMiddleware)

	// Public projection (no auth required)
	apiV1.GET("/state/public", stateHandler.GetPublicState)

	// WebSocket viewer feed
	s.echo.GET("/ws/viewer", wsHandler.HandleViewerConnection)

	// Health check endpoint (no auth required)
	s.echo.GET("/health", healthHandler.Check)

	// Metrics endpoint
	s.echo.GET("/metrics", func(c echo.Context) error {
		s.metrics.mutex.RLock()
		defer s.metrics.mutex.RUnlock()
		return c.JSON(http.StatusOK, map[string]interface{}{
			"requestCount": s.metrics.RequestCount,
			"durationSum":  s.metrics.DurationSum,
		})
	})

	return nil
}

// Start starts the API server
func (s *Server) Start() error {
	address := s.cfg.Server.Host + ":" + strconv.Itoa(s.cfg.Server.Port)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the API server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
