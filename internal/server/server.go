// Package server sets up the HTTP server with all routes
package server

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/vindexchain/ai-module/internal/assistant"
	"github.com/vindexchain/ai-module/internal/cache"
	"github.com/vindexchain/ai-module/internal/circuitbreaker"
	"github.com/vindexchain/ai-module/internal/config"
	"github.com/vindexchain/ai-module/internal/health"
	"github.com/vindexchain/ai-module/internal/history"
	"github.com/vindexchain/ai-module/internal/logging"
	"github.com/vindexchain/ai-module/internal/metrics"
	"github.com/vindexchain/ai-module/internal/predictions"
	"github.com/vindexchain/ai-module/internal/ratelimit"
	"github.com/vindexchain/ai-module/internal/realtime"
	"github.com/vindexchain/ai-module/internal/reputation"
	"github.com/vindexchain/ai-module/internal/security"
	"github.com/vindexchain/ai-module/internal/signals"
	"github.com/vindexchain/ai-module/internal/validation"
)

// cachePurgeInterval is how often expired cache rows are deleted when
// the cache is backed by Postgres.
const cachePurgeInterval = time.Hour

// historyBreakerThreshold trips the history circuit after this many
// consecutive store failures.
const historyBreakerThreshold = 5

// -----------------------------------------------------------------------------
// Server
// -----------------------------------------------------------------------------

// Server wraps the HTTP server and dependencies
type Server struct {
	cfg          *config.Config
	history      history.Store
	cacheStore   cache.Store
	memCache     *cache.Memory // nil when using Postgres
	snapshots    reputation.SnapshotStore
	reputation   *reputation.Service
	worker       *reputation.Worker
	predictions  *predictions.Service
	assistant    *assistant.Service
	realtimeHub  *realtime.Hub
	checks       *health.Registry
	rateLimiter  *ratelimit.Limiter
	db           *sql.DB // nil if using in-memory
	router       *gin.Engine
	httpSrv      *http.Server
	logger       *slog.Logger
	cancelRunCtx context.CancelFunc // cancels background goroutines started in Run

	// Health state
	ready   atomic.Bool
	healthy atomic.Bool
}

// Option configures the server
type Option func(*Server)

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithHistory sets a custom transaction history store (for testing)
func WithHistory(store history.Store) Option {
	return func(s *Server) {
		s.history = store
	}
}

// New creates a new server instance
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		checks: health.NewRegistry(),
		logger: logging.New(cfg.LogLevel, cfg.Env),
	}

	// Apply options first (may set history/logger)
	for _, opt := range opts {
		opt(s)
	}

	// Initialize storage (Postgres if DATABASE_URL set, otherwise in-memory)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}

		// Configure connection pool
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		// Test connection
		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		s.db = db
		if s.history == nil {
			s.history = history.NewPostgresStore(db)
		}
		s.cacheStore = cache.NewPostgres(db)
		s.snapshots = reputation.NewPostgresSnapshotStore(db)
		s.checks.Register("database", health.DBChecker(db))
		s.logger.Info("using PostgreSQL storage", "url", maskDSN(cfg.DatabaseURL))
	} else {
		if s.history == nil {
			s.history = history.NewMemoryStore()
		}
		s.memCache = cache.NewMemory()
		s.cacheStore = s.memCache
		s.snapshots = reputation.NewMemorySnapshotStore()
		s.logger.Info("using in-memory storage (data will not persist)")
	}
	s.checks.Register("cache", health.PingChecker("cache", s.cacheStore))

	// Warn early about an unusable upstream API endpoint rather than
	// failing on the first signal check.
	if cfg.VindexAPIURL != "" {
		if err := security.ValidateEndpointURL(cfg.VindexAPIURL); err != nil {
			s.logger.Warn("VINDEX_API_URL failed validation, upstream signals disabled",
				"error", err,
			)
		}
	}

	// Scoring pipeline
	engine := reputation.NewEngineWithThresholds(reputation.Thresholds{
		Low:    cfg.RiskThresholdLow,
		Medium: cfg.RiskThresholdMed,
	})
	gateway := reputation.NewGateway(s.cacheStore, cfg.ReputationCacheTTL, s.logger)
	breaker := circuitbreaker.New(historyBreakerThreshold, 30*time.Second)

	sigs := signals.NewSet()
	sigs.SuspiciousPatterns = anyOf(
		signals.NewRapidFireChecker(),
		signals.NewSelfDealingChecker(),
	)

	// Realtime hub broadcasts fresh assessments to WebSocket clients
	s.realtimeHub = realtime.NewHub(s.logger)

	s.reputation = reputation.NewService(engine, s.history, sigs, gateway, s.logger).
		WithHistoryLimit(cfg.MaxHistoryLimit).
		WithBreaker(breaker).
		WithEventSink(s.realtimeHub)

	// Snapshot worker records score history for every active address
	s.worker = reputation.NewWorker(s.reputation, s.history, s.snapshots, cfg.SnapshotInterval, s.logger)

	// Market predictions
	s.predictions = predictions.NewService(nil, s.cacheStore, cfg.PredictionCacheTTL, s.logger, 0).
		WithEventSink(s.realtimeHub)

	// Chat assistant
	s.assistant = assistant.NewService(nil, s.logger)

	// Configure gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()
	s.setupMiddleware()
	s.setupRoutes()

	s.healthy.Store(true)

	return s, nil
}

// anyOf combines checkers so that any positive result flags the address.
func anyOf(checkers ...signals.Checker) signals.Checker {
	return signals.CheckerFunc(func(ctx context.Context, address string, txns []history.Transaction) (bool, error) {
		for _, c := range checkers {
			hit, err := c.Check(ctx, address, txns)
			if err != nil {
				return false, err
			}
			if hit {
				return true, nil
			}
		}
		return false, nil
	})
}

// maskDSN hides password in connection string for logging
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func (s *Server) setupMiddleware() {
	// Recovery with logging
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logging.L(c.Request.Context()).Error("panic recovered",
			"error", recovered,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "An unexpected error occurred",
		})
	}))

	// Security headers
	s.router.Use(security.HeadersMiddleware())

	// CORS (allow all origins for demo - restrict in production)
	s.router.Use(security.CORSMiddleware([]string{"*"}))

	// Request size limit (1MB)
	s.router.Use(validation.RequestSizeMiddleware(validation.MaxRequestSize))

	// Rate limiting
	s.rateLimiter = ratelimit.New(ratelimit.Config{
		RequestsPerSecond: s.cfg.RateLimitRPS,
	})
	s.router.Use(s.rateLimiter.Middleware())

	// Prometheus metrics
	s.router.Use(metrics.Middleware())

	// Request ID
	s.router.Use(s.requestIDMiddleware())

	// Logging
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check for existing request ID (from load balancer, etc.)
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}

		// Add to context
		ctx := logging.WithRequestID(c.Request.Context(), requestID)
		ctx = logging.WithLogger(ctx, s.logger)
		c.Request = c.Request.WithContext(ctx)

		// Set response header
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		logger := logging.L(c.Request.Context())

		// Log level based on status code
		switch {
		case status >= 500:
			logger.Error("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
				"client_ip", c.ClientIP(),
			)
		case status >= 400:
			logger.Warn("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		default:
			logger.Info("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		}
	}
}

// -----------------------------------------------------------------------------
// Routes
// -----------------------------------------------------------------------------

func (s *Server) setupRoutes() {
	// Health & metrics endpoints
	s.router.GET("/health", s.healthHandler)
	s.router.GET("/health/live", s.livenessHandler)
	s.router.GET("/health/ready", s.readinessHandler)
	s.router.GET("/metrics", metrics.Handler())

	// Service info
	s.router.GET("/", s.infoHandler)

	// WebSocket for real-time streaming
	s.router.GET("/ws", func(c *gin.Context) {
		s.realtimeHub.HandleWebSocket(c.Writer, c.Request)
	})
	s.router.GET("/ws/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.realtimeHub.Stats())
	})

	// V1 API group
	v1 := s.router.Group("/api/v1")
	// Validate :address URL params on all v1 routes (no-op when param absent)
	v1.Use(validation.AddressParamMiddleware())

	reputationHandler := reputation.NewHandlerFull(s.reputation, s.snapshots)
	reputationHandler.RegisterRoutes(v1)

	predictionsHandler := predictions.NewHandler(s.predictions)
	predictionsHandler.RegisterRoutes(v1)

	assistantHandler := assistant.NewHandler(s.assistant)
	assistantHandler.RegisterRoutes(v1)
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

// HealthResponse for health check endpoints
type HealthResponse struct {
	Status    string          `json:"status"`
	Version   string          `json:"version"`
	Checks    []health.Status `json:"checks,omitempty"`
	Timestamp string          `json:"timestamp"`
}

func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	healthy, statuses := s.checks.CheckAll(ctx)

	status := "healthy"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, HealthResponse{
		Status:    status,
		Version:   "0.1.0",
		Checks:    statuses,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) livenessHandler(c *gin.Context) {
	if !s.healthy.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) infoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "VindexChain AI Module",
		"description": "Address reputation scoring, market forecasts and chat assistance",
		"version":     "0.1.0",
		"chain":       "vindexchain",
		"endpoints": gin.H{
			"reputation":  "/api/v1/reputation/{address}",
			"assess":      "/api/v1/reputation/assess",
			"history":     "/api/v1/reputation/{address}/history",
			"predictions": "/api/v1/predict",
			"chat":        "/api/v1/chat",
			"realtime":    "/ws",
		},
	})
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Run starts the HTTP server with graceful shutdown
// expiredPurger is satisfied by cache stores that need periodic
// physical cleanup, currently only the Postgres store.
type expiredPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// runCachePurge deletes expired cache rows on every tick until ctx ends.
func (s *Server) runCachePurge(ctx context.Context, purger expiredPurger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := purger.PurgeExpired(ctx)
			if err != nil {
				s.logger.Warn("cache purge failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Debug("purged expired cache entries", "removed", n)
			}
		}
	}
}

func (s *Server) Run(ctx context.Context) error {
	// Create a cancellable context for background goroutines so Shutdown() can stop them.
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelRunCtx = cancel

	s.httpSrv = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Channel to catch server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		s.logger.Info("starting server",
			"port", s.cfg.Port,
			"env", s.cfg.Env,
		)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Start realtime hub
	go s.realtimeHub.Run(runCtx)

	// Sample DB pool stats into Prometheus gauges
	if s.db != nil {
		go metrics.StartDBStatsCollector(runCtx, s.db, 15*time.Second)
	}

	// Start snapshot worker
	go s.worker.Start(runCtx)

	// Expired cache rows are only masked by queries; delete them for real
	if purger, ok := s.cacheStore.(expiredPurger); ok {
		go s.runCachePurge(runCtx, purger, cachePurgeInterval)
	}

	// Mark as ready after brief delay for startup
	go func() {
		time.Sleep(100 * time.Millisecond)
		s.ready.Store(true)
		s.logger.Info("server ready")
	}()

	// Wait for shutdown signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		s.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	s.ready.Store(false)
	s.logger.Info("starting graceful shutdown")

	// Cancel the context for all background goroutines (hub, worker)
	if s.cancelRunCtx != nil {
		s.cancelRunCtx()
	}

	// Give load balancers time to stop sending traffic
	time.Sleep(5 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.logger.Error("shutdown error", "error", err)
		return err
	}

	// Stop snapshot worker
	if s.worker != nil {
		s.worker.Stop()
		s.logger.Info("snapshot worker stopped")
	}

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
		s.logger.Info("rate limiter stopped")
	}

	// Stop in-memory cache janitor
	if s.memCache != nil {
		s.memCache.Stop()
	}

	// Close database connection pool
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("database close error", "error", err)
		} else {
			s.logger.Info("database connection closed")
		}
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the gin router for testing
func (s *Server) Router() *gin.Engine {
	return s.router
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func generateRequestID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp-based ID
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}
