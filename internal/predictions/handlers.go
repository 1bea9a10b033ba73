package predictions

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vindexchain/ai-module/internal/logging"
	"github.com/vindexchain/ai-module/internal/metrics"
	"github.com/vindexchain/ai-module/internal/validation"
)

// Handler provides HTTP endpoints for predictions
type Handler struct {
	service *Service
}

// NewHandler creates a new predictions handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes sets up prediction routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/predict", h.Predict)
}

// Predict handles POST /predict
func (h *Handler) Predict(c *gin.Context) {
	start := time.Now()

	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.PredictionRequestsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Request body must contain 'token_denom'",
		})
		return
	}

	denom := strings.ToLower(strings.TrimSpace(req.TokenDenom))
	if !validation.IsValidDenom(denom) {
		metrics.PredictionRequestsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_denom",
			"message": "Token denomination is not valid",
		})
		return
	}
	req.TokenDenom = denom

	forecast, err := h.service.Predict(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrUnknownTimeframe) {
			metrics.PredictionRequestsTotal.WithLabelValues("invalid").Inc()
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_timeframe",
				"message": "Timeframe must be one of: 1h, 24h, 7d, 30d",
			})
			return
		}
		metrics.PredictionRequestsTotal.WithLabelValues("error").Inc()
		logging.L(c.Request.Context()).Error("prediction failed",
			"denom", req.TokenDenom, "timeframe", req.Timeframe, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to generate prediction",
		})
		return
	}

	metrics.PredictionRequestsTotal.WithLabelValues("ok").Inc()
	metrics.PredictionDuration.Observe(time.Since(start).Seconds())
	c.JSON(http.StatusOK, forecast)
}
