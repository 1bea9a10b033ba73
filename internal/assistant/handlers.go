package assistant

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vindexchain/ai-module/internal/metrics"
)

const maxMessageLength = 2000

// Handler provides HTTP endpoints for the assistant
type Handler struct {
	service *Service
}

// NewHandler creates a new assistant handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes sets up assistant routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/chat", h.Chat)
}

// Chat handles POST /chat
func (h *Handler) Chat(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Request body must contain 'message'",
		})
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Message cannot be empty",
		})
		return
	}
	if len(req.Message) > maxMessageLength {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "message_too_long",
			"message": "Message exceeds 2000 characters",
		})
		return
	}

	metrics.ChatRequestsTotal.WithLabelValues(normalizeLanguage(req.Language)).Inc()
	c.JSON(http.StatusOK, h.service.Chat(c.Request.Context(), req))
}
