package reputation

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vindexchain/ai-module/internal/logging"
	"github.com/vindexchain/ai-module/internal/validation"
)

// Handler provides HTTP endpoints for reputation
type Handler struct {
	service       *Service
	snapshotStore SnapshotStore
}

// NewHandler creates a new reputation handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// NewHandlerFull creates a handler with snapshot-backed history.
func NewHandlerFull(service *Service, store SnapshotStore) *Handler {
	return &Handler{service: service, snapshotStore: store}
}

// RegisterRoutes sets up reputation endpoints
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/reputation/assess", h.AssessReputation)
	r.GET("/reputation/:address", h.GetReputation)
	r.GET("/reputation/:address/history", h.GetReputationHistory)
}

// AssessRequest is the body of POST /reputation/assess.
type AssessRequest struct {
	Address        string `json:"address" binding:"required"`
	IncludeHistory *bool  `json:"include_history"`
}

// AssessReputation scores an address on demand.
// POST /api/v1/reputation/assess
func (h *Handler) AssessReputation(c *gin.Context) {
	var req AssessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Request body must contain 'address'",
		})
		return
	}

	address := validation.SanitizeAddress(req.Address)
	if !validation.IsValidAddress(address) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_address",
			"message": "Address is not a valid VindexChain address",
		})
		return
	}

	includeHistory := true
	if req.IncludeHistory != nil {
		includeHistory = *req.IncludeHistory
	}

	a, err := h.service.Assess(c.Request.Context(), address, includeHistory)
	if err != nil {
		logging.L(c.Request.Context()).Error("assessment failed", "address", address, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to assess address reputation",
		})
		return
	}

	c.JSON(http.StatusOK, a)
}

// GetReputation returns the current assessment for an address.
// GET /api/v1/reputation/:address
func (h *Handler) GetReputation(c *gin.Context) {
	address := validation.SanitizeAddress(c.Param("address"))
	if !validation.IsValidAddress(address) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_address",
			"message": "Address is not a valid VindexChain address",
		})
		return
	}

	a, err := h.service.Assess(c.Request.Context(), address, true)
	if err != nil {
		logging.L(c.Request.Context()).Error("assessment failed", "address", address, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to assess address reputation",
		})
		return
	}

	c.JSON(http.StatusOK, a)
}

// GetReputationHistory returns historical reputation snapshots.
// GET /api/v1/reputation/:address/history?from=&to=&limit=
func (h *Handler) GetReputationHistory(c *gin.Context) {
	address := validation.SanitizeAddress(c.Param("address"))
	if !validation.IsValidAddress(address) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_address",
			"message": "Address is not a valid VindexChain address",
		})
		return
	}

	if h.snapshotStore == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error":   "not_available",
			"message": "Historical reputation data is not available",
		})
		return
	}

	q := HistoryQuery{
		Address: address,
		Limit:   100,
	}

	if from := c.Query("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			q.From = t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			q.To = t
		}
	}
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			q.Limit = parsed
			if q.Limit > 1000 {
				q.Limit = 1000
			}
		}
	}

	snapshots, err := h.snapshotStore.Query(c.Request.Context(), q)
	if err != nil {
		logging.L(c.Request.Context()).Error("snapshot query failed", "address", address, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "query_failed",
			"message": "Failed to query reputation history",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address":   address,
		"snapshots": snapshots,
		"count":     len(snapshots),
	})
}
