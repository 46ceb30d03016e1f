// Package httpapi serves the operational HTTP endpoints: liveness,
// Prometheus metrics and a read-only per-user stats query.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/dogspotter/internal/common"
	"github.com/dmitrijs2005/dogspotter/internal/logging"
	"github.com/dmitrijs2005/dogspotter/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsQuerier is implemented by *intake.Pipeline. LookupStats must not
// create users: the endpoint is unauthenticated.
type StatsQuerier interface {
	LookupStats(ctx context.Context, identity int64) (models.Stats, error)
}

type Handler struct {
	Stats  StatsQuerier
	Logger logging.Logger
}

type statsResponse struct {
	Identity int64   `json:"identity"`
	Total    int64   `json:"total"`
	Positive int64   `json:"positive"`
	Negative int64   `json:"negative"`
	Percent  float64 `json:"percent"`
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GetUserStats(c *gin.Context) {
	identity, err := strconv.ParseInt(c.Param("identity"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identity must be an integer"})
		return
	}

	stats, err := h.Stats.LookupStats(c.Request.Context(), identity)
	if errors.Is(err, common.ErrorNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		h.Logger.Error(c.Request.Context(), "stats query failed", "identity", identity, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, statsResponse{
		Identity: identity,
		Total:    stats.Total,
		Positive: stats.Positive,
		Negative: stats.Negative(),
		Percent:  stats.PositivePercent(),
	})
}

// requestLogger logs every request at debug level, errors at warn.
func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header("X-Request-Id", reqID)

		c.Next()

		args := []any{
			"request_id", reqID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn(c.Request.Context(), "http request failed", args...)
			return
		}
		logger.Debug(c.Request.Context(), "http request", args...)
	}
}

func NewRouter(stats StatsQuerier, logger logging.Logger) *gin.Engine {
	logger = logger.With("module", "httpapi")
	h := &Handler{Stats: stats, Logger: logger}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/api/v1/users/:identity/stats", h.GetUserStats)

	return r
}
