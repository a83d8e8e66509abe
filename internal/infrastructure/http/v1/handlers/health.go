package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	pool    *pgxpool.Pool
	started time.Time
}

func NewHealthHandler(pool *pgxpool.Pool) *HealthHandler {
	return &HealthHandler{pool: pool, started: time.Now()}
}

// Live reports process liveness.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports database readiness.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.pool.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  "database unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Info reports uptime and pool statistics.
func (h *HealthHandler) Info(c *gin.Context) {
	stats := h.pool.Stat()
	c.JSON(http.StatusOK, gin.H{
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"db_pool": gin.H{
			"total_conns":    stats.TotalConns(),
			"idle_conns":     stats.IdleConns(),
			"acquired_conns": stats.AcquiredConns(),
		},
	})
}
