package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

var startTime = time.Now()

// Pinger is satisfied by the post service and its repositories.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterHealth mounts /health (liveness) and /ready (readiness).
// redisClient may be nil when no Redis-backed feature is enabled.
func RegisterHealth(r *gin.Engine, storage Pinger, redisClient *redis.Client) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		ready := true
		deps := map[string]bool{}

		deps["storage"] = storage != nil && storage.Ping(ctx) == nil
		if !deps["storage"] {
			ready = false
		}

		if redisClient != nil {
			deps["redis"] = redisClient.Ping(ctx).Err() == nil
			if !deps["redis"] {
				ready = false
			}
		}

		uptime := time.Since(startTime).String()
		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": uptime})
	})
}
