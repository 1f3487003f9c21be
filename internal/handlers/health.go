package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

const serviceName = "sales-service"

var startTime = time.Now()

// Health handles GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}

// Ready handles GET /ready. Every registered dependency must answer within
// two seconds.
func (h *Handlers) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			failed[check.Name] = err.Error()
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not_ready",
			"service": serviceName,
			"checks":  failed,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"service": serviceName,
	})
}

// Live handles GET /live
func (h *Handlers) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

// Version handles GET /version
func (h *Handlers) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":    "1.0.0",
		"service":    serviceName,
		"go_version": runtime.Version(),
		"started_at": startTime.Format(time.RFC3339),
	})
}

// Debug handles GET /debug. Only routed when FEATURE_DEBUG_ENDPOINT is set.
func (h *Handlers) Debug(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"features": gin.H{
			"enable_order_events":  h.config.Features.EnableOrderEvents,
			"enable_approval_feed": h.config.Features.EnableApprovalFeed,
			"enable_catalog_cache": h.config.Features.EnableCatalogCache,
		},
		"config": gin.H{
			"server_port":   h.config.Server.Port,
			"db_driver":     h.config.Database.Driver,
			"database_host": h.config.Database.Host,
			"redis_host":    h.config.Redis.Host,
			"kafka_brokers": h.config.Kafka.Brokers,
			"currency":      h.config.Pricing.Currency,
			"default_tax":   h.config.Pricing.DefaultTaxPercent,
		},
		"goroutines": runtime.NumGoroutine(),
	})
}
