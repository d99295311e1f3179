package handler

import (
	"net/http"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health godoc
// @Summary      Service health
// @Description  Pings the database and Redis; reports the ERP breaker state. Returns 503 when a dependency is down.
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Failure      503 {object} map[string]string
// @Router       /health [get]
func Health(db *gorm.DB, rdb *redis.Client, erpCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		status := http.StatusOK
		resp := gin.H{
			"status":      "ok",
			"database":    "ok",
			"redis":       "ok",
			"erp_circuit": erpCB.State().String(),
		}

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			resp["database"] = "down"
			resp["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			resp["redis"] = "down"
			resp["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, resp)
	}
}
