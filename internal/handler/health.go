package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports whether the two stores the POS depends on are reachable.
// Postgres down means no sales at all; Redis down degrades carritos and the
// ticket/email workers. The response never exposes DSNs or internals.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		postgres := "ok"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			postgres = "error"
		}

		redisEstado := "ok"
		if rdb.Ping(ctx).Err() != nil {
			redisEstado = "error"
		}

		status := http.StatusOK
		if postgres != "ok" || redisEstado != "ok" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"servicio": "gestion",
			"ok":       status == http.StatusOK,
			"postgres": postgres,
			"redis":    redisEstado,
		})
	}
}
