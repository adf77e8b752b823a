package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Health pings the database when one is configured.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "ok", "time": time.Now().UTC()}
		if db == nil {
			c.JSON(http.StatusOK, status)
			return
		}
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, status)
	}
}
