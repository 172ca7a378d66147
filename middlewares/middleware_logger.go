package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-pos/utils"
)

func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		// query strings can carry the websocket session id, so they stay out of the log
		switch {
		case status >= 500:
			utils.ErrorLogger.Printf("%s | %3d | %13v | %15s | %s | %s",
				c.Request.Method, status, latency, c.ClientIP(), path, c.Errors.String())
		default:
			utils.InfoLogger.Printf("%s | %3d | %13v | %15s | %s",
				c.Request.Method, status, latency, c.ClientIP(), path)
		}
	}
}
