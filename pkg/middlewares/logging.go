package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	ct "userapp/pkg/context"
	"userapp/pkg/logger"
)

func LoggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		if raw != "" {
			path = path + "?" + raw
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.String("request_id", ct.GetCurrent(c.Request.Context()).RequestID()),
		}

		if c.Writer.Status() >= 500 {
			log.Ctx(c.Request.Context()).Error("HTTP Request", fields...)
			return
		}

		log.Ctx(c.Request.Context()).Info("HTTP Request", fields...)
	}
}
