package middlewares

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"userapp/internal/core/telemetry"
	"userapp/pkg/config"
	"userapp/pkg/logger"
)

// SetupGinMiddlewareWithConfig installs the cross-cutting middleware in the
// order requests should see it.
func SetupGinMiddlewareWithConfig(router *gin.Engine, cfg *config.AppConfig, metrics *telemetry.AppMetrics, log *logger.Logger) {
	httpsEnforcer := NewHTTPSEnforcer(cfg.EnforceHTTPS, log.Zap())
	router.Use(httpsEnforcer.HTTPSMiddleware())

	router.Use(otelgin.Middleware(cfg.ServiceName))

	router.Use(LoggingMiddleware(log))

	if cfg.RateLimitEnabled {
		rateLimiter := NewRateLimiter(log.Zap(), metrics, cfg.RateLimitConfigs)
		router.Use(rateLimiter.RateLimitMiddleware())
	}

	if metrics != nil {
		router.Use(MetricsMiddleware(metrics))
	}
}
