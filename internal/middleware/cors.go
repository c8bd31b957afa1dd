package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kingrain94/tenant-expense-api/internal/config"
)

// CORS lets a frontend served from another origin call the API during
// development. In production the frontend shares the API's origin and the
// middleware does nothing. It must be installed on the engine so preflight
// requests are answered before routing.
func CORS(cfg *config.Config) gin.HandlerFunc {
	if cfg.AppEnv == "production" || len(cfg.CORSAllowedOrigins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	corsConfig := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", TenantHeader, "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:        10 * time.Minute,
	}
	if slices.Contains(cfg.CORSAllowedOrigins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	}
	return cors.New(corsConfig)
}
