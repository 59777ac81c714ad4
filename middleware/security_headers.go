package middleware

import (
	"github.com/VisaTrek/visa-trek-backend/config"
	"github.com/gin-gonic/gin"
)

// SecurityHeaders adds standard hardening headers to all responses.
func SecurityHeaders(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// HSTS only in production so local plain-HTTP development keeps working.
		if cfg.IsProduction() {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
