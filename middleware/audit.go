package middleware

import (
	"github.com/gin-gonic/gin"
)

const clientIPKey = "client_ip"

// AuditMiddleware records the caller's address so audit entries written
// further down the chain can carry it. gin resolves X-Forwarded-For and
// X-Real-Ip against the engine's trusted proxies.
func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(clientIPKey, c.ClientIP())
		c.Next()
	}
}

// GetIPFromContext returns the address captured by AuditMiddleware.
func GetIPFromContext(c *gin.Context) string {
	if ip := c.GetString(clientIPKey); ip != "" {
		return ip
	}
	return c.ClientIP()
}
