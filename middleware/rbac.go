package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RBACMiddleware checks if the caller has one of the allowed roles
func RBACMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, ok := GetAccessContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}
		for _, role := range allowedRoles {
			if ctx.RoleName == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "unauthorized"})
	}
}

// RequireWriteAccess ensures the caller has write access
func RequireWriteAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, ok := GetAccessContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
			return
		}
		if !ctx.CanWrite() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "write access denied"})
			return
		}
		c.Next()
	}
}

// RequireParticipant rejects callers that are not a staff member or visitor.
func RequireParticipant() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, ok := GetAccessContext(c)
		if !ok || ctx.ParticipantKind == "" || ctx.UserID == 0 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "participant account required"})
			return
		}
		c.Next()
	}
}
