package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sharath018/event-resource-backend/config"
)

// AuthMiddleware validates the bearer JWT and sets up access context. With
// no JWT_ACCESS_SECRET configured every request runs as an admin.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.JWTAccessSecret == "" {
			c.Set("access_context", AccessContext{RoleName: RoleAdmin, PermissionType: "full"})
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		claims, err := ParseAccessToken(cfg.JWTAccessSecret, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		accessContext, ok := accessContextFromClaims(claims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id missing in token"})
			return
		}

		c.Set("claims", claims)
		c.Set("user_id", accessContext.UserID)
		c.Set("access_context", accessContext)
		c.Next()
	}
}

// ParseAccessToken verifies an HS256 token and returns its claims.
func ParseAccessToken(secret, tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func accessContextFromClaims(claims jwt.MapClaims) (AccessContext, bool) {
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return AccessContext{}, false
	}
	role, _ := claims["role"].(string)
	kind, _ := claims["participant_kind"].(string)
	if kind == "" && (role == RoleStaff || role == RoleVisitor) {
		kind = role
	}
	return AccessContext{
		UserID:          uint(userIDFloat),
		RoleName:        role,
		ParticipantKind: kind,
		PermissionType:  permissionFor(role),
	}, true
}
