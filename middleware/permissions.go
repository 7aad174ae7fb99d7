package middleware

import (
	"github.com/gin-gonic/gin"
)

// Role constants to avoid string typos
const (
	RoleAdmin       = "admin"
	RoleCoordinator = "coordinator"
	RoleStaff       = "staff"
	RoleVisitor     = "visitor"
)

// AccessContext stores the caller's identity for the request.
type AccessContext struct {
	UserID          uint
	RoleName        string
	ParticipantKind string // staff or visitor; empty for admins
	PermissionType  string // "full" or "readonly"
}

// CanWrite returns true if the caller may mutate events.
func (ac *AccessContext) CanWrite() bool {
	return ac.PermissionType == "full"
}

func (ac *AccessContext) CanRead() bool {
	return ac.PermissionType == "full" || ac.PermissionType == "readonly"
}

// permissionFor maps a role to its permission type.
func permissionFor(role string) string {
	switch role {
	case RoleAdmin, RoleCoordinator:
		return "full"
	case RoleStaff, RoleVisitor:
		return "readonly"
	}
	return ""
}

// GetAccessContext returns the context set by AuthMiddleware.
func GetAccessContext(c *gin.Context) (AccessContext, bool) {
	v, exists := c.Get("access_context")
	if !exists {
		return AccessContext{}, false
	}
	ac, ok := v.(AccessContext)
	return ac, ok
}
