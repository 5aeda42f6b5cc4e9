package middleware

import (
	"net/http"

	"github.com/atriumcms/atrium/internal/rbac"
	"github.com/gin-gonic/gin"
)

// RequirePermission gates a route on the caller's permission set. The set
// is read from the verified token claims rather than storage, so a role
// edit takes effect when the credential is next reissued. Access is
// granted when every required name is covered (or the caller holds the
// full-access permission).
func RequirePermission(required ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			c.Abort()
			return
		}

		if !rbac.Authorize(required, claims.Permissions) {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "insufficient permission"})
			c.Abort()
			return
		}

		c.Next()
	}
}
