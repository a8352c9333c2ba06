package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/gescourrier/mail-registry-api/internal/errors"
	"github.com/gescourrier/mail-registry-api/internal/policy"
)

// RequireAction checks if the current user's role is allowed to perform
// the given action. Must run after RequireAuth.
func RequireAction(action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := GetUserRole(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if !policy.Can(role, action) {
			apierrors.Forbidden(c, "")
			c.Abort()
			return
		}

		c.Next()
	}
}
