package middleware

import (
	"context"
	"net/http"

	"go-hrportal/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// PermissionChecker is a local interface so this package does not depend
// on the permission package. Anything with HasPermission fits.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID, slug string) (bool, error)
}

func RequirePermission(checker PermissionChecker, slug string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id_validated")
		if userID == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing auth context", nil)
			c.Abort()
			return
		}

		allowed, err := checker.HasPermission(c.Request.Context(), userID, slug)
		if err != nil {
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Permission check failed", nil)
			c.Abort()
			return
		}

		if !allowed {
			response.Error(c, http.StatusForbidden, "FORBIDDEN",
				"You do not have permission to access this resource",
				gin.H{"required": slug},
			)
			c.Abort()
			return
		}

		c.Next()
	}
}
