package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/taskforge/task-manager-api/internal/auth"
	"github.com/taskforge/task-manager-api/internal/constants"
	apierrors "github.com/taskforge/task-manager-api/internal/errors"
	"github.com/taskforge/task-manager-api/internal/models"
	"github.com/taskforge/task-manager-api/internal/repository"
)

// RequireAuth resolves the acting user from the bearer credential. The
// token cookie is checked before the Authorization header. On success the
// resolved user is stored in the request context.
func RequireAuth(issuer *auth.TokenIssuer, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			apierrors.Unauthorized(c, "Not authorized. Token not found.")
			c.Abort()
			return
		}

		userID, err := issuer.Verify(token)
		if err != nil {
			apierrors.Unauthorized(c, "Invalid access token")
			c.Abort()
			return
		}

		user, err := userRepo.FindByID(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierrors.Unauthorized(c, "Invalid access token")
			} else {
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

// RequireAdmin rejects requests from non-admin users. Must run after
// RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := GetUser(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if !user.IsAdmin() {
			apierrors.Forbidden(c, "Access denied. Admin only.")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUser retrieves the resolved acting user from context
func GetUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}

	user, ok := value.(*models.User)
	if !ok {
		return nil, false
	}

	return user, true
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(constants.TokenCookieName); err == nil && cookie != "" {
		return cookie
	}

	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	return ""
}
