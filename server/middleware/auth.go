package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voicegate/auth"
	"github.com/kbukum/voicegate/auth/authctx"
	apperrors "github.com/kbukum/voicegate/errors"
)

// UserKey is the gin context key holding the authenticated *auth.User.
const UserKey = "user"

// Auth requires a valid bearer token. The user is stored under UserKey and
// in the request context.
func Auth(validator auth.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abort(c, apperrors.Unauthorized("Authorization token is required."))
			return
		}

		user, err := validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			abort(c, apperrors.InvalidToken())
			return
		}

		c.Set(UserKey, user)
		c.Request = c.Request.WithContext(authctx.WithUser(c.Request.Context(), user))
		c.Next()
	}
}

// RequireAdmin allows only admin-key callers. It runs after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abort(c, apperrors.Unauthorized("Authorization token is required."))
			return
		}
		if !user.IsAdmin() {
			abort(c, apperrors.Forbidden("Admin key required."))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user set by Auth.
func CurrentUser(c *gin.Context) (*auth.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*auth.User)
	return user, ok && user != nil
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func abort(c *gin.Context, appErr *apperrors.AppError) {
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}
