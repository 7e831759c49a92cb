package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voicegate/auth/jwt"
	apperrors "github.com/kbukum/voicegate/errors"
	"github.com/kbukum/voicegate/logger"
	"github.com/kbukum/voicegate/server"
	"github.com/kbukum/voicegate/server/middleware"
	"github.com/kbukum/voicegate/validation"
	"github.com/kbukum/voicegate/version"
)

// Root is GET /api/v1/.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"r": "ok", "info": version.Banner(h.deps.ServiceName)})
}

// AuthCheck is GET /api/v1/auth.
func (h *Handler) AuthCheck(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{"r": "ok", "info": "auth check", "user": user})
}

type tokenRequest struct {
	Username string `json:"username" validate:"required,max=64,excludesall=/\\"`
	Role     string `json:"role,omitempty" validate:"omitempty,max=32,alphanum"`
}

// IssueToken is POST /api/v1/auth/token. Only the admin key may call it.
func (h *Handler) IssueToken(c *gin.Context) {
	if h.deps.Tokens == nil {
		server.RespondWithError(c, apperrors.ServiceUnavailable("token service"))
		return
	}
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation("Request body must be JSON with a username.").WithCause(err))
		return
	}
	if err := validation.Validate(req); err != nil {
		server.RespondWithError(c, err)
		return
	}

	token, err := h.deps.Tokens.Issue(&jwt.UserClaims{Username: req.Username, Role: req.Role})
	if err != nil {
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}
	h.log.WithContext(c.Request.Context()).Info("token issued", logger.Fields("username", req.Username))
	c.JSON(http.StatusOK, gin.H{"r": "ok", "token": token})
}
