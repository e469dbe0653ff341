package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/dto"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/model"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/response"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/session"
)

// Authenticator resolves an opaque session token to its caller.
// Satisfied by service.AuthService.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*dto.Caller, error)
}

// SessionAuth authenticates requests from the signed session cookie.
// The cookie signature is checked before the session store is consulted,
// so a forged cookie never reaches the database. On success the caller
// and the raw session token are injected into the gin context.
func SessionAuth(sessions *session.Manager, auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(sessions.CookieName())
		if err != nil || cookie == "" {
			response.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}

		token, err := sessions.Verify(cookie)
		if err != nil {
			response.Unauthorized(c, "session cookie invalid")
			c.Abort()
			return
		}

		caller, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Unauthorized(c, "session expired, please sign in again")
			c.Abort()
			return
		}

		c.Set("caller", caller)
		c.Set("session_token", token)

		c.Next()
	}
}

// RequirePermission gates a route on one capability of the caller's role.
// Must run after SessionAuth.
func RequirePermission(perm model.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get("caller")
		if !exists {
			response.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}

		caller := v.(*dto.Caller)
		if !caller.Can(perm) {
			response.Forbidden(c, response.CodeForbidden, "insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}
