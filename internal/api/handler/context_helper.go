package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/dto"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/response"
)

// MustGetCaller extracts the authenticated caller the session middleware
// injected. A miss means the route is wired without SessionAuth; the
// helper writes a 401 and the caller should return immediately.
func MustGetCaller(c *gin.Context) (*dto.Caller, bool) {
	v, exists := c.Get("caller")
	if !exists {
		response.Unauthorized(c, "authentication required")
		return nil, false
	}
	caller, ok := v.(*dto.Caller)
	if !ok || caller == nil {
		response.Unauthorized(c, "authentication required")
		return nil, false
	}
	return caller, true
}

// SessionToken returns the raw session token of the current request, or
// "" when the request is unauthenticated.
func SessionToken(c *gin.Context) string {
	return c.GetString("session_token")
}
