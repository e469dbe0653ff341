package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/dto"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/service"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/response"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/session"
)

// AuthHandler serves login, logout and the password lifecycle.
type AuthHandler struct {
	authSvc  service.AuthService
	sessions *session.Manager
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authSvc service.AuthService, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, sessions: sessions}
}

// Login signs a user in and sets the session cookie.
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, bindError(err))
		return
	}

	result, tok, err := h.authSvc.Login(c.Request.Context(), &req, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, response.CodeInvalidCreds, "invalid username or password")
		case errors.Is(err, service.ErrAccountPending):
			response.Forbidden(c, response.CodeAccountPending, "account is awaiting approval")
		case errors.Is(err, service.ErrAccountInactive):
			response.Forbidden(c, response.CodeAccountInactive, "account has been deactivated")
		default:
			response.InternalError(c)
		}
		return
	}

	h.sessions.SetCookie(c, tok)
	response.OK(c, result)
}

// Logout revokes the current session and clears the cookie.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if tok := SessionToken(c); tok != "" {
		if err := h.authSvc.Logout(c.Request.Context(), tok); err != nil {
			response.InternalError(c)
			return
		}
	}
	h.sessions.ClearCookie(c)
	response.NoContent(c)
}

// Me returns the calling account with its permissions.
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.authSvc.Me(c.Request.Context(), caller.ID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.Unauthorized(c, "session expired, please sign in again")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Register creates a pending instructor account.
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, bindError(err))
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameExists):
			response.BadRequest(c, response.CodeUsernameExists, "username is already taken")
		case errors.Is(err, service.ErrEmailExists):
			response.BadRequest(c, response.CodeEmailExists, "email is already registered")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, result)
}

// ChangePassword replaces the caller's password and revokes their other
// sessions.
// POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, bindError(err))
		return
	}

	err := h.authSvc.ChangePassword(c.Request.Context(), caller.ID, SessionToken(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWrongPassword):
			response.BadRequest(c, response.CodeInvalidCreds, "current password does not match")
		case errors.Is(err, service.ErrSessionNotFound):
			response.Unauthorized(c, "session expired, please sign in again")
		default:
			response.InternalError(c)
		}
		return
	}

	response.NoContent(c)
}

// ForgotPassword starts the e-mail reset flow. The response is the same
// whether or not the address exists, so the endpoint cannot be used to
// probe for accounts.
// POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, bindError(err))
		return
	}

	if err := h.authSvc.ForgotPassword(c.Request.Context(), &req); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"message": "if the address exists, a reset link has been sent"})
}

// ResetPassword completes the e-mail reset flow.
// POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, bindError(err))
		return
	}

	if err := h.authSvc.ResetPassword(c.Request.Context(), &req); err != nil {
		if errors.Is(err, service.ErrResetTokenInvalid) {
			response.BadRequest(c, response.CodeResetInvalid, "reset token is invalid or expired")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"message": "password has been reset, you can sign in now"})
}
