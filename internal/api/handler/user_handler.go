package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/dto"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/service"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/response"
)

// UserHandler serves the admin account-management endpoints.
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// List returns every account.
// GET /api/admin/users
func (h *UserHandler) List(c *gin.Context) {
	result, err := h.userSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// ListPending returns accounts awaiting approval.
// GET /api/admin/pending-users
func (h *UserHandler) ListPending(c *gin.Context) {
	result, err := h.userSvc.ListPending(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// Approve activates a pending account.
// POST /api/admin/users/:id/approve
func (h *UserHandler) Approve(c *gin.Context) {
	var req dto.ApproveUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, bindError(err))
		return
	}

	result, err := h.userSvc.Approve(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, result)
}

// Update edits an account's profile, role or group allow-list.
// PUT /api/admin/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, bindError(err))
		return
	}

	result, err := h.userSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, result)
}

// ToggleActive flips an account between active and inactive.
// POST /api/admin/users/:id/toggle-active
func (h *UserHandler) ToggleActive(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.userSvc.ToggleActive(c.Request.Context(), c.Param("id"), caller.ID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, "account not found")
	case errors.Is(err, service.ErrUserNotPending):
		response.BadRequest(c, response.CodeValidation, "account is not awaiting approval")
	case errors.Is(err, service.ErrUnknownGroup):
		response.BadRequest(c, response.CodeValidation, "unknown group in allow-list")
	case errors.Is(err, service.ErrSelfDeactivation):
		response.BadRequest(c, response.CodeValidation, "cannot deactivate your own account")
	default:
		response.InternalError(c)
	}
}
