package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/dto"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/service"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/response"
)

// GroupHandler serves group listing and the admin group configuration.
type GroupHandler struct {
	groupSvc service.GroupService
}

// NewGroupHandler creates a GroupHandler.
func NewGroupHandler(groupSvc service.GroupService) *GroupHandler {
	return &GroupHandler{groupSvc: groupSvc}
}

// List returns the active groups visible to the caller.
// GET /api/groups
func (h *GroupHandler) List(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.groupSvc.List(c.Request.Context(), caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// ListAll returns every configured group including inactive ones.
// GET /api/admin/groups
func (h *GroupHandler) ListAll(c *gin.Context) {
	result, err := h.groupSvc.ListAll(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// Create registers a new group configuration.
// POST /api/admin/groups
func (h *GroupHandler) Create(c *gin.Context) {
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, bindError(err))
		return
	}

	result, err := h.groupSvc.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrGroupExists) {
			response.BadRequest(c, response.CodeGroupExists, "group id already exists")
			return
		}
		response.InternalError(c)
		return
	}

	response.Created(c, result)
}

// Update edits a group configuration.
// PUT /api/admin/groups/:id
func (h *GroupHandler) Update(c *gin.Context) {
	var req dto.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, bindError(err))
		return
	}

	result, err := h.groupSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			response.NotFound(c, "group not found")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Deactivate hides a group without touching its worksheet history.
// DELETE /api/admin/groups/:id
func (h *GroupHandler) Deactivate(c *gin.Context) {
	if err := h.groupSvc.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			response.NotFound(c, "group not found")
			return
		}
		response.InternalError(c)
		return
	}
	response.NoContent(c)
}

// Restore re-activates a previously deactivated group.
// POST /api/admin/groups/:id/restore
func (h *GroupHandler) Restore(c *gin.Context) {
	if err := h.groupSvc.Restore(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			response.NotFound(c, "group not found")
			return
		}
		response.InternalError(c)
		return
	}
	response.NoContent(c)
}
