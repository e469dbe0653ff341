package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/dto"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/service"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/response"
)

// StudentHandler serves the student roster and its lifecycle endpoints.
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler creates a StudentHandler.
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// List returns a group's roster sorted for display.
// GET /api/students?groupId=TTI&showInactive=false
func (h *StudentHandler) List(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.StudentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ValidationError(c, bindError(err))
		return
	}

	result, err := h.studentSvc.List(c.Request.Context(), caller, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// Submit files a new-student submission awaiting admin approval.
// POST /api/students
func (h *StudentHandler) Submit(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.SubmitStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, bindError(err))
		return
	}

	result, err := h.studentSvc.Submit(c.Request.Context(), caller, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Created(c, result)
}

// ListPending returns pending submissions, optionally for one group.
// GET /api/admin/pending-students?groupId=TTI
func (h *StudentHandler) ListPending(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.PendingStudentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ValidationError(c, bindError(err))
		return
	}

	result, err := h.studentSvc.ListPending(c.Request.Context(), caller, req.GroupID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// Approve enrolls a pending student.
// POST /api/admin/students/:id/approve
func (h *StudentHandler) Approve(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.ApproveStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, bindError(err))
		return
	}

	result, err := h.studentSvc.Approve(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, result)
}

// Expel closes a student's enrollment.
// POST /api/admin/students/:id/expel
func (h *StudentHandler) Expel(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.ExpelStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, bindError(err))
		return
	}

	result, err := h.studentSvc.Expel(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *StudentHandler) handleStudentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, "student not found in this group")
	case errors.Is(err, service.ErrStudentNotPending):
		response.BadRequest(c, response.CodeValidation, "student is not awaiting approval")
	case errors.Is(err, service.ErrStudentInactive):
		response.BadRequest(c, response.CodeValidation, "student is already inactive")
	default:
		respondServiceError(c, err)
	}
}
