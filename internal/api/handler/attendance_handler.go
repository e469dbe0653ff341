package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/dto"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/service"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/response"
)

// AttendanceHandler serves the per-session attendance endpoints.
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler creates an AttendanceHandler.
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// Get returns the roster-joined attendance for one group and date,
// creating the session on first access.
// GET /api/attendance?groupId=TTI&date=2026-03-02
func (h *AttendanceHandler) Get(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var q dto.AttendanceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, bindError(err))
		return
	}

	result, err := h.attendanceSvc.Get(c.Request.Context(), caller, q.GroupID, q.Date)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// Set saves attendance marks. Stale writes come back in the payload's
// conflicts list; the call itself still answers 200.
// POST /api/attendance
func (h *AttendanceHandler) Set(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.SetAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, bindError(err))
		return
	}

	result, err := h.attendanceSvc.Set(c.Request.Context(), caller, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// Exists probes whether any attendance has been taken for the group and
// date, without creating a session.
// GET /api/attendance/exists?groupId=TTI&date=2026-03-02
func (h *AttendanceHandler) Exists(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var q dto.AttendanceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, bindError(err))
		return
	}

	result, err := h.attendanceSvc.Exists(c.Request.Context(), caller, q.GroupID, q.Date)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.OK(c, result)
}
