package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/dto"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/service"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/response"
)

// ReportHandler serves the aggregated attendance report.
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Attendance aggregates per-student and per-group attendance over a date
// window.
// GET /api/reports/attendance?groupIds=TTI,HIP1&dateFrom=2026-01-01&dateTo=2026-06-30&status=all
func (h *ReportHandler) Attendance(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var q dto.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, bindError(err))
		return
	}

	result, err := h.reportSvc.Build(c.Request.Context(), caller, &q)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.OK(c, result)
}
