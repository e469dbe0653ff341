package handler

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/dto"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/service"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/response"
)

// ExportHandler serves the attendance report as downloadable files.
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// CSV exports the report as UTF-8 CSV with a BOM so Excel opens Polish
// names correctly.
// GET /api/export/csv?groupIds=TTI&dateFrom=2026-01-01&dateTo=2026-06-30
func (h *ExportHandler) CSV(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var q dto.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, bindError(err))
		return
	}

	buf, filename, err := h.exportSvc.CSV(c.Request.Context(), caller, &q)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	writeAttachment(c, "text/csv; charset=utf-8", filename, buf)
}

// PDF exports the report as a printable HTML document; the browser's
// print dialog turns it into the actual PDF.
// GET /api/export/pdf
func (h *ExportHandler) PDF(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var q dto.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, bindError(err))
		return
	}

	buf, filename, err := h.exportSvc.HTML(c.Request.Context(), caller, &q)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	writeAttachment(c, "text/html; charset=utf-8", filename, buf)
}

// XLSX exports the report as an Excel workbook.
// GET /api/export/xlsx
func (h *ExportHandler) XLSX(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var q dto.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, bindError(err))
		return
	}

	buf, filename, err := h.exportSvc.XLSX(c.Request.Context(), caller, &q)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	writeAttachment(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", filename, buf)
}

func writeAttachment(c *gin.Context, contentType, filename string, buf *bytes.Buffer) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
