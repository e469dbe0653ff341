package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/config"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/service"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/sheets"
	apperr "github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/errors"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/redis"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/response"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/session"
)

// Handler is the aggregate entry point for all HTTP handlers.
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Group      *GroupHandler
	Student    *StudentHandler
	Attendance *AttendanceHandler
	Report     *ReportHandler
	Export     *ExportHandler
	System     *SystemHandler
}

// NewHandler wires the handler aggregate.
func NewHandler(
	cfg *config.Config,
	svc *service.Service,
	sessions *session.Manager,
	db *gorm.DB,
	rdb *redis.Client,
	sc *sheets.Client,
) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth, sessions),
		User:       NewUserHandler(svc.User),
		Group:      NewGroupHandler(svc.Group),
		Student:    NewStudentHandler(svc.Student),
		Attendance: NewAttendanceHandler(svc.Attendance),
		Report:     NewReportHandler(svc.Report),
		Export:     NewExportHandler(svc.Export),
		System:     NewSystemHandler(cfg, db, rdb, sc),
	}
}

// respondServiceError maps the errors every worksheet-backed operation can
// surface: group resolution, group authorization and Google Sheets
// failures. Handlers call it as their default branch.
func respondServiceError(c *gin.Context, err error) {
	var ue *apperr.UpstreamError
	switch {
	case errors.As(err, &ue):
		if errors.Is(ue.Err, sheets.ErrNotConfigured) {
			response.UpstreamFailed(c, "Google Sheets is not configured",
				"set GOOGLE_SERVICE_ACCOUNT_EMAIL, GOOGLE_PRIVATE_KEY and GOOGLE_SHEETS_SPREADSHEET_ID")
			return
		}
		response.UpstreamFailed(c, "Google Sheets request failed", ue.Hint)
	case errors.Is(err, service.ErrGroupNotFound):
		response.NotFound(c, "group not found")
	case errors.Is(err, service.ErrGroupAccessDenied):
		response.Forbidden(c, response.CodeGroupAccessDenied, "no access to this group")
	default:
		response.InternalError(c)
	}
}
