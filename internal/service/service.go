package service

import (
	"go.uber.org/zap"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/config"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/mailer"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/repository"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/redis"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/session"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/token"
)

// Service is the aggregate entry point for all services.
type Service struct {
	Auth       AuthService
	User       UserService
	Group      GroupService
	Student    StudentService
	Attendance AttendanceService
	Report     ReportService
	Export     ExportService
}

// NewService wires the service aggregate.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	sessMgr *session.Manager,
	tokenMgr *token.Manager,
	mail mailer.Mailer,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	groupSvc := NewGroupService(cfg, repo, logger)
	studentSvc := NewStudentService(repo, groupSvc, logger)
	attendanceSvc := NewAttendanceService(repo, groupSvc, studentSvc, logger)
	reportSvc := NewReportService(repo, groupSvc, studentSvc, logger)

	return &Service{
		Auth:       NewAuthService(cfg, repo, sessMgr, tokenMgr, mail, rdb, logger),
		User:       NewUserService(repo, rdb, logger),
		Group:      groupSvc,
		Student:    studentSvc,
		Attendance: attendanceSvc,
		Report:     reportSvc,
		Export:     NewExportService(reportSvc, logger),
	}
}
