package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/config"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/sheets"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/redis"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/response"
)

const apiVersion = "2.0.0"

// SystemHandler serves the diagnostic and operational endpoints.
type SystemHandler struct {
	cfg     *config.Config
	db      *gorm.DB
	rdb     *redis.Client
	sheets  *sheets.Client
	started time.Time
}

// NewSystemHandler creates a SystemHandler.
func NewSystemHandler(cfg *config.Config, db *gorm.DB, rdb *redis.Client, sc *sheets.Client) *SystemHandler {
	return &SystemHandler{cfg: cfg, db: db, rdb: rdb, sheets: sc, started: time.Now()}
}

// Health reports process uptime and the state of each integration. The
// database is the only hard dependency; when it is unreachable the
// endpoint answers 503 so the hosting panel restarts the process.
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbOK := h.pingDatabase(ctx)
	redisOK := h.rdb != nil && h.rdb.Ping(ctx) == nil

	status := "ok"
	httpStatus := http.StatusOK
	if !dbOK {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status":   status,
		"uptime_s": int(time.Since(h.started).Seconds()),
		"env":      h.cfg.Server.Env,
		"version":  apiVersion,
		"integrations": gin.H{
			"database": dbOK,
			"redis":    redisOK,
			"sheets":   h.sheets.Configured(),
			"smtp":     h.cfg.SMTP.Host != "",
		},
	})
}

func (h *SystemHandler) pingDatabase(ctx context.Context) bool {
	if h.db == nil {
		return false
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil
}

// CacheClear drops every cached sheet range so the next read hits the
// Google Sheets API directly. Used after hand-editing the spreadsheet.
// POST /api/admin/cache/clear
func (h *SystemHandler) CacheClear(c *gin.Context) {
	if h.rdb == nil {
		response.OK(c, gin.H{"cleared": 0})
		return
	}

	cleared, err := h.rdb.ClearCache(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"cleared": cleared})
}
