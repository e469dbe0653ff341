package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/config"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/api/handler"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/api/router"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/mailer"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/repository"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/service"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/sheets"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/database"
	applogger "github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/logger"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/redis"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/session"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/token"
)

// resetTokenTTL bounds how long a password-reset link stays usable.
const resetTokenTTL = time.Hour

func main() {
	// 1. Configuration, fail fast on anything the server cannot run without.
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading configuration failed: %v\n", err)
		os.Exit(1)
	}

	// 2. Logging.
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("env", cfg.Server.Env),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. PostgreSQL and schema migrations.
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("connecting to database failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("resolving sql.DB failed", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("running migrations failed", zap.Error(err))
	}

	// 4. Redis is optional: without it the service runs uncached and
	// unthrottled, it never refuses to start.
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, running without cache and rate limits", zap.Error(err))
		rdb = nil
	}

	// 5. Google Sheets client. Unconfigured credentials are tolerated so
	// the auth and admin surfaces stay usable before onboarding finishes.
	sc, err := sheets.NewClient(context.Background(), &cfg.Google, rdb, logger)
	if err != nil {
		logger.Fatal("initializing google sheets client failed", zap.Error(err))
	}

	// 6. Session cookies, reset tokens, outbound mail.
	sessions := session.NewManager(&cfg.Session)
	tokens := token.NewManager(cfg.Session.Secret, resetTokenTTL)
	mail := mailer.New(&cfg.SMTP, logger)

	// 7. Dependency injection: repository → service → handler → router.
	repo := repository.NewRepository(db, sc)
	svc := service.NewService(cfg, repo, sessions, tokens, mail, rdb, logger)
	h := handler.NewHandler(cfg, svc, sessions, db, rdb, sc)
	engine := router.Setup(cfg, h, sessions, svc.Auth, rdb, logger)

	// 8. HTTP server with graceful shutdown.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	// 9. Block on SIGINT/SIGTERM, then drain.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	if closeDB, err := db.DB(); err == nil && closeDB != nil {
		closeDB.Close()
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}
