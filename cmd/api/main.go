package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	appHTTP "github.com/cmlabs-hris/hris-attendance-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-attendance-go/internal/service/attendance"
	notificationService "github.com/cmlabs-hris/hris-attendance-go/internal/service/notification"
	permissionService "github.com/cmlabs-hris/hris-attendance-go/internal/service/permission"
	policyService "github.com/cmlabs-hris/hris-attendance-go/internal/service/policy"
	regularizationService "github.com/cmlabs-hris/hris-attendance-go/internal/service/regularization"
)

const (
	appName    = "hris-attendance"
	appVersion = "v1.0.0"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", appName),
		slog.String("version", appVersion),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := postgresql.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	// Repositories
	policyRepo := postgresql.NewPolicyRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	regularizationRepo := postgresql.NewRegularizationRepository(db)
	permissionRepo := postgresql.NewPermissionRequestRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	transactor := postgresql.NewTransactor(db)

	// Services
	hub := sse.NewHub()
	notificationSvc := notificationService.NewNotificationService(notificationRepo, hub, notificationService.Config{
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: cfg.Notification.FlushInterval,
		WorkerCount:   cfg.Notification.WorkerCount,
		QueueSize:     cfg.Notification.QueueSize,
	})
	defer notificationSvc.Stop()

	policySvc := policyService.NewPolicyService(policyRepo, cfg.Policy)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, policySvc, transactor, notificationSvc)
	regularizationSvc := regularizationService.NewRegularizationService(regularizationRepo, attendanceRepo, policySvc, transactor, notificationSvc)
	permissionSvc := permissionService.NewPermissionService(permissionRepo, policySvc, transactor, notificationSvc)
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	// Background jobs
	scheduler := cron.NewScheduler(logger)
	cron.NewAttendanceJobs(attendanceSvc, logger).RegisterJobs(scheduler, cfg.Cron.AutoCheckoutInterval)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		Logger:                logger,
		AllowedOrigins:        cfg.CORS.AllowedOrigins,
		JWTService:            JWTService,
		HealthHandler:         appHTTP.NewHealthHandler(db),
		PolicyHandler:         appHTTP.NewPolicyHandler(policySvc),
		AttendanceHandler:     appHTTP.NewAttendanceHandler(attendanceSvc),
		RegularizationHandler: appHTTP.NewRegularizationHandler(regularizationSvc),
		PermissionHandler:     appHTTP.NewPermissionHandler(permissionSvc),
		NotificationHandler:   appHTTP.NewNotificationHandler(notificationSvc, JWTService),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	server.RegisterOnShutdown(hub.Close)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
