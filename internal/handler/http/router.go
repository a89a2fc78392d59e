package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
)

// RouterConfig carries the handlers and transport settings of the API.
type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string

	JWTService            jwt.Service
	HealthHandler         *HealthHandler
	PolicyHandler         PolicyHandler
	AttendanceHandler     AttendanceHandler
	RegularizationHandler RegularizationHandler
	PermissionHandler     PermissionHandler
	NotificationHandler   NotificationHandler
}

func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.Health)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// EventSource cannot send an Authorization header; the stream
		// authenticates with its own short-lived token.
		r.Get("/notifications/stream", cfg.NotificationHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(cfg.JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)
			r.Use(chiMiddleware.AllowContentType("application/json"))

			r.Route("/policy", func(r chi.Router) {
				r.Get("/", cfg.PolicyHandler.Get)
				r.With(middleware.RequirePolicyManager).Put("/", cfg.PolicyHandler.Update)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireEmployee)
					r.Post("/check-in", cfg.AttendanceHandler.CheckIn)
					r.Post("/check-out", cfg.AttendanceHandler.CheckOut)
					r.Post("/ping", cfg.AttendanceHandler.Ping)
					r.Get("/my", cfg.AttendanceHandler.GetMyAttendance)
				})
				r.Get("/", cfg.AttendanceHandler.List)
				r.Get("/stats", cfg.AttendanceHandler.Statistics)
				r.Get("/{id}", cfg.AttendanceHandler.Get)
			})

			r.Route("/regularizations", func(r chi.Router) {
				r.With(middleware.RequireEmployee).Post("/", cfg.RegularizationHandler.Create)
				r.Get("/", cfg.RegularizationHandler.List)
				r.Get("/stats", cfg.RegularizationHandler.Stats)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", cfg.RegularizationHandler.Get)
					r.Post("/approve", cfg.RegularizationHandler.Approve)
					r.Post("/reject", cfg.RegularizationHandler.Reject)
					r.Post("/cancel", cfg.RegularizationHandler.Cancel)
				})
			})

			r.Route("/permissions", func(r chi.Router) {
				r.With(middleware.RequireEmployee).Post("/", cfg.PermissionHandler.Create)
				r.Get("/", cfg.PermissionHandler.List)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", cfg.PermissionHandler.Get)
					r.Post("/approve", cfg.PermissionHandler.Approve)
					r.Post("/reject", cfg.PermissionHandler.Reject)
					r.Post("/cancel", cfg.PermissionHandler.Cancel)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", cfg.NotificationHandler.List)
				r.Post("/stream-token", cfg.NotificationHandler.GetStreamToken)
			})
		})
	})
	return r
}
