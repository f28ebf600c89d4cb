package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/workpulse/attendance-backend-go/internal/domain/user"
	"github.com/workpulse/attendance-backend-go/internal/handler/http/middleware"
	"github.com/workpulse/attendance-backend-go/internal/pkg/jwt"
)

type RouterConfig struct {
	AppName        string
	Env            string
	AllowedOrigins []string
	CronSecret     string
}

func NewRouter(
	cfg RouterConfig,
	jwtService jwt.Service,
	attendanceHandler AttendanceHandler,
	schedulerHandler SchedulerHandler,
	monitoringHandler MonitoringHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.AppName),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Cron-Secret"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Trigger endpoints for the external cron runner. Authenticated by
		// shared secret, not by user token.
		r.Route("/internal/jobs", func(r chi.Router) {
			r.Use(middleware.CronSecret(cfg.CronSecret))
			r.Post("/{name}/trigger", schedulerHandler.Trigger)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceCheckSelf))
					r.Post("/check-in", attendanceHandler.CheckIn)
					r.Post("/check-out", attendanceHandler.CheckOut)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceViewOwn))
					r.Get("/status", attendanceHandler.Status)
					r.Get("/history", attendanceHandler.History)
				})

				r.Route("/admin", func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceManage))
					r.Post("/check-in", attendanceHandler.AdminCheckIn)
					r.Post("/check-out", attendanceHandler.AdminCheckOut)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionReportsView))
					r.Get("/report", attendanceHandler.Report)
				})
			})

			r.Route("/monitoring", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionReportsView))
				r.Get("/summary", monitoringHandler.Summary)
			})

			r.Route("/jobs", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionJobsManage))
				r.Get("/", schedulerHandler.List)
				r.Get("/{name}", schedulerHandler.Get)
				r.Post("/{name}/trigger", schedulerHandler.Trigger)
				r.Post("/{name}/enable", schedulerHandler.Enable)
				r.Post("/{name}/disable", schedulerHandler.Disable)
				r.Put("/{name}/schedule", schedulerHandler.UpdateSchedule)
			})
		})
	})
	return r
}
