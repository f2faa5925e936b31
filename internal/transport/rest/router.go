package rest

import (
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/nkaumov/kurs-zakat/internal"
	"github.com/nkaumov/kurs-zakat/internal/auth"
	"github.com/nkaumov/kurs-zakat/internal/dashboard"
	"github.com/nkaumov/kurs-zakat/internal/employee"
	"github.com/nkaumov/kurs-zakat/internal/metrics"
	"github.com/nkaumov/kurs-zakat/internal/report"
	"github.com/nkaumov/kurs-zakat/internal/request"
	"github.com/nkaumov/kurs-zakat/internal/schedule"
	"github.com/nkaumov/kurs-zakat/internal/storage"
	"github.com/nkaumov/kurs-zakat/internal/transport/middleware"
	"github.com/nkaumov/kurs-zakat/internal/transport/swagger"
	"github.com/nkaumov/kurs-zakat/internal/user"
)

type Handlers struct {
	Auth      *auth.Handler
	Guard     *auth.Guard
	User      *user.Handler
	Request   *request.Handler
	Employee  *employee.Handler
	Schedule  *schedule.Handler
	Report    *report.Handler
	Dashboard *dashboard.Handler
}

type Options struct {
	DB *sql.DB
	// ReportStore is nil when archiving is disabled.
	ReportStore   storage.Provider
	ReportPrefix  string
	Logger        *slog.Logger
	CSRFKey       []byte
	SecureCookies bool
	LoginLimiter  *middleware.RateLimiter
	// MetricsPath is empty when metrics are disabled.
	MetricsPath string
	OpenAPISpec []byte
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options) {
	checks := []HealthCheck{DatabaseCheck(opts.DB)}
	if opts.ReportStore != nil {
		checks = append(checks, ReportStorageCheck(opts.ReportStore, opts.ReportPrefix))
	}
	healthHandler := NewHealthHandler(checks...)

	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(opts.Logger))
	router.Use(middleware.RecoveryMiddleware(opts.Logger))
	if opts.MetricsPath != "" {
		router.Use(middleware.Metrics)
		router.Handle(opts.MetricsPath, metrics.Handler())
	}

	if len(opts.OpenAPISpec) > 0 {
		router.Get(swagger.SpecPath, swagger.SpecHandler(opts.OpenAPISpec))
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", healthHandler.Mount)

	// pages
	router.Group(func(r chi.Router) {
		r.Use(middleware.CSRF(opts.CSRFKey, opts.SecureCookies))
		r.Use(h.Guard.Identify)

		r.Get("/", h.Auth.Root)

		r.Route("/auth", func(ar chi.Router) {
			ar.Get("/login", h.Auth.LoginPage)
			if opts.LoginLimiter != nil {
				ar.With(opts.LoginLimiter.Middleware).Post("/login", h.Auth.Login)
			} else {
				ar.Post("/login", h.Auth.Login)
			}
			ar.Get("/logout", h.Auth.Logout)
			ar.Get("/register", h.Auth.RegisterPage)
			ar.Post("/register", h.Auth.Register)
		})

		// any signed-in user
		r.Route("/requests", func(rr chi.Router) {
			rr.Use(h.Guard.Require(internal.RoleAny))
			rr.Get("/", h.Request.ListRequests)
			rr.Get("/create", h.Request.CreateRequestPage)
			rr.Post("/create", h.Request.CreateRequest)
			rr.Get("/{id}", h.Request.GetRequest)
		})

		r.Route("/manager", func(mr chi.Router) {
			mr.Use(h.Guard.Require(internal.RoleManager))
			mr.Get("/", h.Dashboard.Home)

			mr.Get("/requests", h.Request.ListRequests)
			mr.Get("/requests/{id}", h.Request.GetRequest)
			mr.Post("/requests/{id}/status", h.Request.UpdateStatus)

			mr.Get("/employees", h.Employee.ListEmployees)
			mr.Post("/employees", h.Employee.CreateEmployee)
			mr.Post("/employees/{id}/delete", h.Employee.DeleteEmployee)

			mr.Get("/create-user", h.User.CreateUserPage)
			mr.Post("/create-user", h.User.CreateUser)

			mr.Get("/schedule", h.Schedule.GetSchedule)
			mr.Post("/schedule", h.Schedule.SaveHours)
			mr.Post("/schedule/close", h.Schedule.CloseSchedule)

			mr.Get("/report/hours", h.Report.HoursForm)
			mr.Post("/report/hours", h.Report.HoursReport)
			mr.Get("/report/requests", h.Report.RequestsForm)
			mr.Post("/report/requests", h.Report.RequestsReport)
			mr.Get("/report/archive/{name}", h.Report.ArchivedReport)
		})
	})
}
