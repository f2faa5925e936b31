// Package app assembles services, handlers and routes from configuration.
package app

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/chi"
	"github.com/nkaumov/kurs-zakat/api"
	"github.com/nkaumov/kurs-zakat/internal"
	"github.com/nkaumov/kurs-zakat/internal/auth"
	authPostgres "github.com/nkaumov/kurs-zakat/internal/auth/postgres"
	"github.com/nkaumov/kurs-zakat/internal/core/events"
	"github.com/nkaumov/kurs-zakat/internal/dashboard"
	"github.com/nkaumov/kurs-zakat/internal/database"
	"github.com/nkaumov/kurs-zakat/internal/employee"
	employeePostgres "github.com/nkaumov/kurs-zakat/internal/employee/postgres"
	"github.com/nkaumov/kurs-zakat/internal/metrics"
	"github.com/nkaumov/kurs-zakat/internal/report"
	reportPostgres "github.com/nkaumov/kurs-zakat/internal/report/postgres"
	"github.com/nkaumov/kurs-zakat/internal/request"
	requestPostgres "github.com/nkaumov/kurs-zakat/internal/request/postgres"
	"github.com/nkaumov/kurs-zakat/internal/schedule"
	schedulePostgres "github.com/nkaumov/kurs-zakat/internal/schedule/postgres"
	"github.com/nkaumov/kurs-zakat/internal/storage"
	"github.com/nkaumov/kurs-zakat/internal/transport"
	"github.com/nkaumov/kurs-zakat/internal/transport/middleware"
	"github.com/nkaumov/kurs-zakat/internal/transport/rest"
	"github.com/nkaumov/kurs-zakat/internal/transport/swagger"
	"github.com/nkaumov/kurs-zakat/internal/user"
	userPostgres "github.com/nkaumov/kurs-zakat/internal/user/postgres"
	"gorm.io/gorm"
)

type App struct {
	Router  *chi.Mux
	Bus     *events.EventBus
	Archive *report.Archive
	Users   *user.Service
}

// New wires the application over an open database. store may be nil, in
// which case closed schedules are not archived.
func New(ctx context.Context, cfg *internal.Config, db *gorm.DB, store storage.Provider, lg *slog.Logger) (*App, error) {
	if _, err := swagger.Load(ctx, api.OpenAPI); err != nil {
		return nil, err
	}

	sqlxDB, err := database.NewSQLX(db, cfg.Database.Driver)
	if err != nil {
		return nil, fmt.Errorf("failed to share connection pool: %w", err)
	}
	views, err := transport.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to parse views: %w", err)
	}
	base := transport.NewBaseHandler(lg, views)
	bus := events.NewEventBus(lg)

	hasher := auth.NewBcryptHasher(cfg.Security.BCryptCost)
	users := user.NewService(userPostgres.NewUserRepository(db), hasher, lg)
	authService := auth.NewService(
		users,
		authPostgres.NewSessionRepository(db),
		auth.NewJWTTokenGenerator(cfg.Security.SessionSecret),
		hasher,
		cfg.Security.SessionTTL,
		lg,
	)

	requests := request.NewService(requestPostgres.NewRequestRepository(db), bus, lg)
	employees := employee.NewService(employeePostgres.NewEmployeeRepository(db), lg)
	schedules := schedule.NewService(schedulePostgres.NewScheduleRepository(db), bus, lg)
	reports := report.NewService(reportPostgres.NewReportRepository(sqlxDB), lg, report.WithLocation(time.Local))

	var archive *report.Archive
	if store != nil {
		archive = report.NewArchive(store, reports, cfg.Storage.Prefix, lg)
		archive.Subscribe(bus)
	}
	bus.Subscribe(events.EventTypeRequestStatusChanged, auditStatusChange(lg))

	metricsPath := ""
	if cfg.Observability.Metrics.Enabled {
		metrics.Register()
		metricsPath = cfg.Observability.Metrics.Path
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Handlers{
		Auth: auth.NewHandler(base, authService, auth.HandlerConfig{
			CookieName:        cfg.Security.SessionCookie,
			SecureCookies:     cfg.Server.SecureCookies,
			AllowRegistration: cfg.Security.AllowRegistration,
		}),
		Guard:     auth.NewGuard(base, authService, cfg.Security.SessionCookie),
		User:      user.NewHandler(base, users),
		Request:   request.NewHandler(base, requests),
		Employee:  employee.NewHandler(base, employees),
		Schedule:  schedule.NewHandler(base, schedules),
		Report:    report.NewHandler(base, reports, archive),
		Dashboard: dashboard.NewHandler(base, requests, employees),
	}, rest.Options{
		DB:            sqlxDB.DB,
		ReportStore:   store,
		ReportPrefix:  cfg.Storage.Prefix,
		Logger:        lg,
		CSRFKey:       csrfKey(cfg.Security.SessionSecret),
		SecureCookies: cfg.Server.SecureCookies,
		LoginLimiter:  middleware.NewRateLimiter(cfg.Security.LoginRatePerMinute),
		MetricsPath:   metricsPath,
		OpenAPISpec:   api.OpenAPI,
	})

	return &App{
		Router:  router,
		Bus:     bus,
		Archive: archive,
		Users:   users,
	}, nil
}

// csrfKey derives the 32-byte CSRF key from the session secret.
func csrfKey(secret string) []byte {
	sum := sha256.Sum256([]byte("csrf:" + secret))
	return sum[:]
}

func auditStatusChange(lg *slog.Logger) events.Handler {
	return func(ctx context.Context, event events.Event) error {
		changed, ok := event.(*events.RequestStatusChangedEvent)
		if !ok {
			return fmt.Errorf("unexpected event %T", event)
		}
		lg.Info("request status changed",
			"request_id", changed.RequestID,
			"request_number", changed.RequestNumber,
			"from", changed.FromStatus,
			"to", changed.ToStatus,
			"manager_id", changed.ChangedBy)
		return nil
	}
}
