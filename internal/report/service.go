package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/nkaumov/kurs-zakat/internal"
	"github.com/nkaumov/kurs-zakat/internal/metrics"
	"github.com/nkaumov/kurs-zakat/internal/schedule"
)

type Repository interface {
	// FindSchedule returns the schedule id for the period and whether one
	// exists.
	FindSchedule(ctx context.Context, month, year int) (int64, bool, error)
	HoursByEmployee(ctx context.Context, scheduleID int64) ([]HoursRow, error)
	// CompletedRequests returns completed requests created in [from, to),
	// oldest first.
	CompletedRequests(ctx context.Context, from, to time.Time) ([]RequestRow, error)
	ItemsFor(ctx context.Context, requestIDs []int64) ([]ItemRow, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
	loc    *time.Location
}

type Option func(*Service)

// WithLocation sets the zone used for month boundaries and timestamps.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func NewService(repo Repository, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		logger: logger,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HoursReport totals the hours per employee for the month's schedule.
func (s *Service) HoursReport(ctx context.Context, month, year int) (*Report, error) {
	if err := schedule.ValidatePeriod(month, year); err != nil {
		return nil, err
	}

	scheduleID, found, err := s.repo.FindSchedule(ctx, month, year)
	if err != nil {
		s.logger.Error("failed to find schedule for report", "error", err, "month", month, "year", year)
		return nil, internal.NewInternalError("failed to build hours report", err)
	}
	if !found {
		return nil, internal.ErrScheduleNotFound
	}

	rows, err := s.repo.HoursByEmployee(ctx, scheduleID)
	if err != nil {
		s.logger.Error("failed to total hours", "error", err, "schedule_id", scheduleID)
		return nil, internal.NewInternalError("failed to build hours report", err)
	}

	content, err := encodeHours(rows)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode hours report", err)
	}
	return s.finish(KindHours, month, year, content, len(rows)), nil
}

// RequestsReport lists completed requests created during the month.
func (s *Service) RequestsReport(ctx context.Context, month, year int) (*Report, error) {
	if err := schedule.ValidatePeriod(month, year); err != nil {
		return nil, err
	}

	from, to := monthRange(month, year, s.loc)
	rows, err := s.repo.CompletedRequests(ctx, from, to)
	if err != nil {
		s.logger.Error("failed to load completed requests", "error", err, "month", month, "year", year)
		return nil, internal.NewInternalError("failed to build requests report", err)
	}

	if len(rows) > 0 {
		ids := make([]int64, 0, len(rows))
		for _, r := range rows {
			ids = append(ids, r.ID)
		}
		items, err := s.repo.ItemsFor(ctx, ids)
		if err != nil {
			s.logger.Error("failed to load request items", "error", err)
			return nil, internal.NewInternalError("failed to build requests report", err)
		}

		byRequest := make(map[int64][]ItemRow, len(rows))
		for _, it := range items {
			byRequest[it.RequestID] = append(byRequest[it.RequestID], it)
		}
		for i := range rows {
			rows[i].Items = byRequest[rows[i].ID]
		}
	}

	content, err := encodeRequests(rows, s.loc)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode requests report", err)
	}
	return s.finish(KindRequests, month, year, content, len(rows)), nil
}

func (s *Service) finish(kind string, month, year int, content []byte, rows int) *Report {
	metrics.ReportsGenerated.WithLabelValues(kind).Inc()
	s.logger.Info("report generated", "kind", kind, "month", month, "year", year, "rows", rows)
	return &Report{
		Kind:     kind,
		Filename: Filename(kind, month, year),
		Content:  content,
	}
}
