package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nkaumov/kurs-zakat/internal"
	scheduleDatamodel "github.com/nkaumov/kurs-zakat/internal/core/datamodel/schedule"
	"github.com/nkaumov/kurs-zakat/internal/core/events"
	"github.com/nkaumov/kurs-zakat/internal/metrics"
)

// SaveGuard runs inside the save transaction after the schedule row is
// locked. s is nil when the schedule does not exist. known holds the
// submitted employee ids that exist.
type SaveGuard func(s *scheduleDatamodel.WorkSchedule, known map[int64]bool) error

type Repository interface {
	// FetchOrCreate returns the schedule for the period, inserting an open
	// one when none exists. Concurrent callers observe the same row.
	FetchOrCreate(ctx context.Context, month, year int) (*scheduleDatamodel.WorkSchedule, error)
	GetByID(ctx context.Context, id int64) (*scheduleDatamodel.WorkSchedule, error)
	// Pool lists employees with details in the schedule, plus every active
	// employee when includeActive is set. Ordered by id.
	Pool(ctx context.Context, scheduleID int64, includeActive bool) ([]Member, error)
	Details(ctx context.Context, scheduleID int64) ([]scheduleDatamodel.WorkScheduleDetail, error)
	// UpsertDetails locks the schedule, calls guard and merges rows. Nothing
	// is written when guard fails.
	UpsertDetails(ctx context.Context, scheduleID int64, rows []scheduleDatamodel.WorkScheduleDetail, guard SaveGuard) (*scheduleDatamodel.WorkSchedule, error)
	// Close marks the schedule closed. It returns nil when the id is unknown.
	Close(ctx context.Context, id int64) (*scheduleDatamodel.WorkSchedule, error)
}

type Service struct {
	repo      Repository
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the schedule service. publisher may be nil.
func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CurrentPeriod is the month and year used when the caller names none.
func (s *Service) CurrentPeriod() (int, int) {
	now := s.now()
	return int(now.Month()), now.Year()
}

func ValidatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return internal.NewValidationError("Month must be between 1 and 12", internal.ErrCodeInvalidPeriod)
	}
	if year < MinYear || year > MaxYear {
		return internal.NewValidationError(fmt.Sprintf("Year must be between %d and %d", MinYear, MaxYear), internal.ErrCodeInvalidPeriod)
	}
	return nil
}

// Open returns the schedule for month/year, creating it open on first use.
func (s *Service) Open(ctx context.Context, month, year int) (*Schedule, error) {
	if err := ValidatePeriod(month, year); err != nil {
		return nil, err
	}

	row, err := s.repo.FetchOrCreate(ctx, month, year)
	if err != nil {
		s.logger.Error("failed to open schedule", "error", err, "month", month, "year", year)
		return nil, internal.NewInternalError("failed to open schedule", err)
	}
	return FromDataModel(row), nil
}

// View assembles the grid for month/year.
func (s *Service) View(ctx context.Context, month, year int) (*View, error) {
	sched, err := s.Open(ctx, month, year)
	if err != nil {
		return nil, err
	}

	details, err := s.repo.Details(ctx, sched.ID)
	if err != nil {
		s.logger.Error("failed to load schedule details", "error", err, "schedule_id", sched.ID)
		return nil, internal.NewInternalError("failed to load schedule", err)
	}

	// Only an open schedule without any hours follows the active roster.
	// Once populated, the pool is the employees that have detail rows.
	members, err := s.repo.Pool(ctx, sched.ID, !sched.IsClosed() && len(details) == 0)
	if err != nil {
		s.logger.Error("failed to load schedule employees", "error", err, "schedule_id", sched.ID)
		return nil, internal.NewInternalError("failed to load schedule", err)
	}

	grid := make(Grid)
	for _, d := range details {
		grid.Set(d.EmployeeID, d.DayOfMonth, d.Hours)
	}

	return &View{
		Schedule:  sched,
		Employees: members,
		Grid:      grid,
		Days:      dayRange(sched.DaysInMonth()),
		IsClosed:  sched.IsClosed(),
	}, nil
}

// SaveHours merges entries into an open schedule. Cells that are not
// submitted keep their stored value. Replaying a submission is harmless.
func (s *Service) SaveHours(ctx context.Context, scheduleID int64, entries []Entry) (*Schedule, error) {
	if len(entries) == 0 {
		return nil, internal.ErrNoHoursSubmitted
	}
	entries = dedupe(entries)

	guard := func(row *scheduleDatamodel.WorkSchedule, known map[int64]bool) error {
		if row == nil {
			return internal.ErrScheduleNotFound
		}
		if row.Status == StatusClosed {
			return internal.ErrScheduleLocked
		}
		return validateEntries(entries, DaysInMonth(row.Month, row.Year), known)
	}

	row, err := s.repo.UpsertDetails(ctx, scheduleID, toDetailRows(scheduleID, entries), guard)
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to save hours", "error", err, "schedule_id", scheduleID)
		return nil, internal.NewInternalError("failed to save hours", err)
	}

	metrics.HoursSaved.Add(float64(len(entries)))
	s.logger.Info("schedule hours saved", "schedule_id", scheduleID, "cells", len(entries))
	return FromDataModel(row), nil
}

// Close sets the schedule to closed. Closing a closed schedule succeeds and
// changes nothing.
func (s *Service) Close(ctx context.Context, scheduleID int64, closedBy int64) (*Schedule, error) {
	row, err := s.repo.Close(ctx, scheduleID)
	if err != nil {
		s.logger.Error("failed to close schedule", "error", err, "schedule_id", scheduleID)
		return nil, internal.NewInternalError("failed to close schedule", err)
	}
	if row == nil {
		return nil, internal.ErrScheduleNotFound
	}
	sched := FromDataModel(row)

	metrics.SchedulesClosed.Inc()
	if s.publisher != nil {
		event := events.NewScheduleClosedEvent(sched.ID, sched.Month, sched.Year, closedBy)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish schedule closed event", "error", err, "schedule_id", sched.ID)
		}
	}

	s.logger.Info("schedule closed", "schedule_id", sched.ID, "month", sched.Month, "year", sched.Year, "manager_id", closedBy)
	return sched, nil
}

// dedupe keeps the last entry per cell, preserving first-seen order.
func dedupe(entries []Entry) []Entry {
	type cell struct {
		emp int64
		day int
	}
	index := make(map[cell]int, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		k := cell{e.EmployeeID, e.Day}
		if i, ok := index[k]; ok {
			out[i] = e
			continue
		}
		index[k] = len(out)
		out = append(out, e)
	}
	return out
}

func validateEntries(entries []Entry, days int, known map[int64]bool) error {
	for _, e := range entries {
		if !known[e.EmployeeID] {
			return internal.NewValidationError(fmt.Sprintf("Employee %d does not exist", e.EmployeeID), internal.ErrCodeEmployeeNotFound)
		}
		if e.Day < 1 || e.Day > days {
			return internal.NewValidationError(fmt.Sprintf("Day %d is outside the month (1-%d)", e.Day, days), internal.ErrCodeInvalidDay)
		}
		if e.Hours < 0 || e.Hours > MaxHours {
			return internal.NewValidationError(fmt.Sprintf("Hours for day %d must be between 0 and %d", e.Day, MaxHours), internal.ErrCodeInvalidHours)
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Schedule, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load schedule", err)
	}
	if row == nil {
		return nil, internal.ErrScheduleNotFound
	}
	return FromDataModel(row), nil
}
