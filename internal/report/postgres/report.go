package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nkaumov/kurs-zakat/internal/report"
	"github.com/nkaumov/kurs-zakat/internal/request"
)

const (
	findScheduleQuery = `
SELECT id FROM work_schedules
WHERE month = ? AND year = ?
ORDER BY id
LIMIT 1`

	hoursByEmployeeQuery = `
SELECT e.id AS employee_id, e.full_name AS full_name, SUM(d.hours) AS total_hours
FROM work_schedule_details d
JOIN employees e ON e.id = d.employee_id
WHERE d.schedule_id = ?
GROUP BY e.id, e.full_name
ORDER BY e.id`

	completedRequestsQuery = `
SELECT id, request_number, created_at
FROM requests
WHERE status = ? AND created_at >= ? AND created_at < ?
ORDER BY created_at ASC, id ASC`

	itemsQuery = `
SELECT request_id, product_name, quantity
FROM request_items
WHERE request_id IN (?)
ORDER BY request_id, id`
)

type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) report.Repository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) FindSchedule(ctx context.Context, month, year int) (int64, bool, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, r.db.Rebind(findScheduleQuery), month, year)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return id, true, nil
}

func (r *ReportRepository) HoursByEmployee(ctx context.Context, scheduleID int64) ([]report.HoursRow, error) {
	rows := []report.HoursRow{}
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(hoursByEmployeeQuery), scheduleID)
	return rows, err
}

func (r *ReportRepository) CompletedRequests(ctx context.Context, from, to time.Time) ([]report.RequestRow, error) {
	rows := []report.RequestRow{}
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(completedRequestsQuery), request.StatusCompleted, from, to)
	return rows, err
}

func (r *ReportRepository) ItemsFor(ctx context.Context, requestIDs []int64) ([]report.ItemRow, error) {
	items := []report.ItemRow{}
	if len(requestIDs) == 0 {
		return items, nil
	}

	query, args, err := sqlx.In(itemsQuery, requestIDs)
	if err != nil {
		return nil, err
	}
	err = r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...)
	return items, err
}
