package report

import (
	"fmt"
	"time"
)

const (
	KindHours    = "hours"
	KindRequests = "requests"

	ContentType = "text/csv; charset=utf-8"
)

// Report is a generated CSV file.
type Report struct {
	Kind     string
	Filename string
	Content  []byte
}

// Filename is <kind>_<month>_<year>.csv.
func Filename(kind string, month, year int) string {
	return fmt.Sprintf("%s_%d_%d.csv", kind, month, year)
}

// HoursRow is one employee's total for a schedule.
type HoursRow struct {
	EmployeeID int64  `db:"employee_id"`
	FullName   string `db:"full_name"`
	TotalHours int64  `db:"total_hours"`
}

type RequestRow struct {
	ID            int64     `db:"id"`
	RequestNumber string    `db:"request_number"`
	CreatedAt     time.Time `db:"created_at"`
	Items         []ItemRow `db:"-"`
}

type ItemRow struct {
	RequestID   int64  `db:"request_id"`
	ProductName string `db:"product_name"`
	Quantity    int    `db:"quantity"`
}

// monthRange is [first day of month, first day of next month) in loc.
func monthRange(month, year int, loc *time.Location) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 1, 0)
}
