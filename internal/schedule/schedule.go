package schedule

import (
	"time"

	scheduleDatamodel "github.com/nkaumov/kurs-zakat/internal/core/datamodel/schedule"
)

const (
	StatusOpen   = "open"
	StatusClosed = "closed"

	MinYear  = 2000
	MaxYear  = 2100
	MaxHours = 24
)

// Schedule is the monthly header. open -> closed is the only transition.
type Schedule struct {
	ID        int64     `json:"id"`
	Month     int       `json:"month"`
	Year      int       `json:"year"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Schedule) IsClosed() bool {
	return s.Status == StatusClosed
}

func (s *Schedule) DaysInMonth() int {
	return DaysInMonth(s.Month, s.Year)
}

// Entry is one submitted grid cell.
type Entry struct {
	EmployeeID int64 `json:"employee_id"`
	Day        int   `json:"day"`
	Hours      int   `json:"hours"`
}

// Grid maps employee id to day of month to hours. Only stored cells are
// present.
type Grid map[int64]map[int]int

func (g Grid) Set(employeeID int64, day, hours int) {
	days, ok := g[employeeID]
	if !ok {
		days = make(map[int]int)
		g[employeeID] = days
	}
	days[day] = hours
}

// Get reports the stored hours for a cell and whether it exists.
func (g Grid) Get(employeeID int64, day int) (int, bool) {
	h, ok := g[employeeID][day]
	return h, ok
}

// Member is an employee row shown in the grid.
type Member struct {
	ID        int64  `json:"id"`
	FullName  string `json:"full_name"`
	IsDeleted bool   `json:"is_deleted"`
}

type View struct {
	Schedule  *Schedule `json:"schedule"`
	Employees []Member  `json:"employees"`
	Grid      Grid      `json:"grid"`
	Days      []int     `json:"days"`
	IsClosed  bool      `json:"is_closed"`
}

// DaysInMonth returns the calendar length of month in year.
func DaysInMonth(month, year int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func dayRange(n int) []int {
	days := make([]int, n)
	for i := range days {
		days[i] = i + 1
	}
	return days
}

func FromDataModel(s *scheduleDatamodel.WorkSchedule) *Schedule {
	return &Schedule{
		ID:        s.ID,
		Month:     s.Month,
		Year:      s.Year,
		Status:    s.Status,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toDetailRows(scheduleID int64, entries []Entry) []scheduleDatamodel.WorkScheduleDetail {
	rows := make([]scheduleDatamodel.WorkScheduleDetail, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, scheduleDatamodel.WorkScheduleDetail{
			ScheduleID: scheduleID,
			EmployeeID: e.EmployeeID,
			DayOfMonth: e.Day,
			Hours:      e.Hours,
		})
	}
	return rows
}
