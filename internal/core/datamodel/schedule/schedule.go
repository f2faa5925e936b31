package schedule

import "time"

type WorkSchedule struct {
	ID        int64     `gorm:"primaryKey"`
	Month     int       `gorm:"column:month;not null;uniqueIndex:idx_work_schedules_period"`
	Year      int       `gorm:"column:year;not null;uniqueIndex:idx_work_schedules_period"`
	Status    string    `gorm:"column:status;size:16;not null;default:open"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (WorkSchedule) TableName() string {
	return "work_schedules"
}

// WorkScheduleDetail is one cell of the hour grid. The composite unique
// index is the conflict target for upserts.
type WorkScheduleDetail struct {
	ID         int64     `gorm:"primaryKey"`
	ScheduleID int64     `gorm:"column:schedule_id;not null;uniqueIndex:idx_work_schedule_details_cell"`
	EmployeeID int64     `gorm:"column:employee_id;not null;uniqueIndex:idx_work_schedule_details_cell;index"`
	DayOfMonth int       `gorm:"column:day_of_month;not null;uniqueIndex:idx_work_schedule_details_cell"`
	Hours      int       `gorm:"column:hours;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (WorkScheduleDetail) TableName() string {
	return "work_schedule_details"
}
