package postgres

import (
	"context"
	"errors"

	employeeDatamodel "github.com/nkaumov/kurs-zakat/internal/core/datamodel/employee"
	scheduleDatamodel "github.com/nkaumov/kurs-zakat/internal/core/datamodel/schedule"
	"github.com/nkaumov/kurs-zakat/internal/schedule"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var cellColumns = []clause.Column{{Name: "schedule_id"}, {Name: "employee_id"}, {Name: "day_of_month"}}

type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) schedule.Repository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) FetchOrCreate(ctx context.Context, month, year int) (*scheduleDatamodel.WorkSchedule, error) {
	db := r.db.WithContext(ctx)

	row := &scheduleDatamodel.WorkSchedule{Month: month, Year: year, Status: schedule.StatusOpen}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "month"}, {Name: "year"}},
		DoNothing: true,
	}).Create(row).Error
	if err != nil {
		return nil, err
	}

	var existing scheduleDatamodel.WorkSchedule
	if err := db.Where("month = ? AND year = ?", month, year).First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id int64) (*scheduleDatamodel.WorkSchedule, error) {
	var s scheduleDatamodel.WorkSchedule
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *ScheduleRepository) Pool(ctx context.Context, scheduleID int64, includeActive bool) ([]schedule.Member, error) {
	withDetails := r.db.Model(&scheduleDatamodel.WorkScheduleDetail{}).
		Select("employee_id").
		Where("schedule_id = ?", scheduleID)

	q := r.db.WithContext(ctx).
		Model(&employeeDatamodel.Employee{}).
		Select("id, full_name, is_deleted")
	if includeActive {
		q = q.Where("is_deleted = ? OR id IN (?)", false, withDetails)
	} else {
		q = q.Where("id IN (?)", withDetails)
	}

	var members []schedule.Member
	err := q.Order("id ASC").Scan(&members).Error
	return members, err
}

func (r *ScheduleRepository) Details(ctx context.Context, scheduleID int64) ([]scheduleDatamodel.WorkScheduleDetail, error) {
	var details []scheduleDatamodel.WorkScheduleDetail
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("employee_id ASC, day_of_month ASC").
		Find(&details).Error
	return details, err
}

func (r *ScheduleRepository) UpsertDetails(ctx context.Context, scheduleID int64, rows []scheduleDatamodel.WorkScheduleDetail, guard schedule.SaveGuard) (*scheduleDatamodel.WorkSchedule, error) {
	var locked scheduleDatamodel.WorkSchedule

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", scheduleID).First(&locked).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if gerr := guard(nil, nil); gerr != nil {
				return gerr
			}
			return err
		}
		if err != nil {
			return err
		}

		known, err := knownEmployees(tx, rows)
		if err != nil {
			return err
		}
		if err := guard(&locked, known); err != nil {
			return err
		}

		if len(rows) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   cellColumns,
			DoUpdates: clause.AssignmentColumns([]string{"hours", "updated_at"}),
		}).Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	return &locked, nil
}

func (r *ScheduleRepository) Close(ctx context.Context, id int64) (*scheduleDatamodel.WorkSchedule, error) {
	var row *scheduleDatamodel.WorkSchedule

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s scheduleDatamodel.WorkSchedule
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&s).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&s).Update("status", schedule.StatusClosed).Error; err != nil {
			return err
		}
		s.Status = schedule.StatusClosed
		row = &s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func knownEmployees(tx *gorm.DB, rows []scheduleDatamodel.WorkScheduleDetail) (map[int64]bool, error) {
	seen := make(map[int64]bool, len(rows))
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		if !seen[row.EmployeeID] {
			seen[row.EmployeeID] = true
			ids = append(ids, row.EmployeeID)
		}
	}

	known := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return known, nil
	}

	var found []int64
	if err := tx.Model(&employeeDatamodel.Employee{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		known[id] = true
	}
	return known, nil
}
