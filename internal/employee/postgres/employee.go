package postgres

import (
	"context"
	"errors"

	employeeDatamodel "github.com/nkaumov/kurs-zakat/internal/core/datamodel/employee"
	"github.com/nkaumov/kurs-zakat/internal/employee"
	"gorm.io/gorm"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) employee.RepositoryAPI {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) ListActive(ctx context.Context) ([]*employeeDatamodel.Employee, error) {
	var employees []*employeeDatamodel.Employee
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("id DESC").
		Find(&employees).Error
	return employees, err
}

func (r *EmployeeRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&employeeDatamodel.Employee{}).Where("is_deleted = ?", false).Count(&n).Error
	return n, err
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*employeeDatamodel.Employee, error) {
	var e employeeDatamodel.Employee
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *EmployeeRepository) Create(ctx context.Context, e *employeeDatamodel.Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EmployeeRepository) MarkDeleted(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&employeeDatamodel.Employee{}).Where("id = ?", id).Update("is_deleted", true).Error
}
