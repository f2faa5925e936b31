package employee

import (
	"time"

	employeeDatamodel "github.com/nkaumov/kurs-zakat/internal/core/datamodel/employee"
)

type Employee struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"full_name"`
	Position     string    `json:"position"`
	PassportData string    `json:"passport_data"`
	PhoneNumber  string    `json:"phone_number"`
	IsDeleted    bool      `json:"is_deleted"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (e *Employee) IsActive() bool {
	return !e.IsDeleted
}

func (e *Employee) ToResponse() EmployeeResponse {
	return EmployeeResponse{
		ID:           e.ID,
		FullName:     e.FullName,
		Position:     e.Position,
		PassportData: e.PassportData,
		PhoneNumber:  e.PhoneNumber,
	}
}

func NewEmployee(dto CreateEmployeeDTO) *Employee {
	now := time.Now()
	return &Employee{
		FullName:     dto.FullName,
		Position:     dto.Position,
		PassportData: dto.PassportData,
		PhoneNumber:  dto.PhoneNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func ToDataModel(e *Employee) *employeeDatamodel.Employee {
	return &employeeDatamodel.Employee{
		ID:           e.ID,
		FullName:     e.FullName,
		Position:     e.Position,
		PassportData: e.PassportData,
		PhoneNumber:  e.PhoneNumber,
		IsDeleted:    e.IsDeleted,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func FromDataModel(e *employeeDatamodel.Employee) *Employee {
	return &Employee{
		ID:           e.ID,
		FullName:     e.FullName,
		Position:     e.Position,
		PassportData: e.PassportData,
		PhoneNumber:  e.PhoneNumber,
		IsDeleted:    e.IsDeleted,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}
