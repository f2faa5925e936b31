package employee

import (
	"strings"

	"github.com/nkaumov/kurs-zakat/internal/core/common/validation"
)

type CreateEmployeeDTO struct {
	FullName     string `json:"full_name"`
	Position     string `json:"position"`
	PassportData string `json:"passport_data"`
	PhoneNumber  string `json:"phone_number"`
}

func (d *CreateEmployeeDTO) Normalize() {
	d.FullName = strings.TrimSpace(d.FullName)
	d.Position = strings.TrimSpace(d.Position)
	d.PassportData = strings.TrimSpace(d.PassportData)
	d.PhoneNumber = strings.TrimSpace(d.PhoneNumber)
}

func (d CreateEmployeeDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("full_name", d.FullName).Required().MaxLength(255)
	v.Field("position", d.Position).Required().MaxLength(255)
	v.Field("passport_data", d.PassportData).MaxLength(255)
	v.Field("phone_number", d.PhoneNumber).MaxLength(64)
	return v.Err()
}

type EmployeeResponse struct {
	ID           int64  `json:"id"`
	FullName     string `json:"full_name"`
	Position     string `json:"position"`
	PassportData string `json:"passport_data"`
	PhoneNumber  string `json:"phone_number"`
}

type EmployeesResponse struct {
	Employees []EmployeeResponse `json:"employees"`
}
