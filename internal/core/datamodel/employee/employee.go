package employee

import "time"

type Employee struct {
	ID           int64     `gorm:"primaryKey"`
	FullName     string    `gorm:"column:full_name;size:255;not null"`
	Position     string    `gorm:"column:position;size:255;not null"`
	PassportData string    `gorm:"column:passport_data;size:255"`
	PhoneNumber  string    `gorm:"column:phone_number;size:64"`
	IsDeleted    bool      `gorm:"column:is_deleted;not null;default:false;index"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Employee) TableName() string {
	return "employees"
}
