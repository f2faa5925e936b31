package request

import "time"

type Request struct {
	ID            int64         `gorm:"primaryKey"`
	RequestNumber string        `gorm:"column:request_number;size:64;uniqueIndex;not null"`
	CreatedBy     int64         `gorm:"column:created_by;not null;index"`
	Status        string        `gorm:"column:status;size:20;not null;default:new"`
	CreatedAt     time.Time     `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt     time.Time     `gorm:"column:updated_at;autoUpdateTime"`
	Items         []RequestItem `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
}

func (Request) TableName() string {
	return "requests"
}

type RequestItem struct {
	ID          int64  `gorm:"primaryKey"`
	RequestID   int64  `gorm:"column:request_id;not null;index"`
	ProductName string `gorm:"column:product_name;size:255;not null"`
	Quantity    int    `gorm:"column:quantity;not null"`
}

func (RequestItem) TableName() string {
	return "request_items"
}
