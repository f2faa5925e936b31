package request

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	requestDatamodel "github.com/nkaumov/kurs-zakat/internal/core/datamodel/request"
)

const (
	StatusNew        = "new"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Statuses lists every status a manager may assign, in display order.
var Statuses = []string{StatusNew, StatusInProgress, StatusCompleted, StatusCancelled}

func IsValidStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

type Request struct {
	ID            int64     `json:"id"`
	RequestNumber string    `json:"request_number"`
	CreatedBy     int64     `json:"created_by"`
	CreatorName   string    `json:"creator_name"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Items         []Item    `json:"items,omitempty"`
}

type Item struct {
	ID          int64  `json:"id"`
	RequestID   int64  `json:"request_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// NewRequestNumber builds REQ-<unix millis>-<8 hex>. The random suffix keeps
// numbers unique when two requests share a millisecond.
func NewRequestNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("REQ-%d-%s", now.UnixMilli(), suffix)
}

func NewRequest(creatorID int64, positions []PositionDTO) *Request {
	now := time.Now()
	items := make([]Item, 0, len(positions))
	for _, p := range positions {
		items = append(items, Item{ProductName: p.ProductName, Quantity: p.Quantity})
	}
	return &Request{
		RequestNumber: NewRequestNumber(now),
		CreatedBy:     creatorID,
		Status:        StatusNew,
		CreatedAt:     now,
		UpdatedAt:     now,
		Items:         items,
	}
}

func ToDataModel(r *Request) *requestDatamodel.Request {
	items := make([]requestDatamodel.RequestItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, requestDatamodel.RequestItem{
			ID:          it.ID,
			RequestID:   it.RequestID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
		})
	}
	return &requestDatamodel.Request{
		ID:            r.ID,
		RequestNumber: r.RequestNumber,
		CreatedBy:     r.CreatedBy,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		Items:         items,
	}
}

func FromDataModel(r *requestDatamodel.Request) *Request {
	items := make([]Item, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, Item{
			ID:          it.ID,
			RequestID:   it.RequestID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
		})
	}
	return &Request{
		ID:            r.ID,
		RequestNumber: r.RequestNumber,
		CreatedBy:     r.CreatedBy,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		Items:         items,
	}
}
