package postgres

import (
	"context"
	"errors"
	"time"

	requestDatamodel "github.com/nkaumov/kurs-zakat/internal/core/datamodel/request"
	"github.com/nkaumov/kurs-zakat/internal/request"
	"gorm.io/gorm"
)

type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) request.Repository {
	return &RequestRepository{db: db}
}

// headerRow is a request header joined with its creator's username.
type headerRow struct {
	ID            int64
	RequestNumber string
	CreatedBy     int64
	CreatorName   string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (h headerRow) toDomain() *request.Request {
	return &request.Request{
		ID:            h.ID,
		RequestNumber: h.RequestNumber,
		CreatedBy:     h.CreatedBy,
		CreatorName:   h.CreatorName,
		Status:        h.Status,
		CreatedAt:     h.CreatedAt,
		UpdatedAt:     h.UpdatedAt,
	}
}

func (r *RequestRepository) Create(ctx context.Context, req *request.Request) error {
	row := request.ToDataModel(req)
	items := row.Items
	row.Items = nil

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].RequestID = row.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	row.Items = items
	*req = *request.FromDataModel(row)
	return nil
}

func (r *RequestRepository) headers(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("requests AS r").
		Select("r.id, r.request_number, r.created_by, COALESCE(u.username, '') AS creator_name, r.status, r.created_at, r.updated_at").
		Joins("LEFT JOIN users u ON u.id = r.created_by")
}

func (r *RequestRepository) List(ctx context.Context) ([]*request.Request, error) {
	var rows []headerRow
	if err := r.headers(ctx).Order("r.created_at DESC, r.id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]*request.Request, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDomain())
	}
	return result, nil
}

func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*request.Request, error) {
	var rows []headerRow
	if err := r.headers(ctx).Where("r.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	req := rows[0].toDomain()

	var items []requestDatamodel.RequestItem
	if err := r.db.WithContext(ctx).Where("request_id = ?", id).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	req.Items = make([]request.Item, 0, len(items))
	for _, it := range items {
		req.Items = append(req.Items, request.Item{
			ID:          it.ID,
			RequestID:   it.RequestID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
		})
	}
	return req, nil
}

func (r *RequestRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	res := r.db.WithContext(ctx).Model(&requestDatamodel.Request{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("request not found")
	}
	return nil
}

func (r *RequestRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&requestDatamodel.Request{}).Where("status = ?", status).Count(&n).Error
	return n, err
}
