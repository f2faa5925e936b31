package request

import (
	"context"
	"log/slog"

	"github.com/nkaumov/kurs-zakat/internal"
	"github.com/nkaumov/kurs-zakat/internal/core/events"
	"github.com/nkaumov/kurs-zakat/internal/metrics"
)

// Repository interface defines the data access methods for requests
type Repository interface {
	// Create stores the header and its items atomically and fills in ids.
	Create(ctx context.Context, r *Request) error
	List(ctx context.Context) ([]*Request, error)
	GetByID(ctx context.Context, id int64) (*Request, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// Service handles request ledger business logic
type Service struct {
	repo      Repository
	publisher events.Publisher
	logger    *slog.Logger
}

// NewService creates a new request service. publisher may be nil.
func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Create stores a request for creatorID with the valid subset of positions.
// Nothing is written when no position survives.
func (s *Service) Create(ctx context.Context, creatorID int64, positions []PositionDTO) (*Request, error) {
	valid := ValidPositions(positions)
	if len(valid) == 0 {
		return nil, internal.ErrNoValidPositions
	}

	req := NewRequest(creatorID, valid)
	if err := s.repo.Create(ctx, req); err != nil {
		s.logger.Error("failed to create request", "error", err, "user_id", creatorID)
		return nil, internal.NewInternalError("failed to create request", err)
	}

	metrics.RequestsCreated.Inc()
	s.logger.Info("request created",
		"request_id", req.ID,
		"request_number", req.RequestNumber,
		"items", len(req.Items),
		"dropped", len(positions)-len(valid))
	return req, nil
}

// List returns every request, newest first.
func (s *Service) List(ctx context.Context) ([]*Request, error) {
	requests, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list requests", "error", err)
		return nil, internal.NewInternalError("failed to list requests", err)
	}
	return requests, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Request, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get request", "error", err, "request_id", id)
		return nil, internal.NewInternalError("failed to get request", err)
	}
	if req == nil {
		return nil, internal.ErrRequestNotFound
	}
	return req, nil
}

func (s *Service) CountNew(ctx context.Context) (int64, error) {
	n, err := s.repo.CountByStatus(ctx, StatusNew)
	if err != nil {
		return 0, internal.NewInternalError("failed to count requests", err)
	}
	return n, nil
}

// UpdateStatus sets the status of request id. Any known status may follow
// any other.
func (s *Service) UpdateStatus(ctx context.Context, id int64, dto UpdateStatusDTO, changedBy int64) (*Request, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	from := req.Status
	if from == dto.Status {
		return req, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, dto.Status); err != nil {
		s.logger.Error("failed to update request status", "error", err, "request_id", id)
		return nil, internal.NewInternalError("failed to update request status", err)
	}
	req.Status = dto.Status

	if s.publisher != nil {
		event := events.NewRequestStatusChangedEvent(req.ID, req.RequestNumber, from, dto.Status, changedBy)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish request status event", "error", err, "request_id", id)
		}
	}

	s.logger.Info("request status updated", "request_id", id, "from", from, "to", dto.Status, "manager_id", changedBy)
	return req, nil
}
