package employee

import (
	"context"
	"log/slog"

	"github.com/nkaumov/kurs-zakat/internal"
	employeeDatamodel "github.com/nkaumov/kurs-zakat/internal/core/datamodel/employee"
)

type RepositoryAPI interface {
	ListActive(ctx context.Context) ([]*employeeDatamodel.Employee, error)
	CountActive(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id int64) (*employeeDatamodel.Employee, error)
	Create(ctx context.Context, e *employeeDatamodel.Employee) error
	MarkDeleted(ctx context.Context, id int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// ListActive returns employees that are not soft-deleted, newest first.
func (s *Service) ListActive(ctx context.Context) ([]*Employee, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		s.logger.Error("failed to list employees", "error", err)
		return nil, internal.NewInternalError("failed to list employees", err)
	}

	employees := make([]*Employee, 0, len(rows))
	for _, row := range rows {
		employees = append(employees, FromDataModel(row))
	}
	return employees, nil
}

func (s *Service) CountActive(ctx context.Context) (int64, error) {
	n, err := s.repo.CountActive(ctx)
	if err != nil {
		return 0, internal.NewInternalError("failed to count employees", err)
	}
	return n, nil
}

func (s *Service) Add(ctx context.Context, dto CreateEmployeeDTO) (*Employee, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row := ToDataModel(NewEmployee(dto))
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create employee", "error", err)
		return nil, internal.NewInternalError("failed to create employee", err)
	}

	s.logger.Info("employee added", "employee_id", row.ID, "position", row.Position)
	return FromDataModel(row), nil
}

// SoftDelete flags the employee as deleted. Schedule details that reference
// the employee are kept. Deleting twice succeeds.
func (s *Service) SoftDelete(ctx context.Context, id int64) error {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to load employee", err)
	}
	if row == nil {
		return internal.ErrEmployeeNotFound
	}
	if row.IsDeleted {
		return nil
	}

	if err := s.repo.MarkDeleted(ctx, id); err != nil {
		s.logger.Error("failed to delete employee", "employee_id", id, "error", err)
		return internal.NewInternalError("failed to delete employee", err)
	}

	s.logger.Info("employee deleted", "employee_id", id)
	return nil
}
