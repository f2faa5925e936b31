package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nkaumov/kurs-zakat/internal"
	userDatamodel "github.com/nkaumov/kurs-zakat/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error)
	List(ctx context.Context) ([]*userDatamodel.User, error)
	Create(ctx context.Context, u *userDatamodel.User) error
}

// PasswordHasher turns a plaintext password into a storable hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

type Service struct {
	repo   RepositoryAPI
	hasher PasswordHasher
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, hasher PasswordHasher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		logger: logger,
	}
}

// Create validates dto, hashes the password and stores the account. A taken
// username is reported as ErrUsernameTaken whether it is caught by the
// lookup or by the unique index.
func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (*User, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByUsername(ctx, dto.Username)
	if err != nil {
		s.logger.Error("failed to look up username", "username", dto.Username, "error", err)
		return nil, internal.NewInternalError("failed to create user", err)
	}
	if existing != nil {
		return nil, internal.ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	row := &userDatamodel.User{
		Username:     dto.Username,
		PasswordHash: hash,
		Role:         dto.Role,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, internal.ErrUsernameTaken
		}
		s.logger.Error("failed to create user", "username", dto.Username, "error", err)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user created", "user_id", row.ID, "username", row.Username, "role", row.Role)
	return FromDataModel(row), nil
}

// GetByUsername returns nil without an error when no account matches.
func (s *Service) GetByUsername(ctx context.Context, username string) (*User, error) {
	row, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if row == nil {
		return nil, nil
	}
	return FromDataModel(row), nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if row == nil {
		return nil, internal.ErrUserNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewInternalError("failed to list users", err)
	}

	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		users = append(users, FromDataModel(row))
	}
	return users, nil
}
