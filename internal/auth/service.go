package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nkaumov/kurs-zakat/internal"
	sessionDatamodel "github.com/nkaumov/kurs-zakat/internal/core/datamodel/session"
	"github.com/nkaumov/kurs-zakat/internal/user"
)

// UserStore is the slice of the user service that authentication needs.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	Create(ctx context.Context, dto user.CreateUserDTO) (*user.User, error)
}

type SessionRepository interface {
	Create(ctx context.Context, s *sessionDatamodel.Session) error
	GetByID(ctx context.Context, id string) (*sessionDatamodel.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Service is the main auth service with dependencies
type Service struct {
	users      UserStore
	sessions   SessionRepository
	tokens     *JWTTokenGenerator
	hasher     *BcryptHasher
	sessionTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, used by tests to age sessions.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(users UserStore, sessions SessionRepository, tokens *JWTTokenGenerator, hasher *BcryptHasher, sessionTTL time.Duration, logger *slog.Logger, opts ...Option) *Service {
	if sessionTTL <= 0 {
		sessionTTL = internal.DefaultSessionTTL
	}
	s := &Service{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		hasher:     hasher,
		sessionTTL: sessionTTL,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authenticate checks the credentials. Unknown users and wrong passwords
// produce the same error.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*user.User, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	u, err := s.users.GetByUsername(ctx, dto.Username)
	if err != nil {
		return nil, err
	}
	if u == nil || !s.hasher.Compare(u.PasswordHash, dto.Password) {
		s.logger.Warn("login rejected", "username", dto.Username)
		return nil, internal.ErrInvalidCredentials
	}

	return u, nil
}

// StartSession stores a new session for u and returns the signed cookie
// value with its expiry.
func (s *Service) StartSession(ctx context.Context, u *user.User) (string, time.Time, error) {
	now := s.now()

	if n, err := s.sessions.DeleteExpired(ctx, now); err != nil {
		s.logger.Warn("failed to prune expired sessions", "error", err)
	} else if n > 0 {
		s.logger.Debug("pruned expired sessions", "count", n)
	}

	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Username:  u.Username,
		Role:      u.Role,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, ToDataModel(sess)); err != nil {
		return "", time.Time{}, internal.NewInternalError("failed to start session", err)
	}

	token, err := s.tokens.Generate(sess)
	if err != nil {
		return "", time.Time{}, internal.NewInternalError("failed to sign session", err)
	}

	s.logger.Info("session started", "user_id", u.ID, "role", u.Role)
	return token, sess.ExpiresAt, nil
}

// ResolveSession maps a cookie value back to the identity it was issued
// for. The session row must still exist and be unexpired.
func (s *Service) ResolveSession(ctx context.Context, token string) (*internal.Identity, error) {
	if token == "" {
		return nil, internal.ErrInvalidToken
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	row, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load session", err)
	}
	if row == nil {
		return nil, internal.ErrInvalidToken
	}

	sess := FromDataModel(row)
	if sess.UserID != claims.UserID {
		return nil, internal.ErrInvalidToken
	}
	if sess.Expired(s.now()) {
		if err := s.sessions.Delete(ctx, sess.ID); err != nil {
			s.logger.Warn("failed to delete expired session", "session_id", sess.ID, "error", err)
		}
		return nil, internal.ErrSessionExpired
	}

	return sess.Identity(), nil
}

// EndSession removes the session behind token. Unknown or malformed tokens
// are ignored so logout always succeeds.
func (s *Service) EndSession(ctx context.Context, token string) error {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil {
		return internal.NewInternalError("failed to end session", err)
	}
	s.logger.Info("session ended", "user_id", claims.UserID)
	return nil
}

func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*user.User, error) {
	return s.users.Create(ctx, dto)
}

// LandingPath is where a freshly signed-in user is sent.
func LandingPath(role internal.Role) string {
	if role == internal.RoleManager {
		return "/manager"
	}
	return "/requests"
}
