package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nkaumov/kurs-zakat/internal"
	sessionDatamodel "github.com/nkaumov/kurs-zakat/internal/core/datamodel/session"
)

// Session binds a cookie to a user until ExpiresAt.
type Session struct {
	ID        string
	UserID    int64
	Username  string
	Role      internal.Role
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s *Session) Identity() *internal.Identity {
	return &internal.Identity{
		SessionID: s.ID,
		UserID:    s.UserID,
		Username:  s.Username,
		Role:      s.Role,
	}
}

func ToDataModel(s *Session) *sessionDatamodel.Session {
	return &sessionDatamodel.Session{
		ID:        s.ID,
		UserID:    s.UserID,
		Username:  s.Username,
		Role:      string(s.Role),
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
	}
}

func FromDataModel(s *sessionDatamodel.Session) *Session {
	return &Session{
		ID:        s.ID,
		UserID:    s.UserID,
		Username:  s.Username,
		Role:      internal.Role(s.Role),
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
	}
}

// Claims is the signed cookie payload. The session row stays authoritative;
// the signature only stops forged session ids from reaching the store.
type Claims struct {
	SessionID string `json:"sid"`
	UserID    int64  `json:"uid"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	Secret []byte
}

func NewJWTTokenGenerator(secret string) *JWTTokenGenerator {
	return &JWTTokenGenerator{Secret: []byte(secret)}
}

// Generate signs the cookie value for s.
func (j *JWTTokenGenerator) Generate(s *Session) (string, error) {
	claims := &Claims{
		SessionID: s.ID,
		UserID:    s.UserID,
		Username:  s.Username,
		Role:      string(s.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(s.CreatedAt),
			Subject:   fmt.Sprint(s.UserID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// Validate checks the signature and expiry of tokenString.
func (j *JWTTokenGenerator) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrSessionExpired
		}
		return nil, internal.ErrInvalidToken.WithCause(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}
