package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextIdentityKey ctxKey = "identity"

type Role string

const (
	RoleChef    Role = "chef"
	RoleManager Role = "manager"

	// RoleAny is accepted by the access guard to mean "any signed-in user".
	RoleAny Role = ""
)

func (r Role) Valid() bool {
	return r == RoleChef || r == RoleManager
}

// Identity is the resolved session owner attached to each request.
type Identity struct {
	SessionID string
	UserID    int64
	Username  string
	Role      Role
}

func (i *Identity) IsManager() bool {
	return i != nil && i.Role == RoleManager
}

func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	if ctx == nil {
		return nil, false
	}
	id, ok := ctx.Value(ContextIdentityKey).(*Identity)
	return id, ok && id != nil
}

func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ContextIdentityKey, id)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
