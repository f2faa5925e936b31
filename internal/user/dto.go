package user

import (
	"strings"
	"time"

	"github.com/nkaumov/kurs-zakat/internal"
	"github.com/nkaumov/kurs-zakat/internal/core/common/validation"
)

// Roles lists the assignable roles in the order forms show them.
var Roles = []string{string(internal.RoleChef), string(internal.RoleManager)}

// CreateUserDTO is shared by self-registration and the manager's user form.
type CreateUserDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (d *CreateUserDTO) Normalize() {
	d.Username = strings.TrimSpace(d.Username)
	d.Role = strings.ToLower(strings.TrimSpace(d.Role))
}

func (d CreateUserDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("username", d.Username).Required().MinLength(3).MaxLength(64)
	v.Field("password", d.Password).Required().MinLength(4).MaxLength(72)
	v.Field("role", d.Role).Required().OneOf(internal.ErrCodeInvalidRole, Roles...)
	return v.Err()
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type UsersResponse struct {
	Users []UserResponse `json:"users"`
}
