package auth

import (
	"strings"

	"github.com/nkaumov/kurs-zakat/internal/core/common/validation"
	"github.com/nkaumov/kurs-zakat/internal/user"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("username", strings.TrimSpace(d.Username)).Required()
	v.Field("password", d.Password).Required()
	return v.Err()
}

// RegisterDTO follows the same rules as accounts created by a manager.
type RegisterDTO = user.CreateUserDTO

type LoginResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Redirect string `json:"redirect"`
}
