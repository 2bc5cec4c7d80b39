// Package serializer converts between wire representations and database
// models. Inputs validate with per-field errors, outputs list their fields
// explicitly so nothing sensitive can leak by accident
package serializer

import (
	"vidshare/media-api/internal/model"
	"vidshare/media-api/pkg/validators"

	"github.com/gin-gonic/gin"
)

// RegisterInput is the request body for user registration. The password is
// write-only: it's accepted here and never appears in any output shape
type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// Validate returns one error message per invalid field
func (in *RegisterInput) Validate() map[string]string {
	errs := make(map[string]string)

	if err := validators.UsernameValidator(in.Username); err != nil {
		errs["username"] = err.Error()
	}
	if err := validators.PasswordValidator(in.Password); err != nil {
		errs["password"] = err.Error()
	}
	if err := validators.EmailValidator(in.Email); err != nil {
		errs["email"] = err.Error()
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// LoginInput is the request body for login
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (in *LoginInput) Validate() map[string]string {
	errs := make(map[string]string)

	if in.Username == "" {
		errs["username"] = validators.ErrUsernameEmpty.Error()
	}
	if in.Password == "" {
		errs["password"] = validators.ErrPasswordEmpty.Error()
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// UserOut is the public shape of a user record
func UserOut(u *model.User) gin.H {
	return gin.H{
		"username": u.Username,
		"email":    u.Email,
	}
}
