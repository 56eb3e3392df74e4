// ABOUTME: Login and registration forms with their validation rules
// ABOUTME: Build trims input and returns the request the client sends

package forms

import (
	"strings"

	"github.com/arizayilmaz/voteverse/internal/client"
)

// LoginForm holds the sign-in fields
type LoginForm struct {
	UsernameOrEmail string `json:"username" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

// Build validates the form and returns the login request
func (f *LoginForm) Build() (*client.LoginRequest, error) {
	in := LoginForm{UsernameOrEmail: strings.TrimSpace(f.UsernameOrEmail), Password: f.Password}
	if err := check(&in); err != nil {
		return nil, err
	}
	return &client.LoginRequest{UsernameOrEmail: in.UsernameOrEmail, Password: in.Password}, nil
}

// RegisterForm holds the account creation fields
type RegisterForm struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
	FullName string `json:"fullName" validate:"max=100"`
}

// Build validates the form and returns the register request
func (f *RegisterForm) Build() (*client.RegisterRequest, error) {
	in := RegisterForm{
		Username: strings.TrimSpace(f.Username),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
		FullName: strings.TrimSpace(f.FullName),
	}
	if err := check(&in); err != nil {
		return nil, err
	}
	return &client.RegisterRequest{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		FullName: in.FullName,
	}, nil
}
