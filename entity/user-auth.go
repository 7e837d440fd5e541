package entity

import (
	"errors"
	"net/http"

	"easyorders/internal/lib/validate"
)

// UserAuth is the authenticated actor of a request.
type UserAuth struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Roles []Role `json:"roles"`
}

func (u *UserAuth) LoggedIn() bool {
	return u != nil && u.ID > 0
}

func (u *UserAuth) Can(capability string) bool {
	if !u.LoggedIn() {
		return false
	}
	for _, r := range u.Roles {
		if r.Can(capability) {
			return true
		}
	}
	return false
}

func (u *UserAuth) CanManageOrders() bool {
	return u.Can(CapManageOrders)
}

// DisplayName falls back to the login when no display name is set.
func (u *UserAuth) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Login
}

var ErrUserNotFound = errors.New("user not found")

// User is a row of the host users table.
type User struct {
	UserAuth
	PasswordHash string
}

type LoginForm struct {
	Username string `json:"username" validate:"required,max=60"`
	Password string `json:"password" validate:"required,max=256"`
}

func (l *LoginForm) Bind(_ *http.Request) error {
	return validate.Struct(l)
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt string    `json:"expires_at"`
	User      *UserAuth `json:"user"`
}
