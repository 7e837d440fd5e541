package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"easyorders/entity"
	"easyorders/internal/auth"
	apierrors "easyorders/internal/lib/errors"
	"easyorders/internal/lib/sl"
	"easyorders/internal/security"
)

func (c *Core) AuthenticateByToken(token string) (*entity.UserAuth, error) {
	if token == "" {
		return nil, fmt.Errorf("token not provided")
	}
	if c.tokens == nil {
		return nil, fmt.Errorf("token issuer not set")
	}
	return c.tokens.ParseSession(token)
}

// Login checks the credentials against the users table and issues a session
// token.
func (c *Core) Login(ctx context.Context, form *entity.LoginForm, remoteIP string) (*entity.Session, error) {
	if c.users == nil || c.tokens == nil {
		return nil, apierrors.NewServiceUnavailableError("authentication")
	}
	log := c.log.With(slog.String("login", form.Username))

	user, err := c.users.GetUserByLogin(ctx, form.Username)
	if err == nil {
		err = auth.CheckPassword(user.PasswordHash, form.Password)
	}
	if err != nil {
		if !errors.Is(err, auth.ErrBadCredentials) && !errors.Is(err, entity.ErrUserNotFound) {
			log.With(sl.Err(err)).Error("login")
			return nil, apierrors.NewInternalError("")
		}
		c.guard.LogSecurityEvent(ctx, security.EventLoginFailed, nil, remoteIP, map[string]any{"login": form.Username})
		if c.metrics != nil {
			c.metrics.LoginAttempt(false)
		}
		return nil, apierrors.NewUnauthorizedError("Invalid username or password")
	}

	token, expires, err := c.tokens.IssueSession(&user.UserAuth)
	if err != nil {
		log.With(sl.Err(err)).Error("issue session")
		return nil, apierrors.NewInternalError("")
	}

	c.guard.LogSecurityEvent(ctx, security.EventLogin, &user.UserAuth, remoteIP, nil)
	if c.metrics != nil {
		c.metrics.LoginAttempt(true)
	}
	return &entity.Session{
		Token:     token,
		ExpiresAt: expires.In(c.loc).Format(time.RFC3339),
		User:      &user.UserAuth,
	}, nil
}
