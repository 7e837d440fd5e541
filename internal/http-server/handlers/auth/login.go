package auth

import (
	"context"
	"log/slog"
	"net/http"

	"easyorders/entity"
	"easyorders/internal/lib/api/response"
	apierrors "easyorders/internal/lib/errors"
	"easyorders/internal/lib/sl"
	"easyorders/internal/lib/util"

	"github.com/go-chi/render"
)

type Core interface {
	Login(ctx context.Context, form *entity.LoginForm, remoteIP string) (*entity.Session, error)
}

// Login exchanges {"username":"...","password":"..."} for a session token.
func Login(logger *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.With(sl.Module("handlers.auth"))

		var form entity.LoginForm
		if err := render.Bind(r, &form); err != nil {
			log.Debug("invalid login form", sl.Err(err))
			fail(w, r, apierrors.NewValidationError("Username and password are required"))
			return
		}

		session, err := core.Login(r.Context(), &form, util.ClientIP(r))
		if err != nil {
			fail(w, r, err)
			return
		}
		render.JSON(w, r, response.Ok(session))
	}
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := response.FromError(err)
	render.Status(r, status)
	render.JSON(w, r, resp)
}
