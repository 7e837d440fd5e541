package access

import (
	"context"
	"log/slog"
	"net/http"

	"easyorders/entity"
	"easyorders/internal/lib/api/cont"
	"easyorders/internal/lib/api/response"
	apierrors "easyorders/internal/lib/errors"
	"easyorders/internal/lib/sl"
	"easyorders/internal/security"

	"github.com/go-chi/render"
)

type SettingsLoader interface {
	LoadSettings(ctx context.Context) (*entity.Settings, error)
}

// Gate admits actors that hold the order capability and whose role is
// granted in the current settings. Everybody else gets a 403.
func Gate(log *slog.Logger, settings SettingsLoader) func(next http.Handler) http.Handler {
	logger := log.With(sl.Module("middleware.access"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			user := cont.GetUser(r.Context())

			current, err := settings.LoadSettings(r.Context())
			if err != nil {
				logger.With(sl.Err(err)).Error("load settings")
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.ErrorFromAPIError(apierrors.NewInternalError("")))
				return
			}

			if !user.CanManageOrders() || !security.HasAccess(user, current.RoleAccess) {
				logger.Debug("access denied",
					slog.Int64("user_id", user.ID),
					slog.String("path", r.URL.Path),
				)
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.ErrorFromAPIError(
					apierrors.NewForbiddenError("You do not have sufficient permissions to access this page."),
				))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
