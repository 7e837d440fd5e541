package settings

import (
	"errors"
	"log/slog"
	"net/http"

	"easyorders/entity"
	"easyorders/internal/lib/api/cont"
	"easyorders/internal/lib/api/request"
	"easyorders/internal/lib/api/response"
	apierrors "easyorders/internal/lib/errors"
	"easyorders/internal/lib/sl"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

func Get(logger *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := core.SettingsView(r.Context(), cont.GetUser(r.Context()))
		if err != nil {
			logger.With(
				sl.Module("handlers.settings"),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				sl.Err(err),
			).Error("settings view")
			fail(w, r, err)
			return
		}
		render.JSON(w, r, response.Ok(view))
	}
}

// Save stores a settings submission:
// {"data":{"order_columns":{...},"orders_per_page":20,"status_labels":{...},"role_access":{...}},"nonce":"..."}
func Save(logger *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.With(
			sl.Module("handlers.settings"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		req, err := request.Decode(r)
		if err != nil {
			apiErr := apierrors.NewBadRequestError("Invalid request format")
			if errors.Is(err, request.ErrEmptyBody) {
				apiErr = apierrors.NewBadRequestError("Empty request body")
			}
			log.Warn("failed to decode request", sl.Err(err))
			fail(w, r, apiErr)
			return
		}

		var form entity.SettingsForm
		if err = request.DecodeData(req, r, &form); err != nil {
			log.Warn("invalid settings form", sl.Err(err))
			fail(w, r, apierrors.NewValidationError("Invalid settings data"))
			return
		}

		saved, err := core.SaveSettings(r.Context(), cont.GetUser(r.Context()), req.Nonce, cont.GetClientIP(r.Context()), &form)
		if err != nil {
			log.Debug("settings rejected", sl.Err(err))
			fail(w, r, err)
			return
		}
		render.JSON(w, r, response.OkWithMessage(saved, "Settings saved"))
	}
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := response.FromError(err)
	render.Status(r, status)
	render.JSON(w, r, resp)
}
