package errors

import (
	"log/slog"
	"net/http"

	"easyorders/internal/lib/api/response"
	apierrors "easyorders/internal/lib/errors"

	"github.com/go-chi/render"
)

func NotFound(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("route not found", slog.String("method", r.Method), slog.String("path", r.URL.Path))

		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.ErrorFromAPIError(apierrors.NewNotFoundError("Requested resource")))
	}
}
