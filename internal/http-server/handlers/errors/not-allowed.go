package errors

import (
	"log/slog"
	"net/http"

	"easyorders/internal/lib/api/response"
	apierrors "easyorders/internal/lib/errors"

	"github.com/go-chi/render"
)

func NotAllowed(_ *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apiErr := apierrors.NewAPIError(apierrors.ErrCodeBadRequest, "Method not allowed", http.StatusMethodNotAllowed)

		render.Status(r, http.StatusMethodNotAllowed)
		render.JSON(w, r, response.ErrorFromAPIError(apiErr))
	}
}
