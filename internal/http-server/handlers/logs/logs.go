package logs

import (
	"context"
	"log/slog"
	"net/http"

	"easyorders/entity"
	"easyorders/internal/lib/api/cont"
	"easyorders/internal/lib/api/response"
	"easyorders/internal/lib/sanitize"
	"easyorders/internal/lib/sl"

	"github.com/go-chi/render"
)

type Core interface {
	GetLogs(ctx context.Context, actor *entity.UserAuth, page int) (*entity.LogPage, error)
}

// List serves one page of the activity log, ?paged=N.
func List(logger *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := sanitize.PositiveInt(r.URL.Query().Get("paged"), 1)

		result, err := core.GetLogs(r.Context(), cont.GetUser(r.Context()), page)
		if err != nil {
			logger.With(sl.Module("handlers.logs"), sl.Err(err)).Error("get logs")
			status, resp := response.FromError(err)
			render.Status(r, status)
			render.JSON(w, r, resp)
			return
		}
		render.JSON(w, r, response.OkWithPagination(result, result.Page, result.PerPage, result.Total))
	}
}
