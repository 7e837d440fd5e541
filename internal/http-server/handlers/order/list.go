package order

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"easyorders/entity"
	"easyorders/internal/lib/api/cont"
	"easyorders/internal/lib/api/response"
	"easyorders/internal/lib/sanitize"
	"easyorders/internal/lib/sl"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// ListOrders serves the orders page for the query
// ?paged=&wb_search=&wb_status=&wb_date_from=&wb_date_to=&orderby=&order=
func ListOrders(logger *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.With(
			sl.Module("handlers.order"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		filter := ParseFilter(r.URL.Query())
		page, err := core.ListOrders(r.Context(), cont.GetUser(r.Context()), filter)
		if err != nil {
			log.With(sl.Err(err)).Error("list orders")
			fail(w, r, err)
			return
		}

		render.JSON(w, r, response.OkWithPagination(page, page.Page, page.PerPage, page.Total))
	}
}

// ParseFilter reads the list filter from query values. Statuses may be
// repeated or comma separated.
func ParseFilter(q url.Values) entity.OrderFilter {
	filter := entity.OrderFilter{
		Page:          sanitize.PositiveInt(q.Get("paged"), 1),
		PageSize:      sanitize.PositiveInt(q.Get("per_page"), 0),
		SortField:     sanitize.Key(q.Get("orderby")),
		SortDirection: sanitize.Text(q.Get("order")),
		Search:        sanitize.Text(q.Get("wb_search")),
		DateFrom:      sanitize.Text(q.Get("wb_date_from")),
		DateTo:        sanitize.Text(q.Get("wb_date_to")),
	}
	for _, value := range q["wb_status"] {
		for _, s := range strings.Split(value, ",") {
			if s = sanitize.Key(s); s != "" {
				filter.Statuses = append(filter.Statuses, s)
			}
		}
	}
	return filter
}
