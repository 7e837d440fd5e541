package order

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

// UpdateStatus is the status action: {"data":{"order_id":1,"status":"completed"},"nonce":"..."}
func UpdateStatus(logger *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.order.UpdateStatus"

		log := logger.With(
			slog.String("op", op),
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

		var update entity.StatusUpdate
		if err = request.DecodeData(req, r, &update); err != nil {
			log.Warn("invalid status update", sl.Err(err))
			fail(w, r, apierrors.NewValidationError("Invalid order ID or status"))
			return
		}
		update.Nonce = req.Nonce
		update.RemoteIP = cont.GetClientIP(r.Context())

		change, err := core.UpdateOrderStatus(r.Context(), cont.GetUser(r.Context()), &update)
		if err != nil {
			log.With(
				slog.Int64("order_id", update.OrderID),
				sl.Err(err),
			).Debug("status update rejected")
			fail(w, r, err)
			return
		}

		render.JSON(w, r, response.OkWithMessage(change, "Order status updated successfully"))
	}
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := response.FromError(err)
	render.Status(r, status)
	render.JSON(w, r, resp)
}
