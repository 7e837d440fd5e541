package health

import (
	"net/http"

	"easyorders/internal/lib/api/response"

	"github.com/go-chi/render"
)

func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.OkWithMessage(map[string]string{"status": "ok"}, "Service is running"))
	}
}
