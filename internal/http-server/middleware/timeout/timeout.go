package timeout

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Timeout cancels the request context after seconds; non-positive values
// fall back to five seconds.
func Timeout(seconds int) func(next http.Handler) http.Handler {
	if seconds <= 0 {
		seconds = 5
	}
	return middleware.Timeout(time.Duration(seconds) * time.Second)
}
