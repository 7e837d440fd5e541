package authenticate

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"easyorders/entity"
	"easyorders/internal/lib/api/cont"
	"easyorders/internal/lib/api/response"
	apierrors "easyorders/internal/lib/errors"
	"easyorders/internal/lib/sl"
	"easyorders/internal/lib/util"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Authenticate interface {
	AuthenticateByToken(token string) (*entity.UserAuth, error)
}

// New resolves the Bearer session token into the request actor and logs
// every request it guards.
func New(log *slog.Logger, auth Authenticate) func(next http.Handler) http.Handler {
	mod := sl.Module("middleware.authenticate")
	log.With(mod).Info("authenticate middleware initialized")

	return func(next http.Handler) http.Handler {

		fn := func(w http.ResponseWriter, r *http.Request) {
			// CORS preflight
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			id := middleware.GetReqID(r.Context())
			remote := util.ClientIP(r)
			logger := log.With(
				mod,
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", remote),
				slog.String("request_id", id),
			)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			t1 := time.Now()
			defer func() {
				logger.With(
					slog.Int("status", ww.Status()),
					slog.Int("size", ww.BytesWritten()),
					slog.Float64("duration", time.Since(t1).Seconds()),
				).Info("incoming request")
			}()

			header := r.Header.Get("Authorization")
			if len(header) == 0 {
				logger = logger.With(sl.Err(fmt.Errorf("authorization header not found")))
				authFailed(ww, r, "Authorization header not found")
				return
			}
			token, _ := strings.CutPrefix(header, "Bearer ")
			if token == header || strings.TrimSpace(token) == "" {
				logger = logger.With(sl.Err(fmt.Errorf("token not found")))
				authFailed(ww, r, "Token not found")
				return
			}
			logger = logger.With(sl.Secret("token", token))

			if auth == nil {
				authFailed(ww, r, "Unauthorized: authentication not enabled")
				return
			}

			user, err := auth.AuthenticateByToken(token)
			if err != nil || !user.LoggedIn() {
				if err != nil {
					logger = logger.With(sl.Err(err))
				}
				authFailed(ww, r, "Unauthorized: invalid or expired session")
				return
			}
			logger = logger.With(
				slog.String("user", user.Login),
				slog.Int64("user_id", user.ID),
			)
			ctx := cont.PutUser(r.Context(), user)
			ctx = cont.PutClientIP(ctx, remote)

			ww.Header().Set("X-Request-ID", id)
			ww.Header().Set("X-User", user.Login)
			next.ServeHTTP(ww, r.WithContext(ctx))
		}

		return http.HandlerFunc(fn)
	}
}

func authFailed(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, response.ErrorFromAPIError(apierrors.NewUnauthorizedError(message)))
}
