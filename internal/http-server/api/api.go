package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"easyorders/internal/config"
	"easyorders/internal/http-server/handlers/auth"
	"easyorders/internal/http-server/handlers/errors"
	"easyorders/internal/http-server/handlers/health"
	"easyorders/internal/http-server/handlers/logs"
	"easyorders/internal/http-server/handlers/order"
	"easyorders/internal/http-server/handlers/settings"
	"easyorders/internal/http-server/middleware/access"
	"easyorders/internal/http-server/middleware/authenticate"
	"easyorders/internal/http-server/middleware/headers"
	"easyorders/internal/http-server/middleware/observe"
	"easyorders/internal/http-server/middleware/throttle"
	"easyorders/internal/http-server/middleware/timeout"
	"easyorders/internal/lib/sl"
	"easyorders/internal/lib/util"
	"easyorders/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	access.SettingsLoader
	order.Core
	settings.Core
	logs.Core
	auth.Core
}

// Deps are the optional collaborators of the router. Nil members disable
// the routes they serve.
type Deps struct {
	Hub      *ws.Hub
	Observer observe.Observer
	Gatherer prometheus.Gatherer
	Proxies  util.Proxies
}

func NewRouter(conf *config.Config, log *slog.Logger, handler Handler, deps Deps) http.Handler {
	router := chi.NewRouter()
	router.Use(timeout.Timeout(conf.Http.Timeout))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(headers.Secure)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   conf.Http.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if deps.Observer != nil {
		router.Use(observe.Requests(deps.Observer))
	}
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Get("/health", health.Health())
	if deps.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	router.Group(func(r chi.Router) {
		r.Use(throttle.New(log, throttle.NewLimiter(conf.Http.RPS, conf.Http.Burst), deps.Proxies))

		r.Post("/auth/login", auth.Login(log, handler))
		if deps.Hub != nil {
			// the session token travels in the query string
			r.Get("/orders/events", ws.ServeWS(deps.Hub, handler))
		}

		r.Group(func(r chi.Router) {
			r.Use(authenticate.New(log, handler))

			r.Post("/orders/status", order.UpdateStatus(log, handler))

			r.Group(func(r chi.Router) {
				r.Use(access.Gate(log, handler))

				r.Get("/orders", order.ListOrders(log, handler))
				r.Get("/logs", logs.List(log, handler))
				r.Get("/settings", settings.Get(log, handler))
				r.Post("/settings", settings.Save(log, handler))
			})
		})
	})

	return router
}

// New serves the admin API until ctx is cancelled.
func New(ctx context.Context, conf *config.Config, log *slog.Logger, handler Handler, deps Deps) error {
	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:           NewRouter(conf, log, handler, deps),
		ErrorLog:          httpLog,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.httpServer.Shutdown(shutdownCtx); err != nil {
			server.log.With(sl.Err(err)).Error("shutdown")
		}
	}()

	server.log.Info("starting api server", slog.String("address", serverAddress))

	err = server.httpServer.Serve(listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
