package throttle

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"easyorders/internal/lib/api/response"
	apierrors "easyorders/internal/lib/errors"
	"easyorders/internal/lib/sl"
	"easyorders/internal/lib/util"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"
)

// idleTTL is how long an address keeps its limiter after its last request.
const idleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter throttles inbound requests per client address with a token bucket.
type Limiter struct {
	rps   rate.Limit
	burst int

	mu       sync.Mutex
	visitors map[string]*visitor
	swept    time.Time
	now      func() time.Time
}

func NewLimiter(rps float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

// Allow reports whether the address may issue a request now.
func (l *Limiter) Allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.swept) > idleTTL {
		for key, v := range l.visitors {
			if now.Sub(v.lastSeen) > idleTTL {
				delete(l.visitors, key)
			}
		}
		l.swept = now
	}

	v, ok := l.visitors[addr]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[addr] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// New throttles by socket peer. Forwarded addresses count only when the peer
// is one of proxies.
func New(log *slog.Logger, limiter *Limiter, proxies util.Proxies) func(next http.Handler) http.Handler {
	logger := log.With(sl.Module("middleware.throttle"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr := proxies.PeerIP(r)
			if !limiter.Allow(addr) {
				logger.Debug("request throttled", slog.String("remote_addr", addr))
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.ErrorFromAPIError(apierrors.NewRateLimitError(1)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
