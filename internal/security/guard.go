package security

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"easyorders/entity"
	"easyorders/internal/lib/sl"
)

const RateLimitPrefix = "eom_rate_limit_"

const (
	EventInvalidNonce         = "invalid_nonce"
	EventUnauthorizedUpdate   = "unauthorized_status_update"
	EventStatusUpdated        = "order_status_updated"
	EventRateLimited          = "rate_limit_exceeded"
	EventSettingsSaved        = "settings_saved"
	EventUnauthorizedSettings = "unauthorized_settings_update"
	EventLoginFailed          = "login_failed"
	EventLogin                = "login"
)

var infoEvents = map[string]bool{
	EventStatusUpdated: true,
	EventSettingsSaved: true,
	EventLogin:         true,
}

var ErrNotLoggedIn = errors.New("you must be logged in to perform this action")

// RateLimitError reports a throttled action and how long the window still runs.
type RateLimitError struct {
	Action string
	Wait   time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry in %d seconds", e.Action, e.WaitSeconds())
}

// WaitSeconds rounds the remaining window up to whole seconds, at least one.
func (e *RateLimitError) WaitSeconds() int {
	s := int(math.Ceil(e.Wait.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

// CounterStore keeps expiring integer counters. Expired counters must be
// reported as not found.
type CounterStore interface {
	GetCounter(ctx context.Context, key string) (count int, expires time.Time, found bool, err error)
	SetCounter(ctx context.Context, key string, count int, expires time.Time) error
}

type Guard struct {
	counters CounterStore
	log      *slog.Logger
	debug    bool
	now      func() time.Time
}

func NewGuard(counters CounterStore, log *slog.Logger, debug bool) *Guard {
	return &Guard{
		counters: counters,
		log:      log.With(sl.Module("security")),
		debug:    debug,
		now:      time.Now,
	}
}

// HasAccess grants administrators unconditionally and everybody else when
// one of their roles is flagged in access.
func HasAccess(user *entity.UserAuth, access entity.RoleAccess) bool {
	if !user.LoggedIn() {
		return false
	}
	for _, role := range user.Roles {
		if role == entity.RoleAdministrator {
			return true
		}
	}
	for _, role := range user.Roles {
		if access[role] {
			return true
		}
	}
	return false
}

func CounterKey(action string, userID int64) string {
	return fmt.Sprintf("%s%s_%d", RateLimitPrefix, action, userID)
}

// CheckRateLimit counts one attempt of action for actor inside a fixed window.
// The window opens with the first attempt and is not extended by later ones.
// The read and the write are separate store calls, so concurrent attempts can
// undercount.
func (g *Guard) CheckRateLimit(ctx context.Context, actor *entity.UserAuth, action string, limit int, window time.Duration) error {
	if !actor.LoggedIn() {
		return ErrNotLoggedIn
	}
	if g.counters == nil {
		return fmt.Errorf("rate limit: counter store not configured")
	}

	key := CounterKey(action, actor.ID)
	now := g.now()
	count, expires, found, err := g.counters.GetCounter(ctx, key)
	if err != nil {
		return fmt.Errorf("rate limit: read counter: %w", err)
	}
	if found && !expires.After(now) {
		found = false
	}

	if !found {
		if err = g.counters.SetCounter(ctx, key, 1, now.Add(window)); err != nil {
			return fmt.Errorf("rate limit: open window: %w", err)
		}
		return nil
	}

	if count >= limit {
		return &RateLimitError{Action: action, Wait: expires.Sub(now)}
	}

	if err = g.counters.SetCounter(ctx, key, count+1, expires); err != nil {
		return fmt.Errorf("rate limit: increment: %w", err)
	}
	return nil
}

// LogSecurityEvent records an audit line when debug mode is on. Denials are
// logged at warn level so they reach the alert channel.
func (g *Guard) LogSecurityEvent(ctx context.Context, event string, actor *entity.UserAuth, ip string, data map[string]any) {
	if !g.debug {
		return
	}
	level := slog.LevelWarn
	if infoEvents[event] {
		level = slog.LevelInfo
	}

	username := "unknown"
	var userID int64
	if actor.LoggedIn() {
		username = actor.Login
		userID = actor.ID
	}

	g.log.LogAttrs(ctx, level, "security event",
		slog.String("event", event),
		slog.String("user", username),
		slog.Int64("user_id", userID),
		slog.String("ip", ip),
		slog.Any("data", data),
	)
}
