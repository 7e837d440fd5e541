package core

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"easyorders/entity"
	"easyorders/internal/config"
	"easyorders/internal/lib/sl"
	"easyorders/internal/security"
)

// OrderStore is the host order storage.
type OrderStore interface {
	GetOrder(ctx context.Context, id int64) (*entity.Order, error)
	QueryOrders(ctx context.Context, q *entity.OrderQuery) ([]*entity.Order, error)
	QueryOrderIDs(ctx context.Context, q *entity.OrderQuery) ([]int64, error)
	UpdateOrderStatus(ctx context.Context, id int64, status, note string) error
}

// ConfigStore is the host option storage.
type ConfigStore interface {
	GetOption(ctx context.Context, name string) (string, bool, error)
	UpdateOption(ctx context.Context, name, value string) error
	DeleteOption(ctx context.Context, name string) error
}

type ActivityLog interface {
	AddLog(ctx context.Context, entry *entity.LogEntry) error
	GetLogs(ctx context.Context, offset, limit int) ([]*entity.LogEntry, error)
	CountLogs(ctx context.Context) (int, error)
}

type UserStore interface {
	GetUserByLogin(ctx context.Context, login string) (*entity.User, error)
}

type TokenIssuer interface {
	IssueSession(user *entity.UserAuth) (string, time.Time, error)
	ParseSession(token string) (*entity.UserAuth, error)
	CreateNonce(action string, userID int64) (string, error)
	VerifyNonce(nonce, action string, userID int64) error
}

type Broadcaster interface {
	Broadcast(change *entity.StatusChange)
}

type Metrics interface {
	StatusUpdated(from, to string)
	StatusRejected(reason string)
	LoginAttempt(success bool)
}

// Janitor purges expired rate-limit counters.
type Janitor interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// CounterPurger drops rate-limit counters regardless of expiry.
type CounterPurger interface {
	DeleteCounters(ctx context.Context, prefix string) (int64, error)
}

type Schema interface {
	CreateTables(ctx context.Context) error
	DropTables(ctx context.Context) error
}

type Core struct {
	orders       OrderStore
	options      ConfigStore
	activity     ActivityLog
	users        UserStore
	tokens       TokenIssuer
	feed         Broadcaster
	metrics      Metrics
	janitor      Janitor
	purger       CounterPurger
	schema       Schema
	guard        *security.Guard
	statuses     []string
	customFields map[string]string
	strict       bool
	rateLimit    int
	rateWindow   time.Duration
	debug        bool
	loc          *time.Location
	base         *slog.Logger
	log          *slog.Logger
	stopCh       chan struct{}
}

func New(log *slog.Logger, conf *config.Config) *Core {
	statuses := conf.Statuses
	if len(statuses) == 0 {
		statuses = entity.DefaultStatuses
	}
	limit := conf.RateLimit.Limit
	if limit <= 0 {
		limit = entity.DefaultRateLimit
	}
	window := conf.RateLimit.Window
	if window <= 0 {
		window = entity.DefaultRateLimitWindow * time.Second
	}
	return &Core{
		base:         log,
		log:          log.With(sl.Module("core")),
		guard:        security.NewGuard(nil, log, conf.Debug),
		statuses:     statuses,
		customFields: conf.Columns.CustomFields,
		strict:       conf.Columns.Strict,
		rateLimit:    limit,
		rateWindow:   window,
		debug:        conf.Debug,
		loc:          conf.TimeLocation(),
		stopCh:       make(chan struct{}),
	}
}

func (c *Core) SetOrderStore(orders OrderStore) {
	c.orders = orders
}

func (c *Core) SetConfigStore(options ConfigStore) {
	c.options = options
}

func (c *Core) SetActivityLog(activity ActivityLog) {
	c.activity = activity
}

func (c *Core) SetUserStore(users UserStore) {
	c.users = users
}

func (c *Core) SetTokenIssuer(tokens TokenIssuer) {
	c.tokens = tokens
}

func (c *Core) SetBroadcaster(feed Broadcaster) {
	c.feed = feed
}

func (c *Core) SetMetrics(metrics Metrics) {
	c.metrics = metrics
}

func (c *Core) SetSchema(schema Schema) {
	c.schema = schema
}

// SetCounterStore backs rate limiting with store. When store can purge
// expired counters it is also used by the cleanup loop and by Uninstall.
func (c *Core) SetCounterStore(store security.CounterStore) {
	c.guard = security.NewGuard(store, c.base, c.debug)
	c.janitor, _ = store.(Janitor)
	c.purger, _ = store.(CounterPurger)
}

// Statuses returns the managed status keys in display order.
func (c *Core) Statuses() []string {
	return append([]string(nil), c.statuses...)
}

func (c *Core) Start() {
	// expired counters are purged at startup and every 12 hours
	go func() {
		ticker := time.NewTicker(12 * time.Hour)
		defer ticker.Stop()

		c.cleanupExpiredCounters()

		for {
			select {
			case <-c.stopCh:
				return
			case <-ticker.C:
				c.cleanupExpiredCounters()
			}
		}
	}()
}

func (c *Core) Stop() {
	close(c.stopCh)
}

func (c *Core) cleanupExpiredCounters() {
	if c.janitor == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := c.janitor.DeleteExpired(ctx); err != nil {
		c.log.With(sl.Err(err)).Warn("failed to cleanup expired counters")
	}
}

// CleanupExpired purges expired counters once and reports how many were removed.
func (c *Core) CleanupExpired(ctx context.Context) (int64, error) {
	if c.janitor == nil {
		return 0, nil
	}
	return c.janitor.DeleteExpired(ctx)
}

func (c *Core) isManagedStatus(status string) bool {
	for _, s := range c.statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (c *Core) customFieldKeys() []string {
	keys := make([]string, 0, len(c.customFields))
	for k := range c.customFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Core) observeRejected(reason string) {
	if c.metrics != nil {
		c.metrics.StatusRejected(reason)
	}
}
