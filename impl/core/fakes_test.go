package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"easyorders/entity"
	"easyorders/internal/config"
)

type fakeOrders struct {
	orders  map[int64]*entity.Order
	getErr  error
	queries []*entity.OrderQuery
	result  []*entity.Order
	ids     []int64
	updates []string
}

func newFakeOrders(orders ...*entity.Order) *fakeOrders {
	f := &fakeOrders{orders: map[int64]*entity.Order{}}
	for _, o := range orders {
		f.orders[o.ID] = o
	}
	return f
}

func (f *fakeOrders) GetOrder(_ context.Context, id int64) (*entity.Order, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	o, ok := f.orders[id]
	if !ok {
		return nil, entity.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) QueryOrders(_ context.Context, q *entity.OrderQuery) ([]*entity.Order, error) {
	f.queries = append(f.queries, q)
	return f.result, nil
}

func (f *fakeOrders) QueryOrderIDs(_ context.Context, q *entity.OrderQuery) ([]int64, error) {
	f.queries = append(f.queries, q)
	return f.ids, nil
}

func (f *fakeOrders) UpdateOrderStatus(_ context.Context, id int64, status, note string) error {
	o, ok := f.orders[id]
	if !ok {
		return entity.ErrOrderNotFound
	}
	o.Status = status
	f.updates = append(f.updates, note)
	return nil
}

type fakeOptions struct {
	values map[string]string
	err    error
}

func newFakeOptions() *fakeOptions {
	return &fakeOptions{values: map[string]string{}}
}

func (f *fakeOptions) GetOption(_ context.Context, name string) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	v, ok := f.values[name]
	return v, ok, nil
}

func (f *fakeOptions) UpdateOption(_ context.Context, name, value string) error {
	f.values[name] = value
	return nil
}

func (f *fakeOptions) DeleteOption(_ context.Context, name string) error {
	delete(f.values, name)
	return nil
}

type fakeActivity struct {
	entries []*entity.LogEntry
	addErr  error
}

func (f *fakeActivity) AddLog(_ context.Context, entry *entity.LogEntry) error {
	if f.addErr != nil {
		return f.addErr
	}
	entry.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeActivity) GetLogs(_ context.Context, offset, limit int) ([]*entity.LogEntry, error) {
	if offset >= len(f.entries) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.entries) {
		end = len(f.entries)
	}
	return f.entries[offset:end], nil
}

func (f *fakeActivity) CountLogs(_ context.Context) (int, error) {
	return len(f.entries), nil
}

const validNonce = "valid-nonce"

type fakeTokens struct {
	sessions map[string]*entity.UserAuth
}

func (f *fakeTokens) IssueSession(user *entity.UserAuth) (string, time.Time, error) {
	return "session-" + user.Login, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

func (f *fakeTokens) ParseSession(token string) (*entity.UserAuth, error) {
	if u, ok := f.sessions[token]; ok {
		return u, nil
	}
	return nil, errors.New("invalid token")
}

func (f *fakeTokens) CreateNonce(action string, _ int64) (string, error) {
	return "nonce-" + action, nil
}

func (f *fakeTokens) VerifyNonce(nonce, _ string, _ int64) error {
	if nonce != validNonce {
		return errors.New("invalid nonce")
	}
	return nil
}

type memCounters struct {
	mu     sync.Mutex
	data   map[string]int
	expiry map[string]time.Time
	writes int
}

func newMemCounters() *memCounters {
	return &memCounters{data: map[string]int{}, expiry: map[string]time.Time{}}
}

func (m *memCounters) GetCounter(_ context.Context, key string) (int, time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count, ok := m.data[key]
	return count, m.expiry[key], ok, nil
}

func (m *memCounters) SetCounter(_ context.Context, key string, count int, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.data[key] = count
	m.expiry[key] = expires
	return nil
}

func (m *memCounters) DeleteCounters(_ context.Context, prefix string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			delete(m.data, key)
			delete(m.expiry, key)
			n++
		}
	}
	return n, nil
}

type fakeFeed struct {
	changes []*entity.StatusChange
}

func (f *fakeFeed) Broadcast(change *entity.StatusChange) {
	f.changes = append(f.changes, change)
}

type fakeMetrics struct {
	updated  int
	rejected map[string]int
	logins   map[bool]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{rejected: map[string]int{}, logins: map[bool]int{}}
}

func (f *fakeMetrics) StatusUpdated(_, _ string)    { f.updated++ }
func (f *fakeMetrics) StatusRejected(reason string) { f.rejected[reason]++ }
func (f *fakeMetrics) LoginAttempt(success bool)    { f.logins[success]++ }

type fakeUsers struct {
	users map[string]*entity.User
}

func (f *fakeUsers) GetUserByLogin(_ context.Context, login string) (*entity.User, error) {
	if u, ok := f.users[login]; ok {
		return u, nil
	}
	return nil, entity.ErrUserNotFound
}

type testEnv struct {
	core     *Core
	orders   *fakeOrders
	options  *fakeOptions
	activity *fakeActivity
	counters *memCounters
	feed     *fakeFeed
	metrics  *fakeMetrics
}

func testConfig() *config.Config {
	conf := &config.Config{Location: "UTC", Debug: true}
	conf.RateLimit.Limit = 10
	conf.RateLimit.Window = time.Minute
	conf.Columns.CustomFields = map[string]string{"gift_note": "Gift Note"}
	return conf
}

func newTestEnv(conf *config.Config, orders ...*entity.Order) *testEnv {
	env := &testEnv{
		orders:   newFakeOrders(orders...),
		options:  newFakeOptions(),
		activity: &fakeActivity{},
		counters: newMemCounters(),
		feed:     &fakeFeed{},
		metrics:  newFakeMetrics(),
	}
	c := New(slog.New(slog.NewTextHandler(io.Discard, nil)), conf)
	c.SetOrderStore(env.orders)
	c.SetConfigStore(env.options)
	c.SetActivityLog(env.activity)
	c.SetTokenIssuer(&fakeTokens{})
	c.SetCounterStore(env.counters)
	c.SetBroadcaster(env.feed)
	c.SetMetrics(env.metrics)
	env.core = c
	return env
}

var (
	admin = &entity.UserAuth{ID: 1, Login: "admin", Name: "Site Admin", Roles: []entity.Role{entity.RoleAdministrator}}
	shop  = &entity.UserAuth{ID: 2, Login: "shop", Roles: []entity.Role{entity.RoleShopManager}}
	guest = &entity.UserAuth{}
	buyer = &entity.UserAuth{ID: 3, Login: "buyer", Roles: []entity.Role{entity.RoleCustomer}}
)
