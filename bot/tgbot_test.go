package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"plain text no escaping", "Hello World", "Hello World"},
		{"underscore escaped", "order_status_updated", "order\\_status\\_updated"},
		{"dash escaped", "on-hold", "on\\-hold"},
		{"dot escaped", "10.0.0.1", "10\\.0\\.0\\.1"},
		{"brackets escaped", "[WARN] security event", "\\[WARN\\] security event"},
		{"quote and tilde escaped", "> ~`", "\\> \\~\\`"},
		{"backslash escaped", "path\\to", "path\\\\to"},
		{"mixed content", "Order #123: Total = 100.50 PLN", "Order \\#123: Total \\= 100\\.50 PLN"},
		{"unicode preserved", "Zamówienie gotowe", "Zamówienie gotowe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Sanitize(tt.input); result != tt.expected {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

type sent struct {
	chatID int64
	text   string
}

type outbox struct {
	mu   sync.Mutex
	msgs []sent
}

func (o *outbox) send(chatID int64, text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, sent{chatID, text})
	return nil
}

func (o *outbox) snapshot() []sent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]sent(nil), o.msgs...)
}

func testBot(admins ...int64) (*TgBot, *outbox) {
	b := newBot("eom_bot", admins, slog.New(slog.NewTextHandler(io.Discard, nil)))
	out := &outbox{}
	b.send = out.send
	return b, out
}

func TestSendMessageWithLevel(t *testing.T) {
	b, out := testBot(100, 200)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.deliver(ctx)

	b.SendMessageWithLevel("debug line", slog.LevelDebug)
	b.SendMessageWithLevel("security event", slog.LevelWarn)

	deadline := time.Now().Add(time.Second)
	for len(out.snapshot()) < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	got := out.snapshot()
	want := []sent{{100, "debug line"}, {100, "security event"}, {200, "security event"}}
	if len(got) != len(want) {
		t.Fatalf("sent = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSendMessageDropsWhenQueueFull(t *testing.T) {
	b, _ := testBot(1)
	for i := 0; i < queueSize+10; i++ {
		b.SendMessageWithLevel("x", slog.LevelError)
	}
	if len(b.queue) != queueSize {
		t.Errorf("queue length = %d, want %d", len(b.queue), queueSize)
	}
}

func TestLevelCommand(t *testing.T) {
	b, _ := testBot(100)

	if reply := b.levelCommand(100, "/level"); !strings.Contains(reply, "DEBUG") {
		t.Errorf("current level reply = %q", reply)
	}
	if reply := b.levelCommand(100, "/level loud"); !strings.HasPrefix(reply, "Invalid level") {
		t.Errorf("invalid level reply = %q", reply)
	}
	if reply := b.levelCommand(100, "/level ERROR"); reply != "Your log level set to: ERROR" {
		t.Errorf("set level reply = %q", reply)
	}
	if b.adminLevel(100) != slog.LevelError {
		t.Errorf("level = %v", b.adminLevel(100))
	}

	b.SetMinLogLevel(slog.LevelInfo)
	if b.adminLevel(100) != slog.LevelInfo || b.adminLevel(999) != slog.LevelInfo {
		t.Error("SetMinLogLevel not applied")
	}
}

type stubJanitor struct {
	n   int64
	err error
}

func (s stubJanitor) CleanupExpired(_ context.Context) (int64, error) {
	return s.n, s.err
}

type stubFeed int

func (s stubFeed) Count() int { return int(s) }

func TestMaintenanceReplies(t *testing.T) {
	b, _ := testBot(1)

	if got := b.cleanupText(context.Background()); got != "Counter cleanup is not available" {
		t.Errorf("no janitor = %q", got)
	}
	b.SetJanitor(stubJanitor{n: 4})
	if got := b.cleanupText(context.Background()); got != "Removed 4 expired rate-limit counters" {
		t.Errorf("cleanup = %q", got)
	}
	b.SetJanitor(stubJanitor{err: errors.New("mongo down")})
	if got := b.cleanupText(context.Background()); !strings.Contains(got, "mongo down") {
		t.Errorf("cleanup failure = %q", got)
	}

	b.SetSubscribers(stubFeed(3))
	if got := b.statusText(); !strings.HasSuffix(got, "Live subscribers: 3") {
		t.Errorf("status = %q", got)
	}
}
