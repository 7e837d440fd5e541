package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"easyorders/internal/lib/sl"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
)

const queueSize = 100

// Janitor purges expired rate-limit counters on demand.
type Janitor interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// Subscribers reports the number of open live-feed connections.
type Subscribers interface {
	Count() int
}

type message struct {
	chatID int64
	text   string
}

// TgBot forwards warnings and security events to the shop admins and
// answers a few maintenance commands.
type TgBot struct {
	log         *slog.Logger
	api         *tgbotapi.Bot
	botUsername string
	adminIds    []int64
	minLogLevel slog.Level

	mu          sync.RWMutex
	adminLevels map[int64]slog.Level

	queue   chan message
	send    func(chatID int64, text string) error
	janitor Janitor
	feed    Subscribers
}

func NewTgBot(botName, apiKey string, adminIds []int64, log *slog.Logger) (*TgBot, error) {
	tgBot := newBot(botName, adminIds, log)

	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}
	tgBot.api = api
	tgBot.send = tgBot.sendMarkdown

	return tgBot, nil
}

func newBot(botName string, adminIds []int64, log *slog.Logger) *TgBot {
	// the first admin gets everything, the others warnings and up
	adminLevels := make(map[int64]slog.Level)
	for i, adminId := range adminIds {
		if i == 0 {
			adminLevels[adminId] = slog.LevelDebug
		} else {
			adminLevels[adminId] = slog.LevelWarn
		}
	}

	return &TgBot{
		log:         log.With(sl.Module("tgbot")),
		adminIds:    adminIds,
		botUsername: botName,
		minLogLevel: slog.LevelWarn,
		adminLevels: adminLevels,
		queue:       make(chan message, queueSize),
	}
}

func (t *TgBot) SetJanitor(janitor Janitor) {
	t.janitor = janitor
}

func (t *TgBot) SetSubscribers(feed Subscribers) {
	t.feed = feed
}

// Start delivers queued messages and polls for commands until ctx is done.
func (t *TgBot) Start(ctx context.Context) error {
	go t.deliver(ctx)

	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(b *tgbotapi.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			t.log.With(sl.Err(err)).Warn("handling update")
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})
	updater := ext.NewUpdater(dispatcher, nil)

	dispatcher.AddHandler(handlers.NewCommand("level", t.level))
	dispatcher.AddHandler(handlers.NewCommand("status", t.status))
	dispatcher.AddHandler(handlers.NewCommand("cleanup", t.cleanup))

	err := updater.StartPolling(t.api, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &tgbotapi.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &tgbotapi.RequestOpts{
				Timeout: time.Second * 10,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("start polling: %w", err)
	}
	t.log.Info("telegram bot started", slog.String("bot", t.botUsername))

	<-ctx.Done()
	updater.Stop()
	return nil
}

func (t *TgBot) deliver(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-t.queue:
			if err := t.send(msg.chatID, msg.text); err != nil {
				t.log.With(slog.Int64("id", msg.chatID), sl.Err(err)).Debug("sending message")
			}
		}
	}
}

// SetMinLogLevel sets the minimum log level for all admin notifications
func (t *TgBot) SetMinLogLevel(level slog.Level) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.minLogLevel = level
	for _, adminId := range t.adminIds {
		t.adminLevels[adminId] = level
	}
}

func (t *TgBot) SetAdminLogLevel(adminId int64, level slog.Level) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.adminLevels[adminId] = level
}

func (t *TgBot) adminLevel(adminId int64) slog.Level {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if level, ok := t.adminLevels[adminId]; ok {
		return level
	}
	return t.minLogLevel
}

func (t *TgBot) isAdmin(userId int64) bool {
	for _, adminId := range t.adminIds {
		if userId == adminId {
			return true
		}
	}
	return false
}

func (t *TgBot) level(b *tgbotapi.Bot, ctx *ext.Context) error {
	userId := ctx.EffectiveUser.Id
	if !t.isAdmin(userId) {
		_, err := ctx.EffectiveMessage.Reply(b, "You are not authorized to use this command.", nil)
		return err
	}
	t.enqueue(userId, t.levelCommand(userId, ctx.EffectiveMessage.Text))
	return nil
}

// levelCommand applies "/level [debug|info|warn|error]" and returns the reply.
func (t *TgBot) levelCommand(userId int64, text string) string {
	args := strings.Fields(text)
	if len(args) < 2 {
		return fmt.Sprintf("Your current log level: %s\nAvailable levels: debug, info, warn, error", t.adminLevel(userId))
	}

	level, ok := parseLevel(args[1])
	if !ok {
		return fmt.Sprintf("Invalid level: %s\nAvailable levels: debug, info, warn, error", args[1])
	}
	t.SetAdminLogLevel(userId, level)
	return fmt.Sprintf("Your log level set to: %s", level)
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return 0, false
}

func (t *TgBot) status(b *tgbotapi.Bot, ctx *ext.Context) error {
	userId := ctx.EffectiveUser.Id
	if !t.isAdmin(userId) {
		return nil
	}
	t.enqueue(userId, t.statusText())
	return nil
}

func (t *TgBot) statusText() string {
	subscribers := 0
	if t.feed != nil {
		subscribers = t.feed.Count()
	}
	return fmt.Sprintf("Order panel is running\nLive subscribers: %d", subscribers)
}

func (t *TgBot) cleanup(b *tgbotapi.Bot, ctx *ext.Context) error {
	userId := ctx.EffectiveUser.Id
	if !t.isAdmin(userId) {
		return nil
	}
	t.enqueue(userId, t.cleanupText(context.Background()))
	return nil
}

func (t *TgBot) cleanupText(ctx context.Context) string {
	if t.janitor == nil {
		return "Counter cleanup is not available"
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	n, err := t.janitor.CleanupExpired(ctx)
	if err != nil {
		return fmt.Sprintf("Cleanup failed: %v", err)
	}
	return fmt.Sprintf("Removed %d expired rate-limit counters", n)
}

func (t *TgBot) SendMessage(msg string) {
	t.SendMessageWithLevel(msg, t.minLogLevel)
}

// SendMessageWithLevel queues msg for every admin whose level admits it. It
// never blocks; messages are dropped while the queue is full.
func (t *TgBot) SendMessageWithLevel(msg string, level slog.Level) {
	for _, adminId := range t.adminIds {
		if level >= t.adminLevel(adminId) {
			t.enqueue(adminId, msg)
		}
	}
}

func (t *TgBot) enqueue(chatId int64, text string) {
	if text == "" {
		return
	}
	select {
	case t.queue <- message{chatID: chatId, text: text}:
	default:
	}
}

func (t *TgBot) sendMarkdown(chatId int64, text string) error {
	_, err := t.api.SendMessage(chatId, Sanitize(text), &tgbotapi.SendMessageOpts{
		ParseMode: "MarkdownV2",
	})
	if err == nil {
		return nil
	}
	t.log.With(slog.Int64("id", chatId)).Warn("sending message", sl.Err(err))
	_, err = t.api.SendMessage(chatId, text, &tgbotapi.SendMessageOpts{})
	return err
}

// Sanitize escapes the characters MarkdownV2 reserves.
func Sanitize(input string) string {
	const reservedChars = "\\_{}#+-.!|()[]=*>~`"

	var b strings.Builder
	b.Grow(len(input))
	for _, char := range input {
		if strings.ContainsRune(reservedChars, char) {
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
