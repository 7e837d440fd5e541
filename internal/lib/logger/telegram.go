package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type MessageSender interface {
	SendMessageWithLevel(msg string, level slog.Level)
}

// TelegramHandler mirrors records at or above minLevel to a chat bot and
// always passes them on to the wrapped handler.
type TelegramHandler struct {
	next     slog.Handler
	sender   MessageSender
	minLevel slog.Level
	attrs    []slog.Attr
}

func SetupTelegramHandler(log *slog.Logger, sender MessageSender, minLevel slog.Level) *slog.Logger {
	return slog.New(NewTelegramHandler(log.Handler(), sender, minLevel))
}

func NewTelegramHandler(next slog.Handler, sender MessageSender, minLevel slog.Level) *TelegramHandler {
	return &TelegramHandler{
		next:     next,
		sender:   sender,
		minLevel: minLevel,
	}
}

func (h *TelegramHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level) || (h.sender != nil && level >= h.minLevel)
}

func (h *TelegramHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.sender != nil && r.Level >= h.minLevel {
		h.sender.SendMessageWithLevel(format(r, h.attrs), r.Level)
	}
	if h.next.Enabled(ctx, r.Level) {
		return h.next.Handle(ctx, r)
	}
	return nil
}

func (h *TelegramHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &TelegramHandler{
		next:     h.next.WithAttrs(attrs),
		sender:   h.sender,
		minLevel: h.minLevel,
		attrs:    merged,
	}
}

func (h *TelegramHandler) WithGroup(name string) slog.Handler {
	return &TelegramHandler{
		next:     h.next.WithGroup(name),
		sender:   h.sender,
		minLevel: h.minLevel,
		attrs:    h.attrs,
	}
}

func format(r slog.Record, attrs []slog.Attr) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("*%s* %s", r.Level.String(), r.Message))
	for _, a := range attrs {
		b.WriteString(fmt.Sprintf("\n%s: %s", a.Key, a.Value.String()))
	}
	r.Attrs(func(a slog.Attr) bool {
		b.WriteString(fmt.Sprintf("\n%s: %s", a.Key, a.Value.String()))
		return true
	})
	return b.String()
}
