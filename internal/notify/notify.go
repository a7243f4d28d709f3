// Package notify доставляет пользовательские уведомления и детали анализа:
// в лог, в ленту последних уведомлений API и в Redis для внешних подписчиков.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

type Notification struct {
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

type Notifier interface {
	Notify(ctx context.Context, message string, severity Severity)
}

// Multi рассылает уведомление всем получателям по очереди.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, message string, severity Severity) {
	for _, n := range m {
		n.Notify(ctx, message, severity)
	}
}

// LogNotifier пишет уведомления в zap.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notify")}
}

func (n *LogNotifier) Notify(_ context.Context, message string, severity Severity) {
	fields := []zap.Field{zap.String("severity", string(severity))}
	if severity == SeverityError {
		n.logger.Warn(message, fields...)
		return
	}
	n.logger.Info(message, fields...)
}

const defaultFeedSize = 50

// Feed хранит последние уведомления для GET /api/v1/notifications.
type Feed struct {
	mu    sync.RWMutex
	items []Notification
	limit int
	now   func() time.Time
}

func NewFeed(limit int) *Feed {
	if limit <= 0 {
		limit = defaultFeedSize
	}
	return &Feed{limit: limit, now: time.Now}
}

func (f *Feed) Notify(_ context.Context, message string, severity Severity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, Notification{Message: message, Severity: severity, Timestamp: f.now()})
	if len(f.items) > f.limit {
		f.items = f.items[len(f.items)-f.limit:]
	}
}

// Recent возвращает уведомления, новые первыми.
func (f *Feed) Recent() []Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Notification, 0, len(f.items))
	for i := len(f.items) - 1; i >= 0; i-- {
		out = append(out, f.items[i])
	}
	return out
}
