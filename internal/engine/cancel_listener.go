package engine

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/cyberinvest-pro/internal/infra"
)

// CancelListener принимает внешние сигналы отмены анализа через Redis Pub/Sub.
// Payload "*" отменяет текущий анализ, любой другой трактуется как ID запуска.
type CancelListener struct {
	rdb    *redis.Client
	state  *RunState
	logger *zap.Logger

	retryDelay time.Duration
}

func NewCancelListener(rdb *redis.Client, state *RunState, logger *zap.Logger) *CancelListener {
	return &CancelListener{
		rdb:        rdb,
		state:      state,
		logger:     logger.With(zap.String("mod", "cancel-listener")),
		retryDelay: 5 * time.Second,
	}
}

// Listen — "живучая" подписка: при обрыве переподключается, пока жив ctx.
func (l *CancelListener) Listen(ctx context.Context) {
	channel := infra.RedisChanAnalysisCancel
	for {
		pubsub := l.rdb.Subscribe(ctx, channel)

		// Проверка успешности подписки
		if _, err := pubsub.Receive(ctx); err != nil {
			pubsub.Close()
			if ctx.Err() != nil {
				return
			}
			l.logger.Error("failed to subscribe", zap.String("chan", channel), zap.Error(err))
			if !sleepCtx(ctx, l.retryDelay) {
				return
			}
			continue
		}
		l.logger.Info("cancel listener subscribed", zap.String("chan", channel))

		ch := pubsub.Channel()

	loop:
		for {
			select {
			case <-ctx.Done():
				pubsub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break loop // Канал закрыт, идем на переподключение
				}
				l.handleCancelSignal(msg.Payload)
			}
		}

		pubsub.Close()
		if !sleepCtx(ctx, time.Second) {
			return
		}
	}
}

// handleCancelSignal возвращает true, если анализ был отменен.
func (l *CancelListener) handleCancelSignal(payload string) bool {
	target := strings.TrimSpace(payload)
	if target == "" {
		l.logger.Warn("empty cancel signal ignored")
		return false
	}

	var (
		runID     string
		cancelled bool
	)
	if target == infra.CancelAll {
		runID, cancelled = l.state.Cancel()
	} else {
		runID, cancelled = target, l.state.CancelRun(target)
	}

	if cancelled {
		l.logger.Info("analysis cancelled by remote signal", zap.String("run_id", runID))
	} else {
		l.logger.Debug("cancel signal did not match an active run", zap.String("payload", target))
	}
	return cancelled
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
