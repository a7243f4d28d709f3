package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/cyberinvest-pro/internal/domain"
	"github.com/xela07ax/cyberinvest-pro/internal/infra"
)

const publishTimeout = 2 * time.Second

// RedisPublisher транслирует уведомления и детали анализа в Pub/Sub.
// Ошибки Redis только логируются: анализ от них не зависит.
type RedisPublisher struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisPublisher(rdb *redis.Client, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, logger: logger.With(zap.String("mod", "redis-notify"))}
}

func (p *RedisPublisher) Notify(ctx context.Context, message string, severity Severity) {
	payload, err := json.Marshal(Notification{Message: message, Severity: severity, Timestamp: time.Now()})
	if err != nil {
		p.logger.Error("failed to marshal notification", zap.Error(err))
		return
	}

	// Контекст запроса может быть уже отменен, публикуем в своем
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.rdb.Publish(pctx, infra.RedisChanNotifications, payload).Err(); err != nil {
		p.logger.Warn("failed to publish notification", zap.Error(err))
	}
}

// PublishDetails — наблюдатель RunState: кладет последние детали в ключ и публикует их в канал.
func (p *RedisPublisher) PublishDetails(details domain.AnalysisDetails) {
	payload, err := json.Marshal(details)
	if err != nil {
		p.logger.Error("failed to marshal details", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	pipe := p.rdb.TxPipeline()
	pipe.Set(ctx, infra.RedisKeyLastDetails, payload, 0)
	pipe.Publish(ctx, infra.RedisChanAnalysisDetails, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		p.logger.Warn("failed to publish analysis details", zap.Error(err))
	}
}
