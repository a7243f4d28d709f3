package connectors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Sender делает один вызов модели. Реализуют GeminiClient, MockTransport и Guard.
type Sender interface {
	Send(ctx context.Context, prompt string, jsonMode bool, credential string) (string, error)
}

type GuardSettings struct {
	RatePerSecond    float64
	Burst            int
	FailureThreshold uint32        // Сколько неудач подряд открывают предохранитель
	OpenTimeout      time.Duration // Через сколько CB попробует "закрыться"
}

// Guard ограничивает частоту вызовов и отсекает их, пока модель стабильно падает.
// Отмена и отсутствие ключа не считаются неудачей модели.
type Guard struct {
	next    Sender
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker
}

func NewGuard(next Sender, s GuardSettings, logger *zap.Logger) *Guard {
	if s.RatePerSecond <= 0 {
		s.RatePerSecond = 1
	}
	if s.Burst <= 0 {
		s.Burst = 1
	}
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}
	log := logger.Named("guard")

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !IsRetryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Guard{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(s.RatePerSecond), s.Burst),
		cb:      cb,
	}
}

func (g *Guard) Send(ctx context.Context, prompt string, jsonMode bool, credential string) (string, error) {
	// 1. Rate Limiting. Ожидание прерывается отменой
	if err := g.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		}
		return "", fmt.Errorf("rate limit exceeded: %w", err)
	}

	// 2. Circuit Breaker
	res, err := g.cb.Execute(func() (interface{}, error) {
		return g.next.Send(ctx, prompt, jsonMode, credential)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("model temporarily unavailable: %w", err)
		}
		return "", err
	}
	return res.(string), nil
}

// State отдает текущее состояние предохранителя.
func (g *Guard) State() string {
	return g.cb.State().String()
}
