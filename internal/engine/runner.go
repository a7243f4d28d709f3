package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v5"
	"go.uber.org/zap"

	"github.com/xela07ax/cyberinvest-pro/internal/connectors"
)

const (
	DefaultMaxRetries uint = 2
	DefaultBackoff         = 4 * time.Second
)

// ExhaustedError — все попытки исчерпаны. Last — ошибка последней попытки (для логов и журнала).
type ExhaustedError struct {
	Attempts uint
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("Failed after %d attempts.", e.Attempts)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Runner повторяет вызов модели с постоянной паузой между попытками.
// Один Runner обслуживает один анализ за раз: параллельные Run выполняются по очереди.
type Runner struct {
	transport  connectors.Sender
	maxRetries uint
	backoff    time.Duration
	logger     *zap.Logger
	metrics    *Metrics

	mu sync.Mutex
}

func NewRunner(transport connectors.Sender, maxRetries uint, backoff time.Duration, logger *zap.Logger, metrics *Metrics) *Runner {
	if backoff < 0 {
		backoff = DefaultBackoff
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Runner{
		transport:  transport,
		maxRetries: maxRetries,
		backoff:    backoff,
		logger:     logger.Named("runner"),
		metrics:    metrics,
	}
}

type RunResult struct {
	Text     string
	Attempts uint
}

// Run делает до maxRetries+1 вызовов транспорта.
// Ошибки: connectors.ErrCancelled (отмена, без ожидания и без лишних попыток),
// connectors.ErrUnauthenticated (сразу, без повторов), *ExhaustedError.
func (r *Runner) Run(ctx context.Context, prompt string, jsonMode bool, credential string) (RunResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res RunResult

	retrier := retry.New(
		retry.Context(ctx),
		retry.Attempts(r.maxRetries+1),
		retry.LastErrorOnly(true),
		// Отмену и отсутствие ключа не повторяем. Ошибку, пришедшую уже после отмены, тоже
		retry.RetryIf(func(err error) bool {
			return ctx.Err() == nil && connectors.IsRetryable(err)
		}),
		// Постоянная пауза, без экспоненты и джиттера
		retry.DelayType(func(n uint, err error, config retry.DelayContext) time.Duration {
			r.metrics.BackoffsTotal.Inc()
			r.logger.Warn("model call failed, backing off",
				zap.Uint("attempt", n),
				zap.Duration("backoff", r.backoff),
				zap.Error(err))
			return r.backoff
		}),
	)

	err := retrier.Do(func() error {
		res.Attempts++
		text, callErr := r.transport.Send(ctx, prompt, jsonMode, credential)
		if callErr != nil {
			r.metrics.AttemptsTotal.WithLabelValues("failure").Inc()
			return callErr
		}
		r.metrics.AttemptsTotal.WithLabelValues("success").Inc()
		res.Text = text
		return nil
	})
	if err == nil {
		return res, nil
	}

	switch {
	case ctx.Err() != nil || connectors.IsCancelled(err):
		return res, connectors.ErrCancelled
	case errors.Is(err, connectors.ErrUnauthenticated):
		return res, connectors.ErrUnauthenticated
	default:
		return res, &ExhaustedError{Attempts: res.Attempts, Last: err}
	}
}
