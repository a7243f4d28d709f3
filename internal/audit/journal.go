package audit

/*
Файл journal.go реализует журнал запусков анализа.

- Non-blocking Logging: оркестратор только кладет событие в буферизированный канал,
  запись в БД не влияет на время ответа.
- Batching: события копятся в памяти и пишутся пачкой по таймеру
  или при достижении лимита (100 событий).
- Drain Pattern: Stop закрывает канал, воркер вычитывает остатки и делает
  финальный flush, так что при остановке сервиса события не теряются.
*/

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	defaultBufferSize    = 1000
	defaultFlushInterval = 500 * time.Millisecond
	batchSize            = 100
)

// Storage определяет, куда физически будут сохраняться события
type Storage interface {
	// WriteBatch сохраняет пачку событий за один раз
	WriteBatch(ctx context.Context, events []RunEvent) error
}

type Journal struct {
	ch       chan RunEvent // Буфер для асинхронности
	repo     Storage
	interval time.Duration
	fill     prometheus.Gauge // Заполненность буфера, может быть nil
	logger   *zap.Logger
	wg       sync.WaitGroup

	isClosed atomic.Bool
}

// NewJournal: нулевые bufferSize и interval заменяются дефолтами.
func NewJournal(repo Storage, bufferSize int, interval time.Duration, logger *zap.Logger, fill prometheus.Gauge) *Journal {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	if interval <= 0 {
		interval = defaultFlushInterval
	}
	return &Journal{
		ch:       make(chan RunEvent, bufferSize),
		repo:     repo,
		interval: interval,
		fill:     fill,
		logger:   logger.With(zap.String("mod", "journal")),
	}
}

func (j *Journal) Start() {
	j.wg.Add(1)
	go j.worker()
}

// Stop «запирает» вход в канал и ждет, пока воркер всё допишет.
func (j *Journal) Stop() {
	if j.isClosed.Swap(true) {
		return
	}

	// Даем крошечную паузу, чтобы текущие Log успели проскочить
	time.Sleep(10 * time.Millisecond)

	j.logger.Info("stopping journal: closing channel and flushing buffer...")
	close(j.ch)
	j.wg.Wait()
	j.logger.Info("journal stopped gracefully")
}

func (j *Journal) Log(event RunEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if j.isClosed.Load() {
		j.logger.Warn("run event dropped: journal is stopping", zap.String("id", event.ID))
		return
	}

	// Load Shedding: при переполнении не блокируем оркестратор
	select {
	case j.ch <- event:
		j.observeFill()
	default:
		j.logger.Error("journal_buffer_overflow",
			zap.String("run_id", event.ID),
			zap.String("status", event.Status),
		)
	}
}

func (j *Journal) observeFill() {
	if j.fill != nil {
		j.fill.Set(float64(len(j.ch)))
	}
}

func (j *Journal) worker() {
	defer j.wg.Done()

	batch := make([]RunEvent, 0, batchSize)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) > 0 {
			// Используем Background, так как основной контекст может быть уже закрыт
			if err := j.repo.WriteBatch(context.Background(), batch); err != nil {
				j.logger.Error("journal flush failed", zap.Error(err), zap.Int("events", len(batch)))
			}
			batch = batch[:0]
		}
		j.observeFill()
	}

	for {
		select {
		case event, ok := <-j.ch:
			if !ok {
				// Канал закрыт в Stop(): остатки уже вычитаны, делаем финальный сброс
				flush()
				j.logger.Info("journal worker finished")
				return
			}
			batch = append(batch, event)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// LogStorage пишет события в лог. Используется, когда БД не настроена.
type LogStorage struct {
	logger *zap.Logger
}

func NewLogStorage(logger *zap.Logger) *LogStorage {
	return &LogStorage{logger: logger.Named("journal")}
}

func (s *LogStorage) WriteBatch(_ context.Context, events []RunEvent) error {
	for _, e := range events {
		s.logger.Info("analysis run",
			zap.String("run_id", e.ID),
			zap.String("trace_id", e.TraceID),
			zap.String("kind", e.Kind),
			zap.String("status", e.Status),
			zap.Uint("attempts", e.Attempts),
			zap.Int64("duration_ms", e.DurationMs),
			zap.String("error", e.Error),
		)
	}
	return nil
}
