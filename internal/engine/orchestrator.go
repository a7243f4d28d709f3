package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xela07ax/cyberinvest-pro/internal/audit"
	"github.com/xela07ax/cyberinvest-pro/internal/connectors"
	"github.com/xela07ax/cyberinvest-pro/internal/domain"
	"github.com/xela07ax/cyberinvest-pro/internal/notify"
	"github.com/xela07ax/cyberinvest-pro/internal/parser"
	"github.com/xela07ax/cyberinvest-pro/internal/prompt"
)

var (
	// ErrBusy — анализ уже идет, новый не запускаем.
	ErrBusy = errors.New("an analysis is already running")
	// ErrAllocationRequired — predictive-анализ доступен только после успешного allocation.
	ErrAllocationRequired = errors.New("run the investment analysis before the predictive analysis")
	// ErrInvalidRequest — параметры анализа не прошли проверку.
	ErrInvalidRequest = errors.New("invalid analysis request")
)

const SuccessMessage = "Analysis completed successfully!"

// Renderer — получатель опубликованных результатов (дашборд).
type Renderer interface {
	RenderDashboard(metrics domain.DashboardMetrics, initiatives []domain.Initiative, budget int64)
	RenderRiskCards(assessment domain.RiskAssessment)
}

type RunJournal interface {
	Log(event audit.RunEvent)
}

type RunStatus string

const (
	StatusSucceeded RunStatus = "succeeded"
	StatusFailed    RunStatus = "failed"
	StatusCancelled RunStatus = "cancelled"
)

type Outcome struct {
	RunID      string
	Kind       domain.AnalysisKind
	Status     RunStatus
	Attempts   uint
	Allocation *domain.AllocationResult
	Risk       domain.RiskAssessment
	Err        error
}

// Deps собирает зависимости оркестратора. Journal может быть nil.
type Deps struct {
	Runner   *Runner
	State    *RunState
	Renderer Renderer
	Notifier notify.Notifier
	Journal  RunJournal
	Metrics  *Metrics
	Logger   *zap.Logger

	RequireAllocationFirst bool
}

// Orchestrator проводит один анализ от промпта до публикации результата.
type Orchestrator struct {
	runner   *Runner
	state    *RunState
	renderer Renderer
	notifier notify.Notifier
	journal  RunJournal
	metrics  *Metrics
	logger   *zap.Logger

	requireAllocationFirst bool
}

func NewOrchestrator(d Deps) *Orchestrator {
	if d.Metrics == nil {
		d.Metrics = NewMetrics(nil)
	}
	return &Orchestrator{
		runner:                 d.Runner,
		state:                  d.State,
		renderer:               d.Renderer,
		notifier:               d.Notifier,
		journal:                d.Journal,
		metrics:                d.Metrics,
		logger:                 d.Logger.Named("orchestrator"),
		requireAllocationFirst: d.RequireAllocationFirst,
	}
}

// Start проверяет запрос, занимает токен и запускает анализ в отдельной горутине.
// Канал отдает ровно один Outcome и закрывается. Пока анализ идет, новые получают ErrBusy.
func (o *Orchestrator) Start(parent context.Context, req domain.AnalysisRequest, credential string) (<-chan Outcome, string, error) {
	// 1. Проверка входных данных
	if err := req.Validate(); err != nil {
		o.metrics.ErrorTotal.WithLabelValues("validation").Inc()
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if req.Kind == domain.KindPredictive && o.requireAllocationFirst && !o.state.HasRun() {
		o.metrics.ErrorTotal.WithLabelValues("allocation_required").Inc()
		return nil, "", ErrAllocationRequired
	}

	// 2. Новый токен отмены на каждый запуск
	ctx, cancel := context.WithCancel(parent)
	run := &ActiveRun{
		ID:        uuid.New().String(),
		Kind:      req.Kind,
		StartedAt: time.Now(),
		cancel:    cancel,
	}
	if !o.state.TryAcquire(run) {
		cancel()
		o.metrics.ErrorTotal.WithLabelValues("busy").Inc()
		return nil, "", ErrBusy
	}
	o.metrics.ActiveRun.Set(1)

	text := prompt.Build(req.Kind, req)

	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		out <- o.execute(ctx, run, req, text, credential)
	}()
	return out, run.ID, nil
}

// Analyze синхронно ждет итог Start.
func (o *Orchestrator) Analyze(ctx context.Context, req domain.AnalysisRequest, credential string) (Outcome, error) {
	ch, _, err := o.Start(ctx, req, credential)
	if err != nil {
		return Outcome{}, err
	}
	return <-ch, nil
}

// Cancel отменяет текущий анализ. false, если отменять нечего.
func (o *Orchestrator) Cancel() (string, bool) {
	return o.state.Cancel()
}

func (o *Orchestrator) Active() (ActiveRun, bool) {
	return o.state.Active()
}

func (o *Orchestrator) execute(ctx context.Context, run *ActiveRun, req domain.AnalysisRequest, text, credential string) (outcome Outcome) {
	log := o.logger.With(zap.String("run_id", run.ID), zap.String("kind", string(req.Kind)))
	outcome = Outcome{RunID: run.ID, Kind: req.Kind}

	// Уборка выполняется при любом исходе
	defer func() {
		run.cancel()
		o.state.Release(run.ID)
		o.metrics.ActiveRun.Set(0)
		o.record(ctx, run, req, outcome)
	}()

	log.Info("analysis started", zap.Int("assets", len(req.Inventory)))

	// 1. Вызов модели с повторами
	res, err := o.runner.Run(ctx, text, true, credential)
	outcome.Attempts = res.Attempts

	// 2. Разбор ответа
	var parsed parser.Result
	if err == nil {
		parsed, err = parser.Parse(req.Kind, res.Text)
	}

	// 3. Отмена могла прийти уже после ответа модели: тогда ничего не публикуем
	if err == nil && ctx.Err() != nil {
		err = connectors.ErrCancelled
	}

	if err != nil {
		outcome.Err = err
		if errors.Is(err, connectors.ErrCancelled) {
			outcome.Status = StatusCancelled
			log.Info("analysis cancelled", zap.Uint("attempts", res.Attempts))
			return outcome
		}
		outcome.Status = StatusFailed
		o.fail(ctx, log, req.Kind, err)
		return outcome
	}

	// 4. Публикация
	outcome.Status = StatusSucceeded
	switch req.Kind {
	case domain.KindPredictive:
		outcome.Risk = parsed.Risk
		o.state.PublishRisk(parsed.Risk)
		o.renderer.RenderRiskCards(parsed.Risk)
	default:
		alloc := *parsed.Allocation
		alloc.Metrics = alloc.Metrics.WithInventoryFallback(req.Inventory)
		outcome.Allocation = &alloc

		o.state.PublishAllocation(alloc, req.BudgetMinorUnits)
		o.renderer.RenderDashboard(alloc.Metrics, alloc.Initiatives, req.BudgetMinorUnits)
		o.notifier.Notify(ctx, SuccessMessage, notify.SeveritySuccess)
	}

	log.Info("analysis completed", zap.Uint("attempts", res.Attempts))
	return outcome
}

// fail — одно уведомление на неудачный анализ; подробности только в логах и журнале.
func (o *Orchestrator) fail(ctx context.Context, log *zap.Logger, kind domain.AnalysisKind, err error) {
	switch {
	case errors.Is(err, connectors.ErrUnauthenticated):
		// Подсказку про ?apiKey= видят только логи и ответ API (401)
		o.metrics.ErrorTotal.WithLabelValues("unauthenticated").Inc()
	case errors.Is(err, parser.ErrMalformedJSON):
		o.metrics.ErrorTotal.WithLabelValues("malformed").Inc()
	case errors.Is(err, parser.ErrMissingFields):
		o.metrics.ErrorTotal.WithLabelValues("missing_fields").Inc()
	default:
		o.metrics.ErrorTotal.WithLabelValues("exhausted").Inc()
	}

	log.Error("analysis failed", zap.Error(err), zap.NamedError("cause", errors.Unwrap(err)))
	o.notifier.Notify(ctx, FailureMessage(kind), notify.SeverityError)
}

func (o *Orchestrator) record(ctx context.Context, run *ActiveRun, req domain.AnalysisRequest, outcome Outcome) {
	duration := time.Since(run.StartedAt)
	o.metrics.AnalysesTotal.WithLabelValues(string(req.Kind), string(outcome.Status)).Inc()
	o.metrics.AnalysisDuration.WithLabelValues(string(req.Kind), string(outcome.Status)).Observe(duration.Seconds())

	if o.journal == nil {
		return
	}
	event := audit.RunEvent{
		ID:          run.ID,
		TraceID:     ExtractTraceID(ctx),
		Kind:        string(req.Kind),
		Industry:    req.Industry,
		CompanySize: req.CompanySize,
		Budget:      req.BudgetMinorUnits,
		UsedAssets:  len(req.Inventory),
		Status:      statusLabel(outcome.Status),
		Attempts:    outcome.Attempts,
		Timestamp:   run.StartedAt,
		DurationMs:  duration.Milliseconds(),
	}
	if outcome.Err != nil {
		event.Error = outcome.Err.Error()
		var ex *ExhaustedError
		if errors.As(outcome.Err, &ex) && ex.Last != nil {
			event.Error = fmt.Sprintf("%s last error: %s", ex.Error(), ex.Last.Error())
		}
	}
	o.journal.Log(event)
}

// FailureMessage возвращает текст уведомления о неудачном анализе.
func FailureMessage(kind domain.AnalysisKind) string {
	return kind.OperationName() + " failed. Please try again."
}

func statusLabel(s RunStatus) string {
	switch s {
	case StatusSucceeded:
		return "SUCCEEDED"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return "FAILED"
	}
}
