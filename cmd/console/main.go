package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/xela07ax/cyberinvest-pro/internal/connectors"
	"github.com/xela07ax/cyberinvest-pro/internal/dashboard"
	"github.com/xela07ax/cyberinvest-pro/internal/domain"
	"github.com/xela07ax/cyberinvest-pro/internal/engine"
	"github.com/xela07ax/cyberinvest-pro/internal/infra"
	"github.com/xela07ax/cyberinvest-pro/internal/notify"
	"github.com/xela07ax/cyberinvest-pro/internal/parser"
	"github.com/xela07ax/cyberinvest-pro/internal/risk"
)

// Одноразовый запуск анализа из терминала. Результат — модель дашборда в JSON на stdout.
//
//	console --gemini.api_key=KEY --kind=allocation --industry=Retail --company-size=50-200 --budget=750000 --goal="reduce breaches"
func main() {
	// 1. Флаги. Ключи gemini.* и engine.* совпадают с ключами конфига
	flags := pflag.NewFlagSet("console", pflag.ExitOnError)
	flags.String("gemini.api_key", "", "Gemini API key (or GEMINI_API_KEY)")
	flags.Bool("gemini.mock", false, "answer with sample data instead of calling the model")
	flags.String("logger.format", "console", "log format (json, console)")
	kindFlag := flags.String("kind", string(domain.KindAllocation), "analysis kind: allocation or predictive")
	industry := flags.String("industry", "Technology", "industry")
	companySize := flags.String("company-size", "50-200", "company size (employees)")
	budget := flags.Int64("budget", domain.SampleBudget, "annual security budget, whole pounds")
	goal := flags.String("goal", "Reduce the likelihood of a data breach", "primary security goal")
	useInventory := flags.Bool("use-inventory", false, "include the default asset inventory in the prompt")
	_ = flags.Parse(os.Args[1:])

	cfg, err := infra.LoadConfig(flags)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	kind, err := domain.ParseKind(*kindFlag)
	if err != nil {
		logger.Fatal("bad --kind", zap.Error(err))
	}

	// Ctrl+C отменяет анализ
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 2. Сборка ядра (без Redis, журнала и HTTP)
	var transport connectors.Sender
	if cfg.Gemini.Mock {
		transport = connectors.NewMockTransport()
	} else {
		transport = connectors.NewGeminiClient(&http.Client{Timeout: cfg.Gemini.Timeout}, cfg.Gemini.BaseURL, cfg.Gemini.Model)
	}

	state := engine.NewRunState()
	board := dashboard.NewBoard(risk.NewAnalyzer(logger))
	sample, err := parser.ParseAllocation(domain.SampleAnalysisJSON)
	if err != nil {
		logger.Fatal("sample analysis is broken", zap.Error(err))
	}
	state.Bootstrap(sample, domain.SampleBudget)
	board.RenderDashboard(sample.Metrics, sample.Initiatives, domain.SampleBudget)

	orch := engine.NewOrchestrator(engine.Deps{
		Runner:                 engine.NewRunner(transport, uint(cfg.Engine.MaxRetries), cfg.Engine.Backoff, logger, nil),
		State:                  state,
		Renderer:               board,
		Notifier:               notify.NewLogNotifier(logger),
		Logger:                 logger,
		RequireAllocationFirst: cfg.Engine.RequireAllocationFirst,
	})

	req := domain.AnalysisRequest{
		Kind:             kind,
		Industry:         *industry,
		CompanySize:      *companySize,
		BudgetMinorUnits: *budget,
		PrimaryGoal:      *goal,
	}
	if *useInventory {
		req.Inventory = domain.DefaultInventory()
	}

	// 3. Прогноз без распределения запрещен, поэтому сначала делаем распределение
	if kind == domain.KindPredictive && cfg.Engine.RequireAllocationFirst {
		pre := req
		pre.Kind = domain.KindAllocation
		if !runOnce(ctx, logger, orch, pre, cfg.Gemini.APIKey) {
			os.Exit(1)
		}
	}
	if !runOnce(ctx, logger, orch, req, cfg.Gemini.APIKey) {
		os.Exit(1)
	}

	// 4. Результат
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(board.View()); err != nil {
		logger.Fatal("failed to encode view", zap.Error(err))
	}
}

func runOnce(ctx context.Context, logger *zap.Logger, orch *engine.Orchestrator, req domain.AnalysisRequest, apiKey string) bool {
	out, err := orch.Analyze(ctx, req, apiKey)
	if err != nil {
		logger.Error("analysis rejected", zap.Error(err))
		return false
	}
	switch out.Status {
	case engine.StatusSucceeded:
		logger.Info("analysis finished",
			zap.String("run_id", out.RunID),
			zap.String("kind", string(out.Kind)),
			zap.Uint("attempts", out.Attempts),
		)
		return true
	case engine.StatusCancelled:
		fmt.Fprintln(os.Stderr, "analysis cancelled")
		return false
	default:
		logger.Error("analysis failed", zap.String("run_id", out.RunID), zap.Error(out.Err))
		return false
	}
}
