package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/xela07ax/cyberinvest-pro/internal/audit"
	"github.com/xela07ax/cyberinvest-pro/internal/connectors"
	"github.com/xela07ax/cyberinvest-pro/internal/console/handler"
	"github.com/xela07ax/cyberinvest-pro/internal/console/server"
	"github.com/xela07ax/cyberinvest-pro/internal/dashboard"
	"github.com/xela07ax/cyberinvest-pro/internal/domain"
	"github.com/xela07ax/cyberinvest-pro/internal/engine"
	"github.com/xela07ax/cyberinvest-pro/internal/infra"
	"github.com/xela07ax/cyberinvest-pro/internal/inventory"
	"github.com/xela07ax/cyberinvest-pro/internal/notify"
	"github.com/xela07ax/cyberinvest-pro/internal/parser"
	"github.com/xela07ax/cyberinvest-pro/internal/repository/postgres"
	"github.com/xela07ax/cyberinvest-pro/internal/risk"
)

func main() {
	// 0. Конфигурация и логгер
	flags := pflag.NewFlagSet("advisor", pflag.ExitOnError)
	flags.Int("server.port", 8080, "HTTP API port")
	flags.Bool("gemini.mock", false, "answer with sample data instead of calling the model")
	flags.String("logger.level", "info", "log level (debug, info, warn, error)")
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

	// Контекст жизненного цикла фоновых горутин. SIGTERM -> cancel() остановит слушателей
	appCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Метрики
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := engine.NewMetrics(reg)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	metricsSrv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Metrics.Port), Handler: metricsMux}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	// 2. Журнал запусков: Postgres, если задан, иначе лог
	var storage audit.Storage = audit.NewLogStorage(logger)
	if cfg.Database.URL != "" {
		repo, err := postgres.NewRunRepo(cfg.Database)
		if err != nil {
			logger.Fatal("failed to open database", zap.Error(err))
		}
		defer repo.Close()

		ctx, cancelPing := context.WithTimeout(appCtx, 5*time.Second)
		if err := repo.Ping(ctx); err != nil {
			logger.Fatal("database unreachable", zap.Error(err))
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Fatal("failed to prepare schema", zap.Error(err))
		}
		cancelPing()
		storage = repo
	}
	journal := audit.NewJournal(storage, cfg.Engine.JournalBufferSize, cfg.Engine.JournalFlushInterval, logger, metrics.JournalBufferFill)
	journal.Start()

	// 3. Уведомления: лог + лента API (+ Redis)
	feed := notify.NewFeed(0)
	notifiers := notify.Multi{notify.NewLogNotifier(logger), feed}

	state := engine.NewRunState()

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()

		ctx, cancelPing := context.WithTimeout(appCtx, 3*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			// Не фатально: слушатель отмены сам переподключится
			logger.Warn("redis unreachable at startup", zap.Error(err))
		}
		cancelPing()

		pub := notify.NewRedisPublisher(rdb, logger)
		notifiers = append(notifiers, pub)
		state.Subscribe(pub.PublishDetails)

		go engine.NewCancelListener(rdb, state, logger).Listen(appCtx)
	}

	// 4. Транспорт к модели: Gemini (или пример) за rate limiter и circuit breaker
	var transport connectors.Sender
	if cfg.Gemini.Mock {
		logger.Warn("gemini mock mode: analyses return sample data")
		transport = connectors.NewMockTransport()
	} else {
		transport = connectors.NewGeminiClient(&http.Client{Timeout: cfg.Gemini.Timeout}, cfg.Gemini.BaseURL, cfg.Gemini.Model)
	}
	guarded := connectors.NewGuard(transport, connectors.GuardSettings{
		RatePerSecond:    cfg.Engine.RatePerSecond,
		Burst:            cfg.Engine.RateBurst,
		FailureThreshold: cfg.Engine.CBFailures,
		OpenTimeout:      cfg.Engine.CBTimeout,
	}, logger)

	// 5. Ядро: дашборд стартует с примера, has_run остается false
	board := dashboard.NewBoard(risk.NewAnalyzer(logger))
	sample, err := parser.ParseAllocation(domain.SampleAnalysisJSON)
	if err != nil {
		logger.Fatal("sample analysis is broken", zap.Error(err))
	}
	state.Bootstrap(sample, domain.SampleBudget)
	board.RenderDashboard(sample.Metrics, sample.Initiatives, domain.SampleBudget)

	orch := engine.NewOrchestrator(engine.Deps{
		Runner:                 engine.NewRunner(guarded, uint(cfg.Engine.MaxRetries), cfg.Engine.Backoff, logger, metrics),
		State:                  state,
		Renderer:               board,
		Notifier:               notifiers,
		Journal:                journal,
		Metrics:                metrics,
		Logger:                 logger,
		RequireAllocationFirst: cfg.Engine.RequireAllocationFirst,
	})

	inv := inventory.New(domain.DefaultInventory())

	// 6. HTTP API
	api := server.NewAdvisorServer(logger, server.Handlers{
		Dashboard:     handler.NewDashboardHandler(board, state),
		Inventory:     handler.NewInventoryHandler(inv, notifiers),
		Analysis:      handler.NewAnalysisHandler(orch, inv, logger),
		Notifications: handler.NewNotificationHandler(feed),
	})
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return appCtx },
	}

	// 7. gRPC health
	healthSrv := engine.NewHealthServer(logger)
	go func() {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPC.Port))
		if err != nil {
			logger.Fatal("failed to listen gRPC", zap.Error(err))
		}
		if err := healthSrv.Serve(lis); err != nil {
			logger.Error("gRPC server stopped", zap.Error(err))
		}
	}()

	go func() {
		logger.Info("advisor API started", zap.String("addr", srv.Addr), zap.Bool("mock", cfg.Gemini.Mock))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	// 8. Graceful Shutdown
	<-appCtx.Done()
	logger.Info("advisor stopping...")

	// Идущий анализ отменяем: его итог все равно никто не увидит
	if runID, ok := orch.Cancel(); ok {
		logger.Info("active analysis cancelled on shutdown", zap.String("run_id", runID))
	}
	healthSrv.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	_ = metricsSrv.Shutdown(shutdownCtx)

	// Журнал последним: дописываем то, что успели запустить
	journal.Stop()
	logger.Info("advisor exited properly")
}
