package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Latency: сколько занял анализ целиком (включая ретраи и паузы между ними)
	AnalysisDuration *prometheus.HistogramVec

	// Traffic: запуски по виду и итогу
	AnalysesTotal *prometheus.CounterVec

	// Попытки вызова модели и паузы между ними
	AttemptsTotal *prometheus.CounterVec
	BackoffsTotal prometheus.Counter

	// Errors: классификация отказов
	ErrorTotal *prometheus.CounterVec

	// Saturation: 1, пока идет анализ
	ActiveRun prometheus.Gauge

	// Audit: заполненность буфера журнала (backpressure)
	JournalBufferFill prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - Если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		AnalysisDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cyberinvest_analysis_duration_seconds",
			Help:    "Histogram of analysis latencies.",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 40, 60},
		}, []string{"kind", "status"}),

		AnalysesTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "cyberinvest_analyses_total",
			Help: "Total number of finished analyses.",
		}, []string{"kind", "status"}),

		AttemptsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "cyberinvest_model_attempts_total",
			Help: "Total number of model calls by result.",
		}, []string{"result"}),

		BackoffsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "cyberinvest_model_backoffs_total",
			Help: "Total number of waits between model attempts.",
		}),

		ErrorTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "cyberinvest_errors_total",
			Help: "Total number of errors by type.",
		}, []string{"type"}), // типы: unauthenticated, busy, exhausted, malformed, missing_fields, validation

		ActiveRun: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "cyberinvest_active_run",
			Help: "1 while an analysis is in flight.",
		}),

		JournalBufferFill: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "cyberinvest_journal_buffer_utilization",
			Help: "Current number of events in journal buffer.",
		}),
	}
}
