package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/xela07ax/cyberinvest-pro/internal/console/handler"
	"github.com/xela07ax/cyberinvest-pro/internal/engine"
)

// Handlers собираются в main.
type Handlers struct {
	Dashboard     *handler.DashboardHandler
	Inventory     *handler.InventoryHandler
	Analysis      *handler.AnalysisHandler
	Notifications *handler.NotificationHandler
}

type AdvisorServer struct {
	router *chi.Mux
	logger *zap.Logger
	h      Handlers
}

// NewAdvisorServer инициализирует HTTP API со всеми зависимостями
func NewAdvisorServer(logger *zap.Logger, h Handlers) *AdvisorServer {
	s := &AdvisorServer{
		router: chi.NewRouter(),
		logger: logger.Named("advisor-api"),
		h:      h,
	}

	s.routes()
	return s
}

func (s *AdvisorServer) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(engine.TracingMiddleware)
	r.Use(engine.RequestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Дашборд и пояснения к плиткам
		r.Get("/dashboard", s.h.Dashboard.GetDashboard)
		r.Get("/details", s.h.Dashboard.GetDetails)
		r.Get("/explanations/{metric}", s.h.Dashboard.GetExplanation)

		// Инвентарь активов
		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", s.h.Inventory.List)
			r.Post("/", s.h.Inventory.Create)
			r.Get("/summary", s.h.Inventory.Summary)
			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", s.h.Inventory.Update)
				r.Delete("/", s.h.Inventory.Delete)
			})
		})

		// Анализы. Статические пути имеют приоритет над {kind}
		r.Route("/analyses", func(r chi.Router) {
			r.Get("/active", s.h.Analysis.Active)
			r.Post("/cancel", s.h.Analysis.Cancel)
			r.Post("/{kind}", s.h.Analysis.Run)
		})

		r.Get("/notifications", s.h.Notifications.Recent)
	})
}

// ServeHTTP позволяет использовать AdvisorServer как стандартный http.Handler
func (s *AdvisorServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
