package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xela07ax/cyberinvest-pro/internal/dashboard"
	"github.com/xela07ax/cyberinvest-pro/internal/domain"
	"github.com/xela07ax/cyberinvest-pro/internal/engine"
)

type DashboardHandler struct {
	board *dashboard.Board
	state *engine.RunState
}

func NewDashboardHandler(board *dashboard.Board, state *engine.RunState) *DashboardHandler {
	return &DashboardHandler{board: board, state: state}
}

type dashboardResponse struct {
	dashboard.View
	AnalysisHasRun bool  `json:"analysis_has_run"`
	Budget         int64 `json:"budget"`
}

// GetDashboard GET /api/v1/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	_, budget, _ := h.state.LastAllocation()
	writeJSON(w, http.StatusOK, dashboardResponse{
		View:           h.board.View(),
		AnalysisHasRun: h.state.HasRun(),
		Budget:         budget,
	})
}

// GetDetails GET /api/v1/details
func (h *DashboardHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	details := h.state.Details()
	if details.AddressedAssets == nil {
		details.AddressedAssets = []string{}
	}
	if details.Initiatives == nil {
		details.Initiatives = []domain.Initiative{}
	}
	writeJSON(w, http.StatusOK, details)
}

// GetExplanation GET /api/v1/explanations/{metric}
func (h *DashboardHandler) GetExplanation(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "metric")
	exp, ok := dashboard.Explain(key, h.state.Details())
	if !ok {
		writeError(w, http.StatusNotFound, "unknown metric "+key)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}
