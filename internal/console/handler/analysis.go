package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xela07ax/cyberinvest-pro/internal/connectors"
	"github.com/xela07ax/cyberinvest-pro/internal/domain"
	"github.com/xela07ax/cyberinvest-pro/internal/engine"
	"github.com/xela07ax/cyberinvest-pro/internal/inventory"
)

type AnalysisHandler struct {
	orch   *engine.Orchestrator
	inv    *inventory.Inventory
	logger *zap.Logger
}

func NewAnalysisHandler(orch *engine.Orchestrator, inv *inventory.Inventory, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{orch: orch, inv: inv, logger: logger.Named("analysis-api")}
}

// analysisInput описывает тело POST /api/v1/analyses/{kind}
type analysisInput struct {
	Industry     string `json:"industry"`
	CompanySize  string `json:"company_size"`
	Budget       int64  `json:"budget"`
	PrimaryGoal  string `json:"primary_goal"`
	UseInventory bool   `json:"use_inventory"`
}

type analysisResponse struct {
	RunID      string                   `json:"run_id"`
	Kind       domain.AnalysisKind      `json:"kind"`
	Status     engine.RunStatus         `json:"status"`
	Attempts   uint                     `json:"attempts"`
	Allocation *domain.AllocationResult `json:"allocation,omitempty"`
	Risk       domain.RiskAssessment    `json:"risk_assessment,omitempty"`
	Error      string                   `json:"error,omitempty"`
}

// Run POST /api/v1/analyses/{kind}?apiKey=...
// Блокируется до конца анализа. Обрыв соединения клиента отменяет анализ.
func (h *AnalysisHandler) Run(w http.ResponseWriter, r *http.Request) {
	// 1. Вид анализа и параметры
	kind, err := domain.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	var in analysisInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req := domain.AnalysisRequest{
		Kind:             kind,
		Industry:         in.Industry,
		CompanySize:      in.CompanySize,
		BudgetMinorUnits: in.Budget,
		PrimaryGoal:      in.PrimaryGoal,
	}

	// 2. Инвентарь берется снимком на момент запуска
	if in.UseInventory {
		req.Inventory = h.inv.List()
		if len(req.Inventory) == 0 {
			writeError(w, http.StatusUnprocessableEntity, domain.EmptyInventoryMessage)
			return
		}
	}

	// 3. Запуск
	out, err := h.orch.Analyze(r.Context(), req, r.URL.Query().Get("apiKey"))
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrBusy), errors.Is(err, engine.ErrAllocationRequired):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, engine.ErrInvalidRequest):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.logger.Error("failed to start analysis", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to start analysis")
		}
		return
	}

	// 4. Итог
	resp := analysisResponse{
		RunID:      out.RunID,
		Kind:       out.Kind,
		Status:     out.Status,
		Attempts:   out.Attempts,
		Allocation: out.Allocation,
		Risk:       out.Risk,
	}
	switch out.Status {
	case engine.StatusSucceeded, engine.StatusCancelled:
		writeJSON(w, http.StatusOK, resp)
	default:
		if errors.Is(out.Err, connectors.ErrUnauthenticated) {
			resp.Error = connectors.ErrUnauthenticated.Error()
			writeJSON(w, http.StatusUnauthorized, resp)
			return
		}
		// Пользователю только общий текст, подробности в логах и журнале
		resp.Error = engine.FailureMessage(kind)
		writeJSON(w, http.StatusBadGateway, resp)
	}
}

type activeResponse struct {
	Active bool              `json:"active"`
	Run    *engine.ActiveRun `json:"run,omitempty"`
}

// Active GET /api/v1/analyses/active
func (h *AnalysisHandler) Active(w http.ResponseWriter, r *http.Request) {
	run, ok := h.orch.Active()
	resp := activeResponse{Active: ok}
	if ok {
		resp.Run = &run
	}
	writeJSON(w, http.StatusOK, resp)
}

type cancelResponse struct {
	Cancelled bool   `json:"cancelled"`
	RunID     string `json:"run_id,omitempty"`
}

// Cancel POST /api/v1/analyses/cancel
func (h *AnalysisHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	runID, ok := h.orch.Cancel()
	writeJSON(w, http.StatusOK, cancelResponse{Cancelled: ok, RunID: runID})
}
