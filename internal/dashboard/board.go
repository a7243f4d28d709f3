// Package dashboard собирает модель представления дашборда из результатов анализа.
package dashboard

import (
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/xela07ax/cyberinvest-pro/internal/domain"
	"github.com/xela07ax/cyberinvest-pro/internal/risk"
)

// EmptyRiskMessage показывается, если модель вернула прогноз, но карточек из него не вышло.
const EmptyRiskMessage = "The AI returned an analysis, but the content could not be displayed. This may be a temporary issue. Please try again."

// Tile описывает одну плитку метрики. Key совпадает с ключом пояснения.
type Tile struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`

	// Text — значение текстовое, а не числовое (влияет только на стиль)
	Text bool `json:"text,omitempty"`
}

type Chart struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// View содержит всё, что нужно клиенту, чтобы нарисовать дашборд.
type View struct {
	Tiles       []Tile              `json:"tiles"`
	Allocation  Chart               `json:"allocation"`
	Trend       Chart               `json:"trend"`
	Initiatives []domain.Initiative `json:"initiatives"`
	RiskCards   []risk.Assessment   `json:"risk_cards,omitempty"`
	RiskMessage string              `json:"risk_message,omitempty"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// ExplanationView дополняет пояснение именами закрытых активов (для "assets").
type ExplanationView struct {
	domain.Explanation
	AddressedAssets []string `json:"addressed_assets,omitempty"`
}

// Board потокобезопасно принимает результаты анализа.
type Board struct {
	mu       sync.RWMutex
	view     View
	analyzer *risk.Analyzer
	now      func() time.Time
}

func NewBoard(analyzer *risk.Analyzer) *Board {
	return &Board{analyzer: analyzer, now: time.Now}
}

func (b *Board) RenderDashboard(metrics domain.DashboardMetrics, initiatives []domain.Initiative, budget int64) {
	tiles := []Tile{
		{Key: "assets", Label: "High-Importance Assets Addressed", Value: coverageValue(metrics.HighRiskAssetsAddressed)},
		{Key: "risk", Label: "New Risk Score", Value: metrics.NewRiskScore.String()},
		{Key: "threats", Label: "Projected Incident Reduction", Value: percent(metrics.ProjectedIncidentsReduced)},
		{Key: "rosi", Label: "Return on Security Investment", Value: percent(metrics.ROSI)},
		{Key: "compliance", Label: "Compliance Uplift", Value: percent(metrics.ComplianceUplift)},
		{Key: "budget", Label: "New Budget", Value: FormatBudget(budget)},
		{Key: "exposure", Label: "Threat Exposure Reduction", Value: percent(metrics.ThreatExposureReduction)},
		{Key: "attr", Label: "ATTR Improvement", Value: percent(metrics.ATTRImprovement)},
		{Key: "maturity", Label: "Security Maturity Level", Value: metrics.MaturityLevel.String(), Text: isText(metrics.MaturityLevel)},
		{Key: "focus", Label: "Primary Focus Area", Value: metrics.PrimaryFocusArea.String(), Text: isText(metrics.PrimaryFocusArea)},
	}

	alloc := Chart{Labels: make([]string, 0, len(initiatives)), Data: make([]float64, 0, len(initiatives))}
	for _, in := range initiatives {
		alloc.Labels = append(alloc.Labels, in.Name)
		alloc.Data = append(alloc.Data, in.Percentage)
	}

	series := metrics.RiskReductionTrend
	if series == nil {
		series = domain.DefaultRiskTrend
	}
	trend := Chart{Labels: make([]string, len(series)), Data: append([]float64(nil), series...)}
	for i := range series {
		trend.Labels[i] = fmt.Sprintf("Month %d", i+1)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.view.Tiles = tiles
	b.view.Allocation = alloc
	b.view.Trend = trend
	b.view.Initiatives = append([]domain.Initiative(nil), initiatives...)
	b.view.UpdatedAt = b.now()
}

func (b *Board) RenderRiskCards(assessment domain.RiskAssessment) {
	cards := b.analyzer.Assess(assessment)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.view.RiskCards = cards
	b.view.RiskMessage = ""
	if len(cards) == 0 {
		b.view.RiskMessage = EmptyRiskMessage
	}
	b.view.UpdatedAt = b.now()
}

// View возвращает снимок модели.
func (b *Board) View() View {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v := b.view
	v.Tiles = append([]Tile(nil), v.Tiles...)
	v.RiskCards = append([]risk.Assessment(nil), v.RiskCards...)
	return v
}

// Explain находит пояснение к метрике.
func Explain(key string, details domain.AnalysisDetails) (ExplanationView, bool) {
	e, ok := domain.MetricExplanations[key]
	if !ok {
		return ExplanationView{}, false
	}
	v := ExplanationView{Explanation: e}
	if key == "assets" && len(details.AddressedAssets) > 0 {
		v.AddressedAssets = details.AddressedAssets
	}
	return v, true
}

// FormatBudget: 750000 -> "£750k".
func FormatBudget(budget int64) string {
	return fmt.Sprintf("£%dk", int64(math.Round(float64(budget)/1000)))
}

func coverageValue(c domain.AssetCoverage) string {
	if !c.Addressed.Valid && !c.Total.Valid {
		return domain.NotAvailable
	}
	return c.Addressed.String() + " of " + c.Total.String()
}

func percent(m domain.Metric) string {
	if !m.Valid {
		return domain.NotAvailable
	}
	return m.String() + "%"
}

// isText отвечает, что значение не число (например, "Level 2 (Managed)").
func isText(t domain.Text) bool {
	if !t.Valid {
		return true
	}
	_, err := strconv.ParseFloat(t.Value, 64)
	return err != nil
}
