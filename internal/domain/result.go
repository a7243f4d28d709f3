package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// NotAvailable — сентинел для метрики, которую модель не вернула. Это не ноль.
const NotAvailable = "N/A"

// Metric — числовая метрика, которая может отсутствовать.
// Решение "есть/нет" принимается один раз в parser, потребители его не пересчитывают.
type Metric struct {
	Value float64
	Valid bool
}

// Num создает доступную метрику.
func Num(v float64) Metric { return Metric{Value: v, Valid: true} }

// NA создает метрику "not available".
func NA() Metric { return Metric{} }

func (m Metric) String() string {
	if !m.Valid {
		return NotAvailable
	}
	return strconv.FormatFloat(m.Value, 'f', -1, 64)
}

// MarshalJSON пишет число или "N/A".
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return json.Marshal(NotAvailable)
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON принимает число или строку с числом ("85"), всё остальное — сентинел.
func (m *Metric) UnmarshalJSON(data []byte) error {
	*m = NA()
	if isNull(data) {
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*m = Num(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		*m = Num(v)
	}
	return nil
}

func isNull(data []byte) bool {
	return string(bytes.TrimSpace(data)) == "null"
}

// Text хранит текстовую метрику (уровень зрелости, фокус), она тоже может отсутствовать.
type Text struct {
	Value string
	Valid bool
}

func Str(v string) Text { return Text{Value: v, Valid: true} }

func (t Text) String() string {
	if !t.Valid {
		return NotAvailable
	}
	return t.Value
}

func (t Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON: строка как есть, число приводим к строке, остальное — сентинел.
func (t *Text) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*t = Text{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Str(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*t = Str(n.String())
		return nil
	}
	*t = Text{}
	return nil
}

// AssetCoverage показывает, сколько важных активов закрывает план.
type AssetCoverage struct {
	Addressed Metric `json:"addressed"`
	Total     Metric `json:"total"`
}

// DashboardMetrics содержит метрики дашборда. Каждое поле независимо может быть N/A.
type DashboardMetrics struct {
	HighRiskAssetsAddressed   AssetCoverage `json:"high_risk_assets_addressed"`
	AddressedAssetNames       []string      `json:"addressed_asset_names"`
	NewRiskScore              Metric        `json:"new_risk_score"`
	ProjectedIncidentsReduced Metric        `json:"projected_incidents_reduced"` // %
	ROSI                      Metric        `json:"return_on_security_investment"`
	ComplianceUplift          Metric        `json:"compliance_uplift"`
	RiskReductionTrend        []float64     `json:"risk_reduction_trend"` // nil == N/A, ожидается 6 точек
	ThreatExposureReduction   Metric        `json:"threat_exposure_reduction"`
	ATTRImprovement           Metric        `json:"attr_improvement"`
	MaturityLevel             Text          `json:"security_maturity_level"`
	PrimaryFocusArea          Text          `json:"primary_focus_area"`
}

// WithInventoryFallback достраивает addressed/total, если модель их не вернула:
// при использованном инвентаре total = число важных активов, addressed = len(addressed_asset_names).
// Без инвентаря оба значения остаются N/A.
func (m DashboardMetrics) WithInventoryFallback(inventory []AssetRecord) DashboardMetrics {
	cov := m.HighRiskAssetsAddressed
	if cov.Addressed.Valid && cov.Total.Valid {
		return m
	}
	if len(inventory) > 0 {
		m.HighRiskAssetsAddressed = AssetCoverage{
			Addressed: Num(float64(len(m.AddressedAssetNames))),
			Total:     Num(float64(CountHighImportance(inventory))),
		}
	} else {
		m.HighRiskAssetsAddressed = AssetCoverage{Addressed: NA(), Total: NA()}
	}
	return m
}

// Initiative описывает одну статью расходов. Сумма процентов по всем инициативам не обязана быть 100.
type Initiative struct {
	Name          string   `json:"initiative"`
	Percentage    float64  `json:"percentage"`
	Description   string   `json:"description"`
	Rationale     string   `json:"rationale"`
	NISTFunctions []string `json:"nist_functions"`
}

// AllocationResult — итог успешного allocation-анализа. Заменяет предыдущий целиком.
type AllocationResult struct {
	Metrics     DashboardMetrics `json:"dashboard_metrics"`
	Initiatives []Initiative     `json:"initiatives"`
}

// AnalysisDetails — накопленные детали последнего анализа (для модалок с деталями).
type AnalysisDetails struct {
	AddressedAssets []string     `json:"addressed_assets"`
	Initiatives     []Initiative `json:"initiatives"`
}

// Merge накладывает новые детали поверх старых; пустые (nil) поля не затирают старые.
func (d AnalysisDetails) Merge(next AnalysisDetails) AnalysisDetails {
	if next.AddressedAssets != nil {
		d.AddressedAssets = next.AddressedAssets
	}
	if next.Initiatives != nil {
		d.Initiatives = next.Initiatives
	}
	return d
}
