// Package parser превращает сырой текст модели в структурированный результат.
// Здесь один раз решается, какие метрики доступны, а какие становятся "N/A".
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xela07ax/cyberinvest-pro/internal/domain"
)

var (
	// ErrMalformedJSON — после снятия обертки текст не является JSON.
	ErrMalformedJSON = errors.New("parser: AI returned a non-JSON response")
	// ErrMissingFields — JSON валиден, но в нем нет обязательной структуры.
	ErrMissingFields = errors.New("parser: AI returned incomplete analysis data")
)

// Result содержит Allocation или Risk, в зависимости от вида анализа.
type Result struct {
	Kind       domain.AnalysisKind
	Allocation *domain.AllocationResult
	Risk       domain.RiskAssessment
}

// Parse выбирает разбор по виду анализа.
func Parse(kind domain.AnalysisKind, raw string) (Result, error) {
	if kind == domain.KindPredictive {
		risk, err := ParseRiskAssessment(raw)
		return Result{Kind: kind, Risk: risk}, err
	}
	alloc, err := ParseAllocation(raw)
	if err != nil {
		return Result{Kind: kind}, err
	}
	return Result{Kind: kind, Allocation: &alloc}, nil
}

// StripFences снимает обертку ```json ... ``` (или просто ``` ... ```), если модель ее добавила.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// allocationEnvelope — обязательные ключи верхнего уровня. RawMessage == nil значит "ключа нет".
type allocationEnvelope struct {
	DashboardMetrics json.RawMessage `json:"dashboard_metrics"`
	Initiatives      json.RawMessage `json:"initiatives"`
}

type coverage struct {
	domain.AssetCoverage
	AddressedAssetNames []string `json:"addressed_asset_names"`
}

// metricsDTO повторяет domain.DashboardMetrics, но допускает addressed_asset_names
// внутри high_risk_assets_addressed — так его просит промпт.
type metricsDTO struct {
	HighRiskAssetsAddressed   json.RawMessage `json:"high_risk_assets_addressed"`
	AddressedAssetNames       json.RawMessage `json:"addressed_asset_names"`
	NewRiskScore              domain.Metric   `json:"new_risk_score"`
	ProjectedIncidentsReduced domain.Metric   `json:"projected_incidents_reduced"`
	ROSI                      domain.Metric   `json:"return_on_security_investment"`
	ComplianceUplift          domain.Metric   `json:"compliance_uplift"`
	RiskReductionTrend        json.RawMessage `json:"risk_reduction_trend"`
	ThreatExposureReduction   domain.Metric   `json:"threat_exposure_reduction"`
	ATTRImprovement           domain.Metric   `json:"attr_improvement"`
	MaturityLevel             domain.Text     `json:"security_maturity_level"`
	PrimaryFocusArea          domain.Text     `json:"primary_focus_area"`
}

// ParseAllocation разбирает ответ allocation-анализа.
// Обязательны только initiatives и dashboard_metrics; каждая метрика деградирует до N/A независимо.
func ParseAllocation(raw string) (domain.AllocationResult, error) {
	cleaned := StripFences(raw)

	var env allocationEnvelope
	if err := json.Unmarshal([]byte(cleaned), &env); err != nil {
		return domain.AllocationResult{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if isAbsent(env.Initiatives) || isAbsent(env.DashboardMetrics) {
		return domain.AllocationResult{}, fmt.Errorf("%w: initiatives and dashboard_metrics are required", ErrMissingFields)
	}

	var initiatives []domain.Initiative
	if err := json.Unmarshal(env.Initiatives, &initiatives); err != nil {
		return domain.AllocationResult{}, fmt.Errorf("%w: initiatives: %v", ErrMissingFields, err)
	}

	var dto metricsDTO
	if err := json.Unmarshal(env.DashboardMetrics, &dto); err != nil {
		return domain.AllocationResult{}, fmt.Errorf("%w: dashboard_metrics: %v", ErrMissingFields, err)
	}

	return domain.AllocationResult{
		Metrics:     dto.toDomain(),
		Initiatives: initiatives,
	}, nil
}

// toDomain: кривые массивы и вложенные объекты тоже деградируют до N/A, а не валят разбор.
func (d metricsDTO) toDomain() domain.DashboardMetrics {
	m := domain.DashboardMetrics{
		NewRiskScore:              d.NewRiskScore,
		ProjectedIncidentsReduced: d.ProjectedIncidentsReduced,
		ROSI:                      d.ROSI,
		ComplianceUplift:          d.ComplianceUplift,
		ThreatExposureReduction:   d.ThreatExposureReduction,
		ATTRImprovement:           d.ATTRImprovement,
		MaturityLevel:             d.MaturityLevel,
		PrimaryFocusArea:          d.PrimaryFocusArea,
	}
	if !isAbsent(d.AddressedAssetNames) {
		if err := json.Unmarshal(d.AddressedAssetNames, &m.AddressedAssetNames); err != nil {
			m.AddressedAssetNames = nil
		}
	}
	if !isAbsent(d.RiskReductionTrend) {
		if err := json.Unmarshal(d.RiskReductionTrend, &m.RiskReductionTrend); err != nil {
			m.RiskReductionTrend = nil
		}
	}

	var cov coverage
	if !isAbsent(d.HighRiskAssetsAddressed) && json.Unmarshal(d.HighRiskAssetsAddressed, &cov) == nil {
		m.HighRiskAssetsAddressed = cov.AssetCoverage
		if m.AddressedAssetNames == nil {
			m.AddressedAssetNames = cov.AddressedAssetNames
		}
	}
	return m
}

// ParseRiskAssessment разбирает ответ predictive-анализа:
// голый массив или объект с ключом risk_assessment.
func ParseRiskAssessment(raw string) (domain.RiskAssessment, error) {
	cleaned := StripFences(raw)

	var root json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	list := root
	if obj := strings.TrimSpace(string(root)); strings.HasPrefix(obj, "{") {
		var wrapper struct {
			RiskAssessment json.RawMessage `json:"risk_assessment"`
		}
		if err := json.Unmarshal(root, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingFields, err)
		}
		list = wrapper.RiskAssessment
	}

	var records []map[string]json.RawMessage
	if isAbsent(list) || json.Unmarshal(list, &records) != nil {
		return nil, fmt.Errorf("%w: risk_assessment must be an array", ErrMissingFields)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: risk_assessment is empty", ErrMissingFields)
	}

	out := make(domain.RiskAssessment, 0, len(records))
	for i, rec := range records {
		var steps []string
		if isAbsent(rec["mitigation_steps"]) || json.Unmarshal(rec["mitigation_steps"], &steps) != nil {
			return nil, fmt.Errorf("%w: record %d has no mitigation_steps array", ErrMissingFields, i)
		}

		// Поля, кроме mitigation_steps, опциональны: битые и отсутствующие становятся N/A
		item := domain.RiskRecord{
			Domain:            optionalText(rec["domain"]).Value,
			RiskScore:         optionalMetric(rec["risk_score"]),
			MitigationPercent: optionalMetric(rec["mitigation_percent"]),
			FutureIssues:      optionalText(rec["future_issues"]),
			MitigationSteps:   steps,
		}

		out = append(out, item)
	}
	return out, nil
}

// optionalMetric: Metric.UnmarshalJSON сам сводит любой мусор к N/A, ошибок не бывает.
func optionalMetric(raw json.RawMessage) domain.Metric {
	var m domain.Metric
	if !isAbsent(raw) {
		_ = json.Unmarshal(raw, &m)
	}
	return m
}

func optionalText(raw json.RawMessage) domain.Text {
	var t domain.Text
	if !isAbsent(raw) {
		_ = json.Unmarshal(raw, &t)
	}
	return t
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || strings.TrimSpace(string(raw)) == "null"
}
