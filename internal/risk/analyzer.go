// Package risk раскладывает прогноз модели по уровням и каноническим доменам.
package risk

import (
	"strings"

	"go.uber.org/zap"

	"github.com/xela07ax/cyberinvest-pro/internal/domain"
)

type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"

	// LevelUnknown — модель не вернула пригодный risk_score
	LevelUnknown Level = "unknown"
)

// Пороги строгие: 75 — еще medium, 50 — еще low
const (
	highThreshold   = 75
	mediumThreshold = 50
)

// domainKeywords — ключевые слова для сопоставления свободного названия домена
// с одним из пяти канонических. Порядок важен: первый совпавший выигрывает.
var domainKeywords = []struct {
	domain   string
	keywords []string
}{
	{domain.DomainCriticalInfrastructure, []string{"infra"}},
	{domain.DomainDataAssets, []string{"data"}},
	{domain.DomainHumanResources, []string{"human", "employee"}},
	{domain.DomainNetworkPerimeter, []string{"network", "perimeter"}},
	{domain.DomainThirdPartyServices, []string{"third-party", "third party", "supply chain"}},
}

// Classify возвращает уровень риска для карточки.
func Classify(score float64) Level {
	switch {
	case score > highThreshold:
		return LevelHigh
	case score > mediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

// MatchDomain находит канонический домен по ключевым словам. "" — не найден.
func MatchDomain(name string) string {
	lower := strings.ToLower(name)
	if lower == "" {
		return ""
	}
	for _, d := range domainKeywords {
		for _, kw := range d.keywords {
			if strings.Contains(lower, kw) {
				return d.domain
			}
		}
	}
	return ""
}

type Assessment struct {
	domain.RiskRecord
	CanonicalDomain string `json:"canonical_domain,omitempty"`
	Level           Level  `json:"level"`
}

type Analyzer struct {
	logger *zap.Logger
}

func NewAnalyzer(logger *zap.Logger) *Analyzer {
	return &Analyzer{logger: logger.Named("analyzer")}
}

// Assess классифицирует записи. Значения вне [0,100] не правятся, только логируются.
func (a *Analyzer) Assess(records domain.RiskAssessment) []Assessment {
	out := make([]Assessment, 0, len(records))
	for _, r := range records {
		canonical := MatchDomain(r.Domain)
		if canonical == "" {
			a.logger.Warn("risk domain does not match a known domain", zap.String("domain", r.Domain))
		}
		if outOfRange(r.RiskScore) || outOfRange(r.MitigationPercent) {
			a.logger.Warn("risk values out of range",
				zap.String("domain", r.Domain),
				zap.Stringer("risk_score", r.RiskScore),
				zap.Stringer("mitigation_percent", r.MitigationPercent),
			)
		}

		level := LevelUnknown
		if r.RiskScore.Valid {
			level = Classify(r.RiskScore.Value)
		} else {
			a.logger.Warn("risk score not available", zap.String("domain", r.Domain))
		}
		out = append(out, Assessment{
			RiskRecord:      r,
			CanonicalDomain: canonical,
			Level:           level,
		})
	}
	return out
}

func outOfRange(m domain.Metric) bool {
	return m.Valid && (m.Value < 0 || m.Value > 100)
}
