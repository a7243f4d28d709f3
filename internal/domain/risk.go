package domain

// RiskRecord — прогноз по одному домену риска.
// RiskScore и MitigationPercent ожидаются в [0,100], но приходят как есть, без клампинга.
// Отсутствующее или нечисловое значение остается N/A, а не нулем.
type RiskRecord struct {
	Domain            string   `json:"domain"`
	RiskScore         Metric   `json:"risk_score"`
	MitigationPercent Metric   `json:"mitigation_percent"`
	FutureIssues      Text     `json:"future_issues"`
	MitigationSteps   []string `json:"mitigation_steps"`
}

// RiskAssessment хранит результат predictive-анализа в порядке ответа модели.
type RiskAssessment []RiskRecord

// Канонические домены, которые просит промпт
const (
	DomainCriticalInfrastructure = "Critical Infrastructure"
	DomainDataAssets             = "Data Assets"
	DomainHumanResources         = "Human Resources"
	DomainNetworkPerimeter       = "Network Perimeter"
	DomainThirdPartyServices     = "Third-party Services"
)
