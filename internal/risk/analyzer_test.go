package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/cyberinvest-pro/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		score float64
		want  Level
	}{
		{0, LevelLow},
		{50, LevelLow},
		{50.5, LevelMedium},
		{75, LevelMedium},
		{76, LevelHigh},
		{130, LevelHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score), "score %v", tt.score)
	}
}

func TestMatchDomain(t *testing.T) {
	tests := map[string]string{
		"Critical Infrastructure":     domain.DomainCriticalInfrastructure,
		"Customer DATA":               domain.DomainDataAssets,
		"Employee awareness":          domain.DomainHumanResources,
		"Perimeter defence":           domain.DomainNetworkPerimeter,
		"Supply Chain partners":       domain.DomainThirdPartyServices,
		"Third party SaaS":            domain.DomainThirdPartyServices,
		"Physical security":           "",
		"":                            "",
		"Network infrastructure data": domain.DomainCriticalInfrastructure,
	}
	for in, want := range tests {
		assert.Equal(t, want, MatchDomain(in), in)
	}
}

func TestAssessKeepsValues(t *testing.T) {
	a := NewAnalyzer(zap.NewNop())
	got := a.Assess(domain.RiskAssessment{
		{Domain: "Data Assets", RiskScore: domain.Num(130), MitigationPercent: domain.Num(-5), MitigationSteps: []string{"encrypt"}},
		{Domain: "Weather", RiskScore: domain.Num(20), MitigationSteps: []string{}},
		{Domain: "Network Perimeter", RiskScore: domain.NA(), MitigationSteps: []string{"segment"}},
	})
	require.Len(t, got, 3)
	assert.Equal(t, domain.Num(130), got[0].RiskScore)
	assert.Equal(t, LevelHigh, got[0].Level)
	assert.Equal(t, domain.DomainDataAssets, got[0].CanonicalDomain)
	assert.Empty(t, got[1].CanonicalDomain)
	assert.Equal(t, LevelLow, got[1].Level)
	assert.Equal(t, LevelUnknown, got[2].Level, "missing score is not low risk")
}
