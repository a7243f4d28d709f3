package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xela07ax/cyberinvest-pro/internal/domain"
)

func sampleRequest() domain.AnalysisRequest {
	return domain.AnalysisRequest{
		Kind:             domain.KindAllocation,
		Industry:         "Retail",
		CompanySize:      "50-200",
		BudgetMinorUnits: 750000,
		PrimaryGoal:      "reduce breaches",
		Inventory: []domain.AssetRecord{
			{ID: 1, Name: "Primary Web Server", Type: domain.AssetServer, Importance: 5},
			{ID: 2, Name: "Customer Database", Type: domain.AssetDatabase, Importance: 4},
		},
	}
}

func TestBuildSharesPreamble(t *testing.T) {
	req := sampleRequest()

	allocation := Build(domain.KindAllocation, req)
	predictive := Build(domain.KindPredictive, req)

	base := Base(req)
	assert.True(t, strings.HasPrefix(allocation, base))
	assert.True(t, strings.HasPrefix(predictive, base))

	assert.True(t, strings.HasSuffix(allocation, AllocationInstruction))
	assert.True(t, strings.HasSuffix(predictive, PredictiveInstruction))
	assert.NotContains(t, allocation, `"risk_assessment"`)
	assert.NotContains(t, predictive, `"dashboard_metrics"`)
}

func TestBuildRendersInputs(t *testing.T) {
	p := Build(domain.KindAllocation, sampleRequest())

	assert.Contains(t, p, "Company Segment: Retail\n")
	assert.Contains(t, p, "Company Size: 50-200\n")
	assert.Contains(t, p, "Security Budget: 750000(In Pounds)\n")
	assert.Contains(t, p, "End goal: reduce breaches\n")
	assert.Contains(t, p, "| Name | Type | Importance (0-5) |\n|---|---|---|\n| Primary Web Server | Server | 5 |\n| Customer Database | Database | 4 |\n")
	assert.NotContains(t, p, NoInventory)
}

func TestBuildWithoutInventory(t *testing.T) {
	req := sampleRequest()
	req.Inventory = nil

	p := Build(domain.KindPredictive, req)
	assert.Contains(t, p, "Asset inventory as below:\n"+NoInventory+"\n")
	assert.NotContains(t, p, "| Name | Type |")
}

func TestBuildIsDeterministic(t *testing.T) {
	req := sampleRequest()
	assert.Equal(t, Build(domain.KindAllocation, req), Build(domain.KindAllocation, req))
}
