package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountHighImportance(t *testing.T) {
	assets := []AssetRecord{
		{ID: 1, Importance: 5},
		{ID: 2, Importance: 5},
		{ID: 3, Importance: 4},
		{ID: 4, Importance: 2},
	}
	assert.Equal(t, 3, CountHighImportance(assets))

	// граница: 3 не считается важным
	assert.Equal(t, 0, CountHighImportance([]AssetRecord{{Importance: 3}}))
	assert.Equal(t, 0, CountHighImportance(nil))
}

func TestMetricJSON(t *testing.T) {
	var payload struct {
		A Metric `json:"a"`
		B Metric `json:"b"`
		C Metric `json:"c"`
		D Metric `json:"d"`
		E Metric `json:"e"`
		F Metric `json:"f"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 0, "b": null, "c": "high", "e": " 85 ", "f": "40%"}`), &payload))

	assert.Equal(t, Num(0), payload.A, "zero is a value, not the sentinel")
	assert.False(t, payload.B.Valid)
	assert.False(t, payload.C.Valid)
	assert.False(t, payload.D.Valid, "absent field")
	assert.Equal(t, Num(85), payload.E, "numeric string is a number")
	assert.False(t, payload.F.Valid)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":0,"b":"N/A","c":"N/A","d":"N/A","e":85,"f":"N/A"}`, string(out))
}

func TestTextJSON(t *testing.T) {
	var payload struct {
		Level Text `json:"level"`
		Focus Text `json:"focus"`
		Empty Text `json:"empty"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"level": 3, "focus": "Endpoint Security", "empty": null}`), &payload))

	assert.Equal(t, "3", payload.Level.String())
	assert.Equal(t, "Endpoint Security", payload.Focus.String())
	assert.Equal(t, NotAvailable, payload.Empty.String())
}

func TestWithInventoryFallback(t *testing.T) {
	metrics := DashboardMetrics{AddressedAssetNames: []string{"Primary Web Server"}}

	t.Run("inventory used", func(t *testing.T) {
		got := metrics.WithInventoryFallback(DefaultInventory())
		assert.Equal(t, Num(1), got.HighRiskAssetsAddressed.Addressed)
		assert.Equal(t, Num(3), got.HighRiskAssetsAddressed.Total)
	})

	t.Run("no inventory", func(t *testing.T) {
		got := metrics.WithInventoryFallback(nil)
		assert.Equal(t, "N/A", got.HighRiskAssetsAddressed.Addressed.String())
		assert.Equal(t, "N/A", got.HighRiskAssetsAddressed.Total.String())
	})

	t.Run("model values win", func(t *testing.T) {
		m := metrics
		m.HighRiskAssetsAddressed = AssetCoverage{Addressed: Num(2), Total: Num(7)}
		got := m.WithInventoryFallback(DefaultInventory())
		assert.Equal(t, Num(7), got.HighRiskAssetsAddressed.Total)
	})
}

func TestAnalysisDetailsMerge(t *testing.T) {
	base := AnalysisDetails{AddressedAssets: []string{"a"}, Initiatives: []Initiative{{Name: "x"}}}

	got := base.Merge(AnalysisDetails{AddressedAssets: []string{}})
	assert.Empty(t, got.AddressedAssets)
	assert.Len(t, got.Initiatives, 1)
}

func TestAnalysisRequestValidate(t *testing.T) {
	valid := AnalysisRequest{
		Kind:             KindAllocation,
		Industry:         "Retail",
		CompanySize:      "50-200",
		BudgetMinorUnits: 750000,
		PrimaryGoal:      "reduce breaches",
		Inventory:        []AssetRecord{{ID: 1, Name: "Primary Web Server", Type: AssetServer, Importance: 5}},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(r *AnalysisRequest)
	}{
		{"negative budget", func(r *AnalysisRequest) { r.BudgetMinorUnits = -1 }},
		{"unknown kind", func(r *AnalysisRequest) { r.Kind = "forecast" }},
		{"missing industry", func(r *AnalysisRequest) { r.Industry = "" }},
		{"importance out of range", func(r *AnalysisRequest) {
			r.Inventory = []AssetRecord{{ID: 1, Name: "x", Type: AssetServer, Importance: 6}}
		}},
		{"bad asset type", func(r *AnalysisRequest) {
			r.Inventory = []AssetRecord{{ID: 1, Name: "x", Type: "Mainframe", Importance: 1}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			assert.Error(t, r.Validate())
		})
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Predictive ")
	require.NoError(t, err)
	assert.Equal(t, KindPredictive, k)
	assert.Equal(t, "Predictive Analysis", k.OperationName())
	assert.Equal(t, "Investment Analysis", KindAllocation.OperationName())

	_, err = ParseKind("other")
	assert.Error(t, err)
}
