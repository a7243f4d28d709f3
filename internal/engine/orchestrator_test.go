package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/cyberinvest-pro/internal/audit"
	"github.com/xela07ax/cyberinvest-pro/internal/connectors"
	"github.com/xela07ax/cyberinvest-pro/internal/domain"
	"github.com/xela07ax/cyberinvest-pro/internal/notify"
	"github.com/xela07ax/cyberinvest-pro/internal/parser"
)

type dashboardCall struct {
	metrics     domain.DashboardMetrics
	initiatives []domain.Initiative
	budget      int64
}

type fakeRenderer struct {
	mu         sync.Mutex
	dashboards []dashboardCall
	riskCards  []domain.RiskAssessment
}

func (f *fakeRenderer) RenderDashboard(m domain.DashboardMetrics, in []domain.Initiative, budget int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dashboards = append(f.dashboards, dashboardCall{m, in, budget})
}

func (f *fakeRenderer) RenderRiskCards(a domain.RiskAssessment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.riskCards = append(f.riskCards, a)
}

func (f *fakeRenderer) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.dashboards), len(f.riskCards)
}

type fakeJournal struct {
	mu     sync.Mutex
	events []audit.RunEvent
}

func (f *fakeJournal) Log(e audit.RunEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
}

func (f *fakeJournal) last() audit.RunEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[len(f.events)-1]
}

type harness struct {
	orch      *Orchestrator
	state     *RunState
	transport *connectors.MockTransport
	renderer  *fakeRenderer
	feed      *notify.Feed
	journal   *fakeJournal
}

func newHarness(t *testing.T, steps ...connectors.Step) *harness {
	t.Helper()
	h := &harness{
		state:     NewRunState(),
		transport: connectors.NewMockTransport(steps...),
		renderer:  &fakeRenderer{},
		feed:      notify.NewFeed(0),
		journal:   &fakeJournal{},
	}
	h.orch = NewOrchestrator(Deps{
		Runner:                 NewRunner(h.transport, 2, time.Millisecond, zap.NewNop(), nil),
		State:                  h.state,
		Renderer:               h.renderer,
		Notifier:               h.feed,
		Journal:                h.journal,
		Logger:                 zap.NewNop(),
		RequireAllocationFirst: true,
	})
	return h
}

func retailRequest(kind domain.AnalysisKind) domain.AnalysisRequest {
	return domain.AnalysisRequest{
		Kind:             kind,
		Industry:         "Retail",
		CompanySize:      "50-200",
		BudgetMinorUnits: 750000,
		PrimaryGoal:      "reduce breaches",
		Inventory: []domain.AssetRecord{
			{ID: 1, Name: "Primary Web Server", Type: domain.AssetServer, Importance: 5},
		},
	}
}

func messages(f *notify.Feed) []string {
	var out []string
	for _, n := range f.Recent() {
		out = append(out, n.Message)
	}
	return out
}

func TestAnalyzeAllocationEndToEnd(t *testing.T) {
	h := newHarness(t, connectors.Step{Text: "```json\n" + domain.SampleAnalysisJSON + "\n```"})

	var observed []domain.AnalysisDetails
	h.state.Subscribe(func(d domain.AnalysisDetails) { observed = append(observed, d) })

	out, err := h.orch.Analyze(context.Background(), retailRequest(domain.KindAllocation), "key")
	require.NoError(t, err)
	require.Equal(t, StatusSucceeded, out.Status, "err: %v", out.Err)
	require.NotNil(t, out.Allocation)

	m := out.Allocation.Metrics
	assert.Len(t, m.AddressedAssetNames, 2)
	require.Len(t, m.RiskReductionTrend, 6)
	assert.Equal(t, 52.0, m.RiskReductionTrend[5])
	assert.Equal(t, uint(1), out.Attempts)

	// Промпт собран из запроса
	calls := h.transport.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Prompt, "| Primary Web Server | Server | 5 |")
	assert.True(t, calls[0].JSONMode)

	// Публикация
	require.Len(t, h.renderer.dashboards, 1)
	assert.Equal(t, int64(750000), h.renderer.dashboards[0].budget)
	assert.Len(t, h.renderer.dashboards[0].initiatives, 3)
	assert.True(t, h.state.HasRun())
	assert.Equal(t, []string{"Primary Web Server", "Customer Database"}, h.state.Details().AddressedAssets)
	require.Len(t, observed, 1)
	assert.Len(t, observed[0].Initiatives, 3)
	assert.Equal(t, []string{SuccessMessage}, messages(h.feed))

	// Уборка
	_, active := h.orch.Active()
	assert.False(t, active)
	assert.Equal(t, "SUCCEEDED", h.journal.last().Status)
}

func TestAnalyzeRejectsWhileActive(t *testing.T) {
	h := newHarness(t, connectors.Step{Text: domain.SampleAnalysisJSON, Delay: 5 * time.Second})

	first, runID, err := h.orch.Start(context.Background(), retailRequest(domain.KindAllocation), "key")
	require.NoError(t, err)

	active, ok := h.orch.Active()
	require.True(t, ok)
	assert.Equal(t, runID, active.ID)

	_, _, err = h.orch.Start(context.Background(), retailRequest(domain.KindAllocation), "key")
	assert.ErrorIs(t, err, ErrBusy)

	cancelledID, ok := h.orch.Cancel()
	require.True(t, ok)
	assert.Equal(t, runID, cancelledID)

	select {
	case out := <-first:
		assert.Equal(t, StatusCancelled, out.Status)
		assert.ErrorIs(t, out.Err, connectors.ErrCancelled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled run did not finish promptly")
	}

	// Отмена молчаливая: ни рендера, ни уведомлений
	dashboards, _ := h.renderer.counts()
	assert.Zero(t, dashboards)
	assert.Empty(t, h.feed.Recent())
	assert.False(t, h.state.HasRun())
	assert.Equal(t, "CANCELLED", h.journal.last().Status)

	// Токен снят, следующий запуск проходит
	out, err := h.orch.Analyze(context.Background(), retailRequest(domain.KindAllocation), "key")
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, out.Status)
}

func TestConcurrentStartsPublishOnce(t *testing.T) {
	h := newHarness(t, connectors.Step{Text: domain.SampleAnalysisJSON, Delay: 100 * time.Millisecond})

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted []<-chan Outcome
		busy     int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch, _, err := h.orch.Start(context.Background(), retailRequest(domain.KindAllocation), "key")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.ErrorIs(t, err, ErrBusy)
				busy++
				return
			}
			accepted = append(accepted, ch)
		}()
	}
	wg.Wait()

	require.Len(t, accepted, 1)
	assert.Equal(t, 4, busy)
	out := <-accepted[0]
	assert.Equal(t, StatusSucceeded, out.Status)

	dashboards, _ := h.renderer.counts()
	assert.Equal(t, 1, dashboards)
	assert.Equal(t, 1, h.transport.CallCount())
}

func TestAnalyzeMalformedResponseIsNotRetried(t *testing.T) {
	h := newHarness(t, connectors.Step{Text: "I am sorry, I cannot do that."})

	out, err := h.orch.Analyze(context.Background(), retailRequest(domain.KindAllocation), "key")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, out.Status)
	assert.ErrorIs(t, out.Err, parser.ErrMalformedJSON)
	assert.Equal(t, 1, h.transport.CallCount())
	assert.Equal(t, []string{"Investment Analysis failed. Please try again."}, messages(h.feed))
	assert.False(t, h.state.HasRun())
}

func TestAnalyzeExhaustedNotifiesOnce(t *testing.T) {
	fail := connectors.Step{Err: &connectors.HTTPError{Status: 503, Message: "overloaded"}}
	h := newHarness(t, fail, fail, fail)

	out, err := h.orch.Analyze(context.Background(), retailRequest(domain.KindAllocation), "key")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, out.Status)
	assert.Equal(t, uint(3), out.Attempts)
	assert.Equal(t, []string{"Investment Analysis failed. Please try again."}, messages(h.feed))

	ev := h.journal.last()
	assert.Equal(t, "FAILED", ev.Status)
	assert.Contains(t, ev.Error, "overloaded")
}

func TestAnalyzeWithoutCredential(t *testing.T) {
	h := newHarness(t)

	out, err := h.orch.Analyze(context.Background(), retailRequest(domain.KindAllocation), "")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, out.Status)
	assert.ErrorIs(t, out.Err, connectors.ErrUnauthenticated)
	assert.Zero(t, h.transport.CallCount())
	assert.Equal(t, []string{"Investment Analysis failed. Please try again."}, messages(h.feed))
}

func TestPredictiveRequiresAllocation(t *testing.T) {
	h := newHarness(t)

	_, err := h.orch.Analyze(context.Background(), retailRequest(domain.KindPredictive), "key")
	assert.ErrorIs(t, err, ErrAllocationRequired)

	out, err := h.orch.Analyze(context.Background(), retailRequest(domain.KindAllocation), "key")
	require.NoError(t, err)
	require.Equal(t, StatusSucceeded, out.Status)

	out, err = h.orch.Analyze(context.Background(), retailRequest(domain.KindPredictive), "key")
	require.NoError(t, err)
	require.Equal(t, StatusSucceeded, out.Status)
	assert.Len(t, out.Risk, 5)
	assert.Equal(t, out.Risk, h.state.LastRisk())

	_, riskCards := h.renderer.counts()
	assert.Equal(t, 1, riskCards)
}

func TestPredictiveFailureMessage(t *testing.T) {
	h := newHarness(t, connectors.Step{Text: domain.SampleAnalysisJSON}, connectors.Step{Text: `{"risk_assessment": []}`})

	_, err := h.orch.Analyze(context.Background(), retailRequest(domain.KindAllocation), "key")
	require.NoError(t, err)

	out, err := h.orch.Analyze(context.Background(), retailRequest(domain.KindPredictive), "key")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, out.Status)
	assert.ErrorIs(t, out.Err, parser.ErrMissingFields)
	assert.Equal(t, "Predictive Analysis failed. Please try again.", messages(h.feed)[0])
}

func TestAnalyzeInvalidRequest(t *testing.T) {
	h := newHarness(t)
	req := retailRequest(domain.KindAllocation)
	req.BudgetMinorUnits = -5

	_, err := h.orch.Analyze(context.Background(), req, "key")
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, active := h.orch.Active()
	assert.False(t, active)
}

func TestAllocationFallbackWithoutInventory(t *testing.T) {
	raw := `{"initiatives": [], "dashboard_metrics": {"new_risk_score": 40}}`
	h := newHarness(t, connectors.Step{Text: raw})
	req := retailRequest(domain.KindAllocation)
	req.Inventory = nil

	out, err := h.orch.Analyze(context.Background(), req, "key")
	require.NoError(t, err)
	require.Equal(t, StatusSucceeded, out.Status)
	cov := out.Allocation.Metrics.HighRiskAssetsAddressed
	assert.False(t, cov.Addressed.Valid)
	assert.False(t, cov.Total.Valid)

	// Пустые детали — это пустые списки, не nil
	assert.NotNil(t, h.state.Details().AddressedAssets)
}
