package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/cyberinvest-pro/internal/domain"
)

func newRun(id string) (*ActiveRun, context.Context) {
	ctx, cancel := context.WithCancel(context.Background())
	return &ActiveRun{ID: id, Kind: domain.KindAllocation, cancel: cancel}, ctx
}

func TestRunStateSingleToken(t *testing.T) {
	s := NewRunState()
	a, _ := newRun("a")
	b, _ := newRun("b")

	require.True(t, s.TryAcquire(a))
	assert.False(t, s.TryAcquire(b))

	// Чужой Release токен не снимает
	s.Release("b")
	got, ok := s.Active()
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)

	s.Release("a")
	_, ok = s.Active()
	assert.False(t, ok)
	assert.True(t, s.TryAcquire(b))
}

func TestRunStateBootstrapKeepsHasRunFalse(t *testing.T) {
	s := NewRunState()
	s.Bootstrap(domain.AllocationResult{Initiatives: []domain.Initiative{{Name: "x"}}}, domain.SampleBudget)

	res, budget, ok := s.LastAllocation()
	require.True(t, ok)
	assert.Len(t, res.Initiatives, 1)
	assert.Equal(t, domain.SampleBudget, budget)
	assert.False(t, s.HasRun())
}

func TestCancelListenerSignals(t *testing.T) {
	s := NewRunState()
	l := NewCancelListener(nil, s, zap.NewNop())

	assert.False(t, l.handleCancelSignal("*"), "nothing to cancel")

	run, ctx := newRun("run-1")
	require.True(t, s.TryAcquire(run))

	assert.False(t, l.handleCancelSignal(""))
	assert.False(t, l.handleCancelSignal("run-2"))
	assert.NoError(t, ctx.Err())

	assert.True(t, l.handleCancelSignal(" run-1 "))
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestCancelListenerWildcard(t *testing.T) {
	s := NewRunState()
	l := NewCancelListener(nil, s, zap.NewNop())
	run, ctx := newRun("run-1")
	require.True(t, s.TryAcquire(run))

	assert.True(t, l.handleCancelSignal("*"))
	assert.Error(t, ctx.Err())
}
