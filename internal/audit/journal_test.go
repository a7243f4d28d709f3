package audit

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memStorage struct {
	mu      sync.Mutex
	batches [][]RunEvent
}

func (m *memStorage) WriteBatch(_ context.Context, events []RunEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, append([]RunEvent(nil), events...))
	return nil
}

func (m *memStorage) all() []RunEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []RunEvent
	for _, b := range m.batches {
		out = append(out, b...)
	}
	return out
}

func TestJournalFlushesOnStop(t *testing.T) {
	store := &memStorage{}
	j := NewJournal(store, 0, 0, zap.NewNop(), nil)
	j.Start()

	for i := 0; i < 250; i++ {
		j.Log(RunEvent{ID: "run", Status: "SUCCEEDED"})
	}
	j.Stop()

	events := store.all()
	require.Len(t, events, 250)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestJournalDropsAfterStop(t *testing.T) {
	store := &memStorage{}
	j := NewJournal(store, 0, 0, zap.NewNop(), nil)
	j.Start()
	j.Stop()

	j.Log(RunEvent{ID: "late"})
	j.Stop()

	assert.Empty(t, store.all())
}
