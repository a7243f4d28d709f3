package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFeedKeepsNewestFirst(t *testing.T) {
	f := NewFeed(2)
	f.Notify(context.Background(), "one", SeverityInfo)
	f.Notify(context.Background(), "two", SeveritySuccess)
	f.Notify(context.Background(), "three", SeverityError)

	got := f.Recent()
	require.Len(t, got, 2)
	assert.Equal(t, "three", got[0].Message)
	assert.Equal(t, SeverityError, got[0].Severity)
	assert.Equal(t, "two", got[1].Message)
	assert.WithinDuration(t, time.Now(), got[0].Timestamp, time.Second)
}

func TestMultiFansOut(t *testing.T) {
	a, b := NewFeed(0), NewFeed(0)
	Multi{a, b}.Notify(context.Background(), "Analysis completed successfully!", SeveritySuccess)

	assert.Len(t, a.Recent(), 1)
	assert.Len(t, b.Recent(), 1)
}

func TestLogNotifierLevels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	n.Notify(context.Background(), "ok", SeveritySuccess)
	n.Notify(context.Background(), "Investment Analysis failed. Please try again.", SeverityError)

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "Investment Analysis failed. Please try again.", entries[1].Message)
}
