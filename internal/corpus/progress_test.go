package corpus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatgrep/internal/domain"
	"chatgrep/internal/eventbus"
)

func TestProgressTracksScanLifecycle(t *testing.T) {
	t.Parallel()
	bus := eventbus.New(nil)
	defer bus.Close()

	progress := NewProgress()
	defer progress.Attach(bus)()

	bus.Publish(eventbus.ScanStartedEvent{Roots: []string{"/logs"}})
	require.Eventually(t, func() bool { return progress.Current().IsScanning },
		time.Second, 5*time.Millisecond)

	bus.Publish(eventbus.TranscriptDiscoveredEvent{Transcript: domain.Transcript{Path: "/logs/a.jsonl"}})
	bus.Publish(eventbus.TranscriptDiscoveredEvent{Transcript: domain.Transcript{Path: "/logs/b.jsonl"}})
	require.Eventually(t, func() bool { return progress.Current().Found == 2 },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, "/logs/b.jsonl", progress.Current().CurrentPath)

	bus.Publish(eventbus.ScanCompletedEvent{Found: 2})
	require.Eventually(t, func() bool {
		cur := progress.Current()
		return !cur.IsScanning && cur.Found == 2
	}, time.Second, 5*time.Millisecond)
}
