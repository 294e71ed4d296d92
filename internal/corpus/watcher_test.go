package corpus

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chatgrep/internal/eventbus"
)

func TestWatcherPublishesOnCreateAndWrite(t *testing.T) {
	root := t.TempDir()

	bus := eventbus.New(nil)
	defer bus.Close()

	var mu sync.Mutex
	var discovered, changed int
	bus.Subscribe(eventbus.EventTranscriptDiscovered, func(eventbus.DomainEvent) {
		mu.Lock()
		discovered++
		mu.Unlock()
	})
	bus.Subscribe(eventbus.EventTranscriptChanged, func(eventbus.DomainEvent) {
		mu.Lock()
		changed++
		mu.Unlock()
	})

	watcher, err := NewWatcher(bus, nil, root)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	// Give the watch loop a moment to come up before generating events.
	time.Sleep(50 * time.Millisecond)

	path := filepath.Join(root, "live.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"user","content":"hi"}`+"\n"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return discovered >= 1
	}, 5*time.Second, 10*time.Millisecond, "creating a transcript should publish a discovery event")

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"type":"assistant","content":"hello"}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return changed >= 1
	}, 5*time.Second, 10*time.Millisecond, "appending should publish a change event")
}
