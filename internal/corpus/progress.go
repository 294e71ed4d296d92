package corpus

import (
	"sync"

	"chatgrep/internal/domain"
	"chatgrep/internal/eventbus"
)

// Progress tracks the current scan state from bus events so UIs can poll
// it without subscribing themselves.
type Progress struct {
	mu      sync.Mutex
	current domain.ScanProgress
}

// NewProgress creates an idle progress tracker.
func NewProgress() *Progress {
	return &Progress{}
}

// Attach subscribes to scan events. The returned function unsubscribes.
func (p *Progress) Attach(bus eventbus.EventBus) func() {
	unsubStarted := bus.Subscribe(eventbus.EventScanStarted, func(eventbus.DomainEvent) {
		p.mu.Lock()
		p.current = domain.ScanProgress{IsScanning: true}
		p.mu.Unlock()
	})
	unsubFound := bus.Subscribe(eventbus.EventTranscriptDiscovered, func(event eventbus.DomainEvent) {
		discovered, ok := event.(eventbus.TranscriptDiscoveredEvent)
		if !ok {
			return
		}
		p.mu.Lock()
		p.current.Found++
		p.current.CurrentPath = discovered.Transcript.Path
		p.mu.Unlock()
	})
	unsubDone := bus.Subscribe(eventbus.EventScanCompleted, func(event eventbus.DomainEvent) {
		completed, ok := event.(eventbus.ScanCompletedEvent)
		if !ok {
			return
		}
		p.mu.Lock()
		p.current = domain.ScanProgress{Found: completed.Found}
		p.mu.Unlock()
	})

	return func() {
		unsubStarted()
		unsubFound()
		unsubDone()
	}
}

// Current returns a copy of the latest scan state.
func (p *Progress) Current() domain.ScanProgress {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}
