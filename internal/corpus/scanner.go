package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"chatgrep/internal/domain"
	"chatgrep/internal/eventbus"
)

// Scanner finds transcript files in the filesystem
type Scanner interface {
	StartScan(ctx context.Context, roots []string) error
	StopScan()
}

// scanner is the concrete implementation
type scanner struct {
	bus        eventbus.EventBus
	logger     *zap.Logger
	mu         sync.Mutex
	isScanning bool
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewScanner creates a new transcript scanner
func NewScanner(bus eventbus.EventBus, logger *zap.Logger) Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &scanner{bus: bus, logger: logger}

	// Subscribe to scan requests
	bus.Subscribe(eventbus.EventScanRequested, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.ScanRequestedEvent); ok {
			go s.StartScan(context.Background(), event.Roots)
		}
	})

	return s
}

// StartScan starts scanning for transcript files
func (s *scanner) StartScan(ctx context.Context, roots []string) error {
	s.mu.Lock()
	if s.isScanning {
		s.mu.Unlock()
		return fmt.Errorf("scan already in progress")
	}
	s.isScanning = true

	scanCtx, cancel := context.WithCancel(ctx)
	s.cancelFunc = cancel
	s.mu.Unlock()

	s.bus.Publish(eventbus.ScanStartedEvent{Roots: roots})

	found := 0

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			s.isScanning = false
			s.cancelFunc = nil
			s.mu.Unlock()

			s.bus.Publish(eventbus.ScanCompletedEvent{Found: found})
		}()

		for _, root := range roots {
			select {
			case <-scanCtx.Done():
				return
			default:
				found += s.scanDirectory(scanCtx, root)
			}
		}
	}()

	return nil
}

// StopScan stops any ongoing scan
func (s *scanner) StopScan() {
	s.mu.Lock()
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// scanDirectory walks a directory tree publishing an event per .jsonl file
func (s *scanner) scanDirectory(ctx context.Context, root string) int {
	found := 0
	maxDepth := 5

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			s.logger.Warn("error walking path", zap.String("path", path), zap.Error(err))
			return nil // Continue walking
		}

		if d.IsDir() {
			relPath, _ := filepath.Rel(root, path)
			if strings.Count(relPath, string(filepath.Separator)) > maxDepth {
				return filepath.SkipDir
			}
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.EqualFold(filepath.Ext(d.Name()), ".jsonl") {
			return nil
		}

		info, err := os.Stat(path)
		if err != nil {
			s.logger.Warn("failed to stat transcript", zap.String("path", path), zap.Error(err))
			return nil
		}

		s.bus.Publish(eventbus.TranscriptDiscoveredEvent{
			Transcript: domain.Transcript{
				Path:           path,
				ConversationID: ConversationID(path),
				Project:        filepath.Base(filepath.Dir(path)),
				Modified:       info.ModTime(),
				SizeBytes:      info.Size(),
			},
		})
		found++
		return nil
	})

	if err != nil && err != context.Canceled {
		s.logger.Error("error scanning directory", zap.String("root", root), zap.Error(err))
		s.bus.Publish(eventbus.ErrorEvent{
			Message: fmt.Sprintf("Failed to scan %s", root),
			Err:     err,
		})
	}

	return found
}

// skipDir filters directories that never hold transcripts
func skipDir(name string) bool {
	switch name {
	case "node_modules", "vendor", "dist", "build", "target",
		"__pycache__", ".git", ".cache", ".venv", "venv":
		return true
	}
	return false
}
