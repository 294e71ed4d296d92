// Package cli wires the application together behind a cobra command tree:
// the interactive menu as the root command plus one-shot search, extract
// and list subcommands.
package cli

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"chatgrep/internal/config"
	"chatgrep/internal/corpus"
	"chatgrep/internal/eventbus"
	"chatgrep/internal/logging"
	"chatgrep/internal/search"
	"chatgrep/internal/semantic"
)

// app holds the wired services shared by all commands.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	closeLog func()
	bus      eventbus.EventBus
	store    *corpus.Store
	progress *corpus.Progress
	scanner  corpus.Scanner
	semantic search.Semantic // nil when the semantic strategy is disabled
	provider *semantic.Provider
	detach   []func()
}

// newApp builds the service graph: logging, event bus, configuration,
// corpus store and scanner, and the optional semantic provider.
func newApp() (*app, error) {
	logger, closeLog, err := logging.New(logging.Options{File: flagLogFile, Debug: flagDebug})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	bus := eventbus.New(logger)

	cfg, err := loadConfig(bus)
	if err != nil {
		closeLog()
		bus.Close()
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		closeLog: closeLog,
		bus:      bus,
		store:    corpus.NewStore(logger),
		progress: corpus.NewProgress(),
	}
	a.detach = append(a.detach, a.store.Attach(bus))
	a.detach = append(a.detach, a.progress.Attach(bus))
	a.scanner = corpus.NewScanner(bus, logger)

	if cfg.Semantic.Enabled {
		apiKey := os.Getenv(cfg.Semantic.APIKeyEnv)
		if apiKey == "" {
			logger.Warn("semantic search enabled but API key env is empty",
				zap.String("env", cfg.Semantic.APIKeyEnv))
		} else {
			model := chromem.EmbeddingModelOpenAI3Small
			if cfg.Semantic.Model != "" {
				model = chromem.EmbeddingModelOpenAI(cfg.Semantic.Model)
			}
			provider, err := semantic.NewProvider(chromem.NewEmbeddingFuncOpenAI(apiKey, model), logger)
			if err != nil {
				logger.Warn("semantic provider unavailable", zap.Error(err))
			} else {
				a.provider = provider
				a.semantic = provider
			}
		}
	}

	return a, nil
}

func loadConfig(bus eventbus.EventBus) (*config.Config, error) {
	svc := config.NewConfigServiceWithBus(bus)
	if flagConfig != "" {
		return svc.LoadFromPath(flagConfig)
	}
	return svc.Load()
}

// Close tears the app down in reverse wiring order.
func (a *app) Close() {
	for i := len(a.detach) - 1; i >= 0; i-- {
		a.detach[i]()
	}
	a.bus.Close()
	a.closeLog()
}

// scanAndWait runs one corpus scan and returns once the store has consumed
// every discovery event. Bus dispatch is ordered, so the completion event
// arriving means the store is current.
func (a *app) scanAndWait(ctx context.Context) error {
	done := make(chan struct{})
	var once sync.Once
	unsub := a.bus.Subscribe(eventbus.EventScanCompleted, func(eventbus.DomainEvent) {
		once.Do(func() { close(done) })
	})
	defer unsub()

	// StartScan only fails when a scan is already running; its completion
	// event satisfies the wait just the same.
	_ = a.scanner.StartScan(ctx, []string{a.cfg.LogsRoot})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// indexSemantic feeds the scanned corpus into the semantic provider. A
// failure downgrades to keyword-only search rather than aborting.
func (a *app) indexSemantic(ctx context.Context) {
	if a.provider == nil {
		return
	}
	transcripts, err := a.store.Conversations(ctx)
	if err != nil {
		a.logger.Warn("failed to load corpus for semantic indexing", zap.Error(err))
		return
	}
	if err := a.provider.Index(ctx, transcripts); err != nil {
		a.logger.Warn("semantic indexing failed", zap.Error(err))
		a.semantic = nil
	}
}

// searchOptions translates configuration into search options.
func (a *app) searchOptions() search.Options {
	return search.Options{
		MaxResults:    a.cfg.Search.MaxResults,
		CaseSensitive: a.cfg.Search.CaseSensitive,
	}
}

// newSearchStack builds the state, cache and worker for one interactive
// search session.
func (a *app) newSearchStack() (*search.State, *search.Worker) {
	cache := search.NewCache()
	state := search.NewState(cache)

	ranker := search.NewRanker(a.semantic, a.logger)
	composer := search.NewComposer(ranker, a.semantic, a.logger)
	opts := a.searchOptions()
	compose := func(ctx context.Context, query string) ([]search.Result, error) {
		return composer.Compose(ctx, query, a.store, opts)
	}

	worker := search.NewWorker(state, cache, compose, search.WorkerOptions{
		Poll:     msToDuration(a.cfg.Search.PollMS),
		Debounce: msToDuration(a.cfg.Search.DebounceMS),
	}, a.logger)
	return state, worker
}
