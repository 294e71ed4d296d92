// Package ui implements the interactive surfaces: the incremental search
// session with its result viewer and action menu, rendered directly through
// ANSI escapes on a raw terminal.
package ui

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"chatgrep/internal/corpus"
	"chatgrep/internal/search"
	"chatgrep/internal/term"
)

type viewMode int

const (
	viewSearch viewMode = iota
	viewViewer
	viewActions
)

const (
	frameWait  = 100 * time.Millisecond
	workerJoin = 2 * time.Second
)

// Session drives the interactive search loop. It owns the keyboard, the
// screen and the view stack; the debounced worker runs searches in the
// background against the shared state.
type Session struct {
	newKeys func() (term.KeySource, error)
	keys    term.KeySource
	screen  *term.Screen
	styles  *Styles

	state  *search.State
	worker *search.Worker
	store  *corpus.Store

	outputDir string
	logger    *zap.Logger

	showPreview bool
	mode        viewMode
	viewer      *viewer
	actions     *actionMenu
	lastOpened  string
}

// SessionOptions configures a Session.
type SessionOptions struct {
	// NewKeys opens a key source. It is called once at startup and again
	// after an external program (editor, pager) had the terminal.
	NewKeys     func() (term.KeySource, error)
	Screen      *term.Screen
	OutputDir   string
	ShowPreview bool
}

// NewSession wires a session over prepared search state and a corpus store.
func NewSession(state *search.State, worker *search.Worker, store *corpus.Store, opts SessionOptions, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Screen == nil {
		opts.Screen = term.NewScreen()
	}
	if opts.NewKeys == nil {
		opts.NewKeys = func() (term.KeySource, error) { return term.NewKeyboard() }
	}
	return &Session{
		newKeys:     opts.NewKeys,
		screen:      opts.Screen,
		styles:      NewStyles(),
		state:       state,
		worker:      worker,
		store:       store,
		outputDir:   opts.OutputDir,
		logger:      logger,
		showPreview: opts.ShowPreview,
	}
}

// Run executes the frame loop until the user leaves the session or the
// context is cancelled. It returns the path of the last conversation the
// user opened, if any.
func (s *Session) Run(ctx context.Context) (string, error) {
	keys, err := s.newKeys()
	if err != nil {
		return "", err
	}
	s.keys = keys
	defer func() { _ = s.keys.Close() }()

	s.worker.Start()
	defer func() {
		if !s.worker.Stop(workerJoin) {
			s.logger.Warn("search worker did not stop in time")
		}
	}()

	s.screen.HideCursor()
	defer s.screen.ShowCursor()
	defer s.screen.Clear()

	for {
		select {
		case <-ctx.Done():
			return s.lastOpened, ctx.Err()
		default:
		}

		s.render()

		key, ok, err := s.keys.ReadKey(frameWait)
		if errors.Is(err, term.ErrInterrupt) {
			return s.lastOpened, nil
		}
		if err != nil {
			return s.lastOpened, err
		}
		if !ok {
			continue
		}

		if s.dispatch(key) {
			return s.lastOpened, nil
		}
	}
}

func (s *Session) render() {
	width, height := s.screen.Size()

	var frame string
	switch s.mode {
	case viewViewer:
		frame = s.viewer.render(width, height)
	case viewActions:
		frame = s.actions.render(width)
	default:
		frame = renderSearch(s.state.Snapshot(), s.showPreview, s.styles, width)
	}

	s.screen.Clear()
	s.screen.Print(frame)
}

// dispatch routes one key to the active view. It reports whether the
// session should end.
func (s *Session) dispatch(key term.Key) bool {
	switch s.mode {
	case viewViewer:
		switch s.viewer.handleKey(key) {
		case viewerBack:
			s.mode = viewSearch
		case viewerActions:
			s.actions = newActionMenu(s.viewer.transcript, s.outputDir, s.suspend, s.styles, s.logger)
			s.mode = viewActions
		}
		return false

	case viewActions:
		switch s.actions.handleKey(key) {
		case actionBackViewer:
			s.mode = viewViewer
		case actionBackSearch:
			s.mode = viewSearch
		case actionQuit:
			return true
		}
		return false
	}

	return s.handleSearchKey(key)
}

func (s *Session) handleSearchKey(key term.Key) bool {
	switch key.Kind {
	case term.KeyEsc:
		return true
	case term.KeyEnter:
		s.openSelected()
	case term.KeyTab:
		s.showPreview = !s.showPreview
	case term.KeyUp:
		s.state.MoveSelection(-1)
	case term.KeyDown:
		s.state.MoveSelection(1)
	case term.KeyLeft:
		s.state.CursorLeft()
	case term.KeyRight:
		s.state.CursorRight()
	case term.KeyBackspace:
		s.state.Backspace()
	case term.KeyRune:
		s.state.InsertRune(key.Rune)
	}
	return false
}

// openSelected loads the selected result's transcript and switches to the
// viewer positioned at the matched message.
func (s *Session) openSelected() {
	result, ok := s.state.Selected()
	if !ok {
		return
	}

	transcript, err := s.store.Get(result.Path)
	if err != nil {
		s.logger.Warn("failed to open conversation", zap.String("path", result.Path), zap.Error(err))
		return
	}

	width, _ := s.screen.Size()
	s.viewer = newViewer(transcript, s.styles, width)
	if query := s.state.Query(); query != "" {
		s.viewer.searchFor(query)
	}
	s.lastOpened = result.Path
	s.mode = viewViewer
}

// suspend hands the terminal to an external program and reacquires the
// keyboard afterwards. The run error is reported, but a failure to reopen
// the keyboard takes precedence since the session cannot continue without it.
func (s *Session) suspend(run func() error) error {
	_ = s.keys.Close()
	runErr := run()

	keys, err := s.newKeys()
	if err != nil {
		return err
	}
	s.keys = keys
	s.screen.HideCursor()
	return runErr
}
