// Package term owns raw-terminal concerns: decoding keystrokes from raw
// byte sequences with a bounded wait, and the ANSI screen helpers the
// session renderer draws with.
package term

import (
	"errors"
	"time"
)

// KeyKind names the small vocabulary of key events the UI dispatches on.
type KeyKind int

const (
	KeyRune KeyKind = iota
	KeyEnter
	KeyEsc
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyBackspace
	KeyTab
)

// Key is one decoded key event.
type Key struct {
	Kind KeyKind
	Rune rune // set for KeyRune
}

// ErrInterrupt is returned when the user hits Ctrl+C in raw mode. It is a
// distinct condition, never a silently swallowed key.
var ErrInterrupt = errors.New("keyboard interrupt")

// KeySource delivers key events with a bounded wait. ok is false when no
// key arrived within the timeout, which is not an error.
type KeySource interface {
	ReadKey(timeout time.Duration) (key Key, ok bool, err error)
	Close() error
}
