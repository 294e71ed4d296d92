package term

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/muesli/cancelreader"
	xterm "golang.org/x/term"
)

// Keyboard reads decoded key events from stdin while holding the terminal
// in raw mode. Close restores the previous terminal mode unconditionally.
// x/term handles the platform differences (termios vs. Windows console), so
// there is a single implementation.
type Keyboard struct {
	dec       decoder
	reader    cancelreader.CancelReader
	fd        int
	prevState *xterm.State
	bytes     chan byte
	closeOnce sync.Once
	closeErr  error
}

// NewKeyboard puts the terminal into raw mode and starts the read pump.
func NewKeyboard() (*Keyboard, error) {
	fd := int(os.Stdin.Fd())
	prev, err := xterm.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to enter raw mode: %w", err)
	}

	reader, err := cancelreader.NewReader(os.Stdin)
	if err != nil {
		_ = xterm.Restore(fd, prev)
		return nil, fmt.Errorf("failed to open input reader: %w", err)
	}

	k := &Keyboard{
		reader:    reader,
		fd:        fd,
		prevState: prev,
		bytes:     make(chan byte, 64),
	}
	k.dec = decoder{src: k}

	go k.pump()
	return k, nil
}

// ReadKey implements KeySource.
func (k *Keyboard) ReadKey(timeout time.Duration) (Key, bool, error) {
	return k.dec.ReadKey(timeout)
}

// ReadByte implements byteSource over the pump channel.
func (k *Keyboard) ReadByte(timeout time.Duration) (byte, bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case b, ok := <-k.bytes:
		if !ok {
			return 0, false, nil
		}
		return b, true, nil
	case <-timer.C:
		return 0, false, nil
	}
}

// Close cancels the pump and restores the terminal mode. Safe to call more
// than once; restoration happens even if cancellation fails.
func (k *Keyboard) Close() error {
	k.closeOnce.Do(func() {
		k.reader.Cancel()
		k.closeErr = xterm.Restore(k.fd, k.prevState)
	})
	return k.closeErr
}

// pump moves stdin bytes onto the channel until the reader is cancelled.
func (k *Keyboard) pump() {
	defer close(k.bytes)

	buf := make([]byte, 256)
	for {
		n, err := k.reader.Read(buf)
		for i := 0; i < n; i++ {
			k.bytes <- buf[i]
		}
		if err != nil {
			return
		}
	}
}
