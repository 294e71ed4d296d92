package term

import (
	"time"
	"unicode/utf8"
)

// Control bytes the decoder cares about.
const (
	byteETX       = 0x03
	byteBackspace = 0x08
	byteESC       = 0x1b
	byteDEL       = 0x7f
)

// byteSource yields raw terminal bytes with a bounded wait; ok is false on
// timeout. Tests feed scripted byte sequences through this seam.
type byteSource interface {
	ReadByte(timeout time.Duration) (b byte, ok bool, err error)
}

// decoder turns raw byte sequences into key events.
type decoder struct {
	src byteSource
}

// ReadKey decodes one key event. A timeout with no input is (Key{}, false,
// nil). Bytes that do not decode to anything meaningful are also reported
// as absent rather than as errors, so the caller's render loop just ticks.
func (d *decoder) ReadKey(timeout time.Duration) (Key, bool, error) {
	b, ok, err := d.src.ReadByte(timeout)
	if err != nil || !ok {
		return Key{}, false, err
	}

	switch b {
	case byteETX:
		return Key{}, false, ErrInterrupt
	case '\r', '\n':
		return Key{Kind: KeyEnter}, true, nil
	case '\t':
		return Key{Kind: KeyTab}, true, nil
	case byteDEL, byteBackspace:
		return Key{Kind: KeyBackspace}, true, nil
	case byteESC:
		return d.readEscape(timeout)
	}

	if b < 0x20 {
		// Other control bytes carry no meaning here.
		return Key{}, false, nil
	}
	if b < utf8.RuneSelf {
		return Key{Kind: KeyRune, Rune: rune(b)}, true, nil
	}
	return d.readMultibyte(b, timeout)
}

// readEscape disambiguates a lone ESC from the start of a CSI arrow
// sequence using the same timeout window as the initial read.
func (d *decoder) readEscape(timeout time.Duration) (Key, bool, error) {
	b, ok, err := d.src.ReadByte(timeout)
	if err != nil {
		return Key{}, false, err
	}
	if !ok || b != '[' {
		return Key{Kind: KeyEsc}, true, nil
	}

	b, ok, err = d.src.ReadByte(timeout)
	if err != nil || !ok {
		return Key{}, false, err
	}
	switch b {
	case 'A':
		return Key{Kind: KeyUp}, true, nil
	case 'B':
		return Key{Kind: KeyDown}, true, nil
	case 'C':
		return Key{Kind: KeyRight}, true, nil
	case 'D':
		return Key{Kind: KeyLeft}, true, nil
	}
	// Unrecognized CSI sequence: swallow it this tick.
	return Key{}, false, nil
}

// readMultibyte assembles a UTF-8 rune whose lead byte has already been
// consumed. Invalid or truncated input decodes to absent, never an error.
func (d *decoder) readMultibyte(lead byte, timeout time.Duration) (Key, bool, error) {
	var want int
	switch {
	case lead&0xE0 == 0xC0:
		want = 1
	case lead&0xF0 == 0xE0:
		want = 2
	case lead&0xF8 == 0xF0:
		want = 3
	default:
		return Key{}, false, nil
	}

	buf := []byte{lead}
	for i := 0; i < want; i++ {
		b, ok, err := d.src.ReadByte(timeout)
		if err != nil {
			return Key{}, false, err
		}
		if !ok {
			return Key{}, false, nil
		}
		buf = append(buf, b)
	}

	r, _ := utf8.DecodeRune(buf)
	if r == utf8.RuneError {
		return Key{}, false, nil
	}
	return Key{Kind: KeyRune, Rune: r}, true, nil
}
