package term

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptSource replays a fixed byte sequence; exhaustion reads as timeout.
type scriptSource struct {
	bytes []byte
}

func (s *scriptSource) ReadByte(timeout time.Duration) (byte, bool, error) {
	if len(s.bytes) == 0 {
		return 0, false, nil
	}
	b := s.bytes[0]
	s.bytes = s.bytes[1:]
	return b, true, nil
}

func readOne(t *testing.T, input ...byte) (Key, bool, error) {
	t.Helper()
	d := decoder{src: &scriptSource{bytes: input}}
	return d.ReadKey(10 * time.Millisecond)
}

func TestDecodePrintable(t *testing.T) {
	t.Parallel()
	key, ok, err := readOne(t, 'a')
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Key{Kind: KeyRune, Rune: 'a'}, key)
}

func TestDecodeEnter(t *testing.T) {
	t.Parallel()
	for _, b := range []byte{'\r', '\n'} {
		key, ok, err := readOne(t, b)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, KeyEnter, key.Kind)
	}
}

func TestDecodeBackspaceVariants(t *testing.T) {
	t.Parallel()
	for _, b := range []byte{0x7f, 0x08} {
		key, ok, err := readOne(t, b)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, KeyBackspace, key.Kind)
	}
}

func TestDecodeTab(t *testing.T) {
	t.Parallel()
	key, ok, err := readOne(t, '\t')
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, KeyTab, key.Kind)
}

func TestDecodeArrows(t *testing.T) {
	t.Parallel()
	cases := map[byte]KeyKind{
		'A': KeyUp,
		'B': KeyDown,
		'C': KeyRight,
		'D': KeyLeft,
	}
	for final, want := range cases {
		key, ok, err := readOne(t, 0x1b, '[', final)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, want, key.Kind)
	}
}

func TestDecodeLoneEscape(t *testing.T) {
	t.Parallel()
	// No follow-up byte within the window means a real ESC press.
	key, ok, err := readOne(t, 0x1b)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, KeyEsc, key.Kind)
}

func TestDecodeUnknownCSISwallowed(t *testing.T) {
	t.Parallel()
	_, ok, err := readOne(t, 0x1b, '[', 'Z')
	require.NoError(t, err)
	assert.False(t, ok, "unrecognized sequences are absent, not errors")
}

func TestDecodeInterrupt(t *testing.T) {
	t.Parallel()
	_, _, err := readOne(t, 0x03)
	assert.ErrorIs(t, err, ErrInterrupt)
}

func TestDecodeTimeout(t *testing.T) {
	t.Parallel()
	_, ok, err := readOne(t)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecodeUTF8(t *testing.T) {
	t.Parallel()
	key, ok, err := readOne(t, 0xc3, 0xa9) // é
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Key{Kind: KeyRune, Rune: 'é'}, key)

	key, ok, err = readOne(t, 0xe4, 0xb8, 0xad) // 中
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, '中', key.Rune)
}

func TestDecodeInvalidUTF8(t *testing.T) {
	t.Parallel()
	// Invalid lead byte.
	_, ok, err := readOne(t, 0xff)
	require.NoError(t, err)
	assert.False(t, ok)

	// Truncated sequence: the continuation byte never arrives.
	_, ok, err = readOne(t, 0xc3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecodeOtherControlBytesAbsent(t *testing.T) {
	t.Parallel()
	_, ok, err := readOne(t, 0x01)
	require.NoError(t, err)
	assert.False(t, ok)
}
