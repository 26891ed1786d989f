package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestWire_Envelope_RoundTrip(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		size := rapid.IntRange(0, 256).Draw(t, "size")
		data := rapid.SliceOfN(rapid.Byte(), 0, size).Draw(t, "data")

		env, err := BuildEnvelope(data, size)
		require.NoError(t, err)
		require.Len(t, env, LenPrefixSize+size)

		got, err := ParseEnvelope(env)
		require.NoError(t, err)
		require.Equal(t, data, append([]byte{}, got...))
	})
}

func TestWire_Envelope_HelloExactBytes(t *testing.T) {
	t.Parallel()
	env, err := BuildEnvelope([]byte("hello"), 8)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x05, 'h', 'e', 'l', 'l', 'o', 0x00, 0x00, 0x00}, env)
}

func TestWire_Envelope_DataTooLarge(t *testing.T) {
	t.Parallel()
	_, err := BuildEnvelope(make([]byte, 9), 8)
	require.EqualError(t, err, "data length 9 exceeds envelope capacity 8")
}

func TestWire_Envelope_ParseShort(t *testing.T) {
	t.Parallel()
	_, err := ParseEnvelope([]byte{0x01})
	require.EqualError(t, err, "short envelope")
}

func TestWire_Envelope_ParseBadLength(t *testing.T) {
	t.Parallel()
	_, err := ParseEnvelope([]byte{0x00, 0x09, 'x', 'y'})
	require.EqualError(t, err, "envelope length 9 exceeds buffer")
}
