package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestWire_Sequence_Flip(t *testing.T) {
	t.Parallel()
	require.Equal(t, SequenceOne, FlipSequence(SequenceZero))
	require.Equal(t, SequenceZero, FlipSequence(SequenceOne))
}

func TestWire_Sequence_FlipCorrectsDamagedInput(t *testing.T) {
	t.Parallel()
	// 0xFE is one flip away from SequenceOne, so it flips to zero.
	require.Equal(t, SequenceZero, FlipSequence(0xFE))
	require.Equal(t, SequenceOne, FlipSequence(0x01))
}

// A sequence byte within Hamming distance 3 of an honest value corrects
// back to that value.
func TestWire_Sequence_CorrectToleratesThreeFlips(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		honest := rapid.SampledFrom([]byte{SequenceZero, SequenceOne}).Draw(t, "honest")
		nFlips := rapid.IntRange(0, 3).Draw(t, "nFlips")
		bitIdxs := rapid.SliceOfNDistinct(rapid.IntRange(0, 7), nFlips, nFlips, rapid.ID).Draw(t, "bits")

		damaged := honest
		for _, i := range bitIdxs {
			damaged ^= 1 << i
		}
		require.Equal(t, honest, CorrectSequence(damaged))
	})
}

func TestWire_Sequence_TieDefaultsToOne(t *testing.T) {
	t.Parallel()
	require.Equal(t, SequenceOne, CorrectSequence(0x0F))
	require.Equal(t, SequenceOne, CorrectSequence(0xF0))
	require.Equal(t, SequenceOne, CorrectSequence(0b0101_0101))
}
