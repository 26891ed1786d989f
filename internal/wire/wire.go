// Package wire implements the on-wire objects of the stop-and-wait
// transfer protocol: data frames, acknowledgments, the length-prefixed
// payload envelope, the alternating-bit sequence helpers, and the
// bit-error channel simulator applied at the sending side.
package wire

import "math/bits"

// AckCode is the fixed first byte of every acknowledgment.
const AckCode byte = 0b0000_1100

// SequenceZero and SequenceOne are the two alternating-bit sequence
// bytes. They sit outside the frame checksum, so all-zeros/all-ones keeps
// them recoverable by majority vote after bit errors.
const (
	SequenceZero byte = 0x00
	SequenceOne  byte = 0xFF
)

// Well-known endpoint ports, kept as strings for address formatting.
const (
	RXPort = "29170"
	TXPort = "29172"
)

// Session phase markers carried in frame payloads.
var (
	SOTMarker = []byte("__SOT__")
	SOFMarker = []byte("__SOF__")
	EOFMarker = []byte("__EOF__")
	EOTMarker = []byte("__EOT__")
)

const (
	// MarkerSize is the length of every phase marker.
	MarkerSize = 7

	// LenPrefixSize is the size of the envelope length prefix.
	LenPrefixSize = 2

	// FrameOverhead is the frame trailer: 4 checksum bytes plus the
	// sequence byte.
	FrameOverhead = 5

	// SOTPayloadSize is the SOT marker followed by the transmitter's
	// IPv4 address. The SOT payload is raw, not an envelope: it is sent
	// before the session data size has been negotiated.
	SOTPayloadSize = MarkerSize + 4

	// ParamsPayloadSize is the raw payload of the transfer-parameters
	// frame: the session data size as a big-endian u16.
	ParamsPayloadSize = 2
)

// CorrectSequence recovers a sequence byte that may have been corrupted
// in flight. Honest values are all-zeros or all-ones, so a majority vote
// over the bits tolerates up to three flips. The 4/4 tie resolves to
// SequenceOne.
func CorrectSequence(b byte) byte {
	ones := bits.OnesCount8(b)
	switch {
	case ones > 8-ones:
		return SequenceOne
	case ones < 8-ones:
		return SequenceZero
	default:
		return SequenceOne
	}
}

// FlipSequence toggles between the two sequence bytes, correcting the
// input first when it is neither.
func FlipSequence(b byte) byte {
	switch b {
	case SequenceZero:
		return SequenceOne
	case SequenceOne:
		return SequenceZero
	}
	return FlipSequence(CorrectSequence(b))
}
