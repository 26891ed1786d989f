package wire

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// Frame is the data-carrying packet: a payload (usually a length-prefixed
// envelope, raw for SOT and transfer parameters), a CRC-32 over the
// payload, and the alternating-bit sequence byte. The sequence byte is
// deliberately NOT covered by the checksum so that a corrupted one can
// still be recovered with CorrectSequence.
type Frame struct {
	Payload  []byte // envelope or raw handshake payload
	Checksum uint32 // CRC-32 (IEEE) over Payload
	Sequence byte   // SequenceZero or SequenceOne
}

// NewFrame builds a frame over payload, computing its checksum.
func NewFrame(payload []byte, sequence byte) *Frame {
	return &Frame{
		Payload:  payload,
		Checksum: crc32.ChecksumIEEE(payload),
		Sequence: sequence,
	}
}

// Marshal serializes the frame into its wire image.
//
// Layout (big endian), for a payload of n bytes:
//
//	0..n:      payload
//	n..n+4:    CRC-32 over payload
//	n+4:       sequence byte
func (f *Frame) Marshal() []byte {
	b := make([]byte, len(f.Payload)+FrameOverhead)
	copy(b, f.Payload)
	binary.BigEndian.PutUint32(b[len(f.Payload):], f.Checksum)
	b[len(b)-1] = f.Sequence
	return b
}

// UnmarshalFrame parses a received wire image: everything before the
// 5-byte trailer is the payload. No validity judgment is made here; use
// Valid. The payload is copied out of b, so the read buffer may be
// reused.
func UnmarshalFrame(b []byte) (*Frame, error) {
	if len(b) <= FrameOverhead {
		return nil, fmt.Errorf("short frame")
	}
	n := len(b) - FrameOverhead
	payload := make([]byte, n)
	copy(payload, b[:n])
	return &Frame{
		Payload:  payload,
		Checksum: binary.BigEndian.Uint32(b[n : n+4]),
		Sequence: b[len(b)-1],
	}, nil
}

// Valid reports whether the payload still matches its checksum.
func (f *Frame) Valid() bool {
	return crc32.ChecksumIEEE(f.Payload) == f.Checksum
}
