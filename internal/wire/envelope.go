package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// BuildEnvelope wraps data in the length-prefixed payload envelope: a
// 2-byte big-endian length, the data bytes, then zero padding up to
// dataSize. The result is always LenPrefixSize+dataSize bytes, so every
// data frame of a session has the same wire size.
func BuildEnvelope(data []byte, dataSize int) ([]byte, error) {
	if dataSize > math.MaxUint16 {
		return nil, fmt.Errorf("data size %d exceeds u16 range", dataSize)
	}
	if len(data) > dataSize {
		return nil, fmt.Errorf("data length %d exceeds envelope capacity %d", len(data), dataSize)
	}
	out := make([]byte, LenPrefixSize+dataSize)
	binary.BigEndian.PutUint16(out[:LenPrefixSize], uint16(len(data)))
	copy(out[LenPrefixSize:], data)
	return out, nil
}

// ParseEnvelope returns the meaningful data slice of an envelope,
// buf[2 : 2+L]. The slice aliases buf; callers that keep it past the
// next socket read must copy.
func ParseEnvelope(buf []byte) ([]byte, error) {
	if len(buf) < LenPrefixSize {
		return nil, fmt.Errorf("short envelope")
	}
	n := int(binary.BigEndian.Uint16(buf[:LenPrefixSize]))
	if LenPrefixSize+n > len(buf) {
		return nil, fmt.Errorf("envelope length %d exceeds buffer", n)
	}
	return buf[LenPrefixSize : LenPrefixSize+n], nil
}
