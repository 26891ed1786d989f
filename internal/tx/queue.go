package tx

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/malbeclabs/stopandwait/internal/wire"
)

// BuildQueue prepares the full ordered frame sequence for one session:
//
//	SOT, transfer parameters, SOF, the data frames, EOF, the end-to-end
//	checksum, the filename, EOT.
//
// Sequence bytes alternate starting at SequenceZero for SOT, so frames
// at even queue positions carry 0x00 and frames at odd positions 0xFF.
// Retransmissions always resend the head; a frame leaves the queue only
// on its positive acknowledgment.
func BuildQueue(data []byte, filename string, localIP [4]byte, dataSize int) ([]*wire.Frame, error) {
	if dataSize < 8 || dataSize%8 != 0 || dataSize > maxDataSize {
		return nil, fmt.Errorf("data size %d must be a multiple of 8 in [8, %d]", dataSize, maxDataSize)
	}

	nData := (len(data) + dataSize - 1) / dataSize
	frames := make([]*wire.Frame, 0, nData+7)
	seq := wire.SequenceZero
	push := func(payload []byte) {
		frames = append(frames, wire.NewFrame(payload, seq))
		seq = wire.FlipSequence(seq)
	}
	pushEnvelope := func(data []byte, capacity int) error {
		env, err := wire.BuildEnvelope(data, capacity)
		if err != nil {
			return err
		}
		push(env)
		return nil
	}

	sot := make([]byte, 0, wire.SOTPayloadSize)
	sot = append(sot, wire.SOTMarker...)
	sot = append(sot, localIP[:]...)
	push(sot)

	params := make([]byte, wire.ParamsPayloadSize)
	binary.BigEndian.PutUint16(params, uint16(dataSize))
	push(params)

	if err := pushEnvelope(wire.SOFMarker, dataSize); err != nil {
		return nil, err
	}
	for off := 0; off < len(data); off += dataSize {
		end := min(off+dataSize, len(data))
		if err := pushEnvelope(data[off:end], dataSize); err != nil {
			return nil, err
		}
	}
	if err := pushEnvelope(wire.EOFMarker, dataSize); err != nil {
		return nil, err
	}

	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc32.ChecksumIEEE(data))
	if err := pushEnvelope(sum[:], dataSize); err != nil {
		return nil, err
	}

	// The filename envelope grows past the session data size when the
	// name does not fit; the receiver reads it with a wider buffer.
	if err := pushEnvelope([]byte(filename), max(dataSize, len(filename))); err != nil {
		return nil, err
	}

	if err := pushEnvelope(wire.EOTMarker, dataSize); err != nil {
		return nil, err
	}
	return frames, nil
}
