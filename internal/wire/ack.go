package wire

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// AckSize is the fixed on-wire size of an acknowledgment.
const AckSize = 10

// Ack is a positive acknowledgment. Sequence carries the acknowledging
// endpoint's next expected sequence byte; SenderIP carries its IPv4 so
// the transmitter can pin the peer during the broadcast handshake.
type Ack struct {
	Code     byte    // must equal AckCode
	Sequence byte    // next expected sequence byte
	SenderIP [4]byte // IPv4 of the acknowledging endpoint
	Checksum uint32  // CRC-32 (IEEE) over the first six wire bytes
}

// NewAck builds an acknowledgment for the next expected sequence byte.
func NewAck(nextExpected byte, senderIP [4]byte) *Ack {
	a := &Ack{Code: AckCode, Sequence: nextExpected, SenderIP: senderIP}
	a.Checksum = crc32.ChecksumIEEE(a.header())
	return a
}

func (a *Ack) header() []byte {
	h := make([]byte, 6)
	h[0] = a.Code
	h[1] = a.Sequence
	copy(h[2:], a.SenderIP[:])
	return h
}

// Marshal serializes the acknowledgment into its fixed 10-byte wire
// image.
//
// Layout (big endian):
//
//	0:     ack code (0x0C)
//	1:     next expected sequence byte
//	2..6:  sender IPv4
//	6..10: CRC-32 over bytes [0..6)
func (a *Ack) Marshal() []byte {
	b := make([]byte, AckSize)
	copy(b, a.header())
	binary.BigEndian.PutUint32(b[6:], a.Checksum)
	return b
}

// UnmarshalAck parses a 10-byte acknowledgment. Use Valid to judge it.
func UnmarshalAck(b []byte) (*Ack, error) {
	if len(b) < AckSize {
		return nil, fmt.Errorf("short ack")
	}
	a := &Ack{
		Code:     b[0],
		Sequence: b[1],
		Checksum: binary.BigEndian.Uint32(b[6:AckSize]),
	}
	copy(a.SenderIP[:], b[2:6])
	return a, nil
}

// Valid reports whether the ack code and the header checksum are intact.
// Callers still run CorrectSequence over Sequence before comparing, the
// same discipline as for frames.
func (a *Ack) Valid() bool {
	return a.Code == AckCode && crc32.ChecksumIEEE(a.header()) == a.Checksum
}
