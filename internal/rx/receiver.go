package rx

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"log/slog"
	"net"

	"github.com/malbeclabs/stopandwait/internal/netx"
	"github.com/malbeclabs/stopandwait/internal/wire"
)

// Receiver is the receiving endpoint: a single-threaded loop that walks
// the session state machine, acknowledges every accepted frame with its
// next expected sequence byte, re-acknowledges duplicates, and silently
// drops anything that fails its checksum so the transmitter recovers by
// timeout.
type Receiver struct {
	log *slog.Logger
	cfg *Config

	state        State
	expected     byte // sequence byte the next new frame must carry
	envelopeSize int  // length prefix + session data size, known after params
	data         []byte
	filename     string
	receivedSum  uint32
}

// Result is the outcome of one completed session.
type Result struct {
	Data             []byte
	Filename         string
	ReceivedChecksum uint32 // CRC-32 announced by the transmitter
	ComputedChecksum uint32 // CRC-32 over the reconstructed data
}

// ChecksumOK reports end-to-end integrity.
func (r *Result) ChecksumOK() bool { return r.ReceivedChecksum == r.ComputedChecksum }

// New validates cfg and returns a Receiver ready to Run.
func New(cfg *Config) (*Receiver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	return &Receiver{
		log:      cfg.Logger,
		cfg:      cfg,
		state:    StateAwaitSot,
		expected: wire.SequenceZero,
	}, nil
}

// Run receives one transmission and returns the reconstructed file. It
// ends on the post-EOT grace timeout, a canceled context, or a fatal
// socket error. Integrity verification is the caller's decision point:
// the Result carries both checksums either way.
func (r *Receiver) Run(ctx context.Context) (*Result, error) {
	r.log.Info("rx: waiting for transmission", "local", r.cfg.Conn.LocalAddr())

	buf := r.readBuffer()
	for r.state != StateDone {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		timeout := r.cfg.PollTimeout
		if r.state == StateAfterEOT {
			timeout = r.cfg.EOTGrace
		}
		n, _, err := r.cfg.Conn.Recv(buf, timeout)
		if err != nil {
			switch {
			case netx.IsTimeout(err):
				if r.state == StateAfterEOT {
					r.log.Info("rx: transmitter went quiet, closing session")
					r.transition(StateDone)
				}
				continue
			case netx.IsTransient(err):
				r.log.Debug("rx: transient recv error, retrying", "error", err)
				continue
			default:
				return nil, fmt.Errorf("recv: %w", err)
			}
		}

		frame, err := wire.UnmarshalFrame(buf[:n])
		if err != nil || !frame.Valid() {
			metricFramesInvalid.Inc()
			r.log.Debug("rx: dropping corrupted frame, transmitter will time out")
			continue
		}

		prev := r.state
		if err := r.handle(frame); err != nil {
			return nil, err
		}
		if r.state != prev {
			buf = r.readBuffer()
		}
	}

	res := &Result{
		Data:             r.data,
		Filename:         r.filename,
		ReceivedChecksum: r.receivedSum,
		ComputedChecksum: crc32.ChecksumIEEE(r.data),
	}
	r.log.Info("rx: session complete",
		"bytes", len(res.Data),
		"filename", res.Filename,
		"checksumOK", res.ChecksumOK(),
	)
	return res, nil
}

// handle applies one valid frame to the state machine.
func (r *Receiver) handle(f *wire.Frame) error {
	seq := wire.CorrectSequence(f.Sequence)

	if r.state == StateAwaitSot {
		if seq != r.expected || len(f.Payload) < wire.SOTPayloadSize || !bytes.HasPrefix(f.Payload, wire.SOTMarker) {
			r.log.Debug("rx: ignoring frame before SOT")
			return nil
		}
		ip := f.Payload[wire.MarkerSize:wire.SOTPayloadSize]
		peer := net.IPv4(ip[0], ip[1], ip[2], ip[3])
		if !r.cfg.Conn.Connected() {
			if err := r.cfg.Conn.Connect(peer, r.cfg.TXPort); err != nil {
				return fmt.Errorf("pin transmitter: %w", err)
			}
		}
		r.log.Info("rx: transmission started", "peer", peer)
		r.advance(StateAwaitParams)
		return r.sendAck()
	}

	if seq != r.expected {
		metricFramesDuplicate.Inc()
		r.log.Debug("rx: duplicate frame, re-acknowledging", "state", r.state.String())
		return r.sendAck()
	}

	switch r.state {
	case StateAwaitParams:
		if len(f.Payload) < wire.ParamsPayloadSize {
			return nil
		}
		dataSize := binary.BigEndian.Uint16(f.Payload[:wire.ParamsPayloadSize])
		r.envelopeSize = int(dataSize) + wire.LenPrefixSize
		r.log.Info("rx: transfer parameters received", "dataSize", dataSize)
		r.advance(StateAwaitSof)
		return r.sendAck()

	case StateAwaitSof:
		p, err := wire.ParseEnvelope(f.Payload)
		if err != nil || !bytes.Equal(p, wire.SOFMarker) {
			return nil
		}
		r.advance(StateDataOrEOF)
		return r.sendAck()

	case StateDataOrEOF:
		p, err := wire.ParseEnvelope(f.Payload)
		if err != nil {
			return nil
		}
		switch {
		case bytes.Equal(p, wire.EOFMarker):
			r.log.Info("rx: end of file", "bytes", len(r.data))
			r.advance(StateAwaitChecksum)
		case bytes.Equal(p, wire.EOTMarker):
			r.log.Info("rx: end of transmission, waiting out the grace window")
			r.advance(StateAfterEOT)
		default:
			r.data = append(r.data, p...)
			metricBytesReceived.Add(float64(len(p)))
			r.advance(StateDataOrEOF)
		}
		return r.sendAck()

	case StateAwaitChecksum:
		p, err := wire.ParseEnvelope(f.Payload)
		if err != nil || len(p) < 4 {
			return nil
		}
		r.receivedSum = binary.BigEndian.Uint32(p[:4])
		r.log.Info("rx: end-to-end checksum received", "checksum", fmt.Sprintf("%08x", r.receivedSum))
		r.advance(StateAwaitFilename)
		return r.sendAck()

	case StateAwaitFilename:
		p, err := wire.ParseEnvelope(f.Payload)
		if err != nil {
			return nil
		}
		r.filename = string(p)
		r.log.Info("rx: filename received", "filename", r.filename)
		r.advance(StateDataOrEOF)
		return r.sendAck()

	case StateAfterEOT:
		// A new in-sequence frame after EOT has no meaning; retransmits
		// were already handled as duplicates above.
		return nil
	}
	return nil
}

// advance accepts the current frame: the expected sequence flips and the
// machine moves (possibly to the same state, for data frames).
func (r *Receiver) advance(to State) {
	r.expected = wire.FlipSequence(r.expected)
	metricFramesAccepted.Inc()
	r.transition(to)
}

func (r *Receiver) transition(to State) {
	if to == r.state {
		return
	}
	metricStateTransitions.WithLabelValues(r.state.String(), to.String()).Inc()
	r.log.Debug("rx: state transition", "from", r.state.String(), "to", to.String())
	r.state = to
}

// sendAck transmits the acknowledgment for the current expected
// sequence. Re-sending it after a duplicate frame yields exactly the
// ACK the transmitter lost.
func (r *Receiver) sendAck() error {
	img := r.cfg.Channel.Corrupt(wire.NewAck(r.expected, r.cfg.LocalIP).Marshal())
	if err := r.cfg.Conn.Send(img); err != nil {
		return fmt.Errorf("send ack: %w", err)
	}
	metricAcksSent.Inc()
	return nil
}

// readBuffer sizes the receive buffer for the frames the current state
// can see. During the handshake the SOT image is the largest legitimate
// datagram; afterwards one reusable buffer covers the session envelope
// and the filename frame, which may outgrow it.
func (r *Receiver) readBuffer() []byte {
	if r.state == StateAwaitSot || r.state == StateAwaitParams {
		return make([]byte, wire.SOTPayloadSize+wire.FrameOverhead)
	}
	return make([]byte, max(r.envelopeSize, wire.LenPrefixSize+maxFilenameBytes)+wire.FrameOverhead)
}
