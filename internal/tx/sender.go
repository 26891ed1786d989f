package tx

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/malbeclabs/stopandwait/internal/netx"
	"github.com/malbeclabs/stopandwait/internal/wire"
)

// Sender is the transmitting endpoint: a single-threaded loop that
// drains the prepared frame queue, one frame in flight at a time. Before
// the first valid ACK it broadcasts (the receiver address is unknown);
// that ACK pins the peer and the rest of the session runs connected.
type Sender struct {
	log *slog.Logger
	cfg *Config
}

// New validates cfg and returns a Sender ready to Run.
func New(cfg *Config) (*Sender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	return &Sender{log: cfg.Logger, cfg: cfg}, nil
}

// Run performs the whole transfer and reports its statistics. It returns
// on a drained queue, a canceled context, or a fatal socket error;
// corruption and loss are recovered internally by retransmission.
func (s *Sender) Run(ctx context.Context) (*Stats, error) {
	queue, err := BuildQueue(s.cfg.Data, s.cfg.Filename, s.cfg.LocalIP, s.cfg.DataSize)
	if err != nil {
		return nil, fmt.Errorf("prepare frame queue: %w", err)
	}

	if s.cfg.PeerIP != nil && !s.cfg.Conn.Connected() {
		if err := s.cfg.Conn.Connect(s.cfg.PeerIP, s.cfg.RXPort); err != nil {
			return nil, fmt.Errorf("pin configured peer: %w", err)
		}
		s.log.Info("tx: peer pinned from configuration", "peer", s.cfg.PeerIP)
	}

	s.log.Info("tx: starting transfer",
		"filename", s.cfg.Filename,
		"fileBytes", len(s.cfg.Data),
		"frames", len(queue),
		"dataSize", s.cfg.DataSize,
		"timeout", s.cfg.Timeout,
	)

	stats := &Stats{Frames: len(queue), PayloadBytes: int64(len(s.cfg.Data))}
	start := s.cfg.Clock.Now()
	ackBuf := make([]byte, wire.AckSize)

	for idx := 0; idx < len(queue); {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		head := queue[idx]
		expected := wire.FlipSequence(head.Sequence)

		img := s.cfg.Channel.Corrupt(head.Marshal())
		if err := s.send(img); err != nil {
			return stats, fmt.Errorf("send frame %d/%d: %w", idx+1, len(queue), err)
		}
		stats.Sends++
		stats.BytesSent += int64(len(img))
		metricSends.Inc()
		metricBytesSent.Add(float64(len(img)))
		s.log.Debug("tx: sent frame", "frame", idx+1, "frames", len(queue), "bytes", len(img))

		ack, ok, err := s.awaitAck(ctx, ackBuf)
		if err != nil {
			return stats, err
		}
		if !ok {
			stats.Timeouts++
			metricTimeouts.Inc()
			s.log.Warn("tx: no ACK before timeout, retransmitting", "frame", idx+1, "timeout", s.cfg.Timeout)
			continue
		}
		if !ack.Valid() {
			stats.InvalidAcks++
			metricInvalidAcks.Inc()
			s.log.Warn("tx: invalid ACK, backing off before retransmit", "frame", idx+1)
			s.cfg.Clock.Sleep(s.cfg.Timeout)
			continue
		}
		if wire.CorrectSequence(ack.Sequence) != expected {
			stats.DuplicateAcks++
			metricDuplicateAcks.Inc()
			s.log.Debug("tx: duplicate ACK, retransmitting", "frame", idx+1)
			continue
		}

		if !s.cfg.Conn.Connected() {
			peer := net.IPv4(ack.SenderIP[0], ack.SenderIP[1], ack.SenderIP[2], ack.SenderIP[3])
			if err := s.cfg.Conn.Connect(peer, s.cfg.RXPort); err != nil {
				return stats, fmt.Errorf("pin peer from ACK: %w", err)
			}
			s.log.Info("tx: peer pinned, leaving broadcast", "peer", peer)
		}

		idx++
		metricFramesDelivered.Inc()
	}

	stats.Duration = s.cfg.Clock.Since(start)
	s.log.Info("tx: transfer complete",
		"frames", stats.Frames,
		"sends", stats.Sends,
		"duration", stats.Duration,
	)
	return stats, nil
}

// send routes the wire image over the broadcast path until the peer has
// been pinned, then over the connected socket.
func (s *Sender) send(img []byte) error {
	if s.cfg.Conn.Connected() {
		return s.cfg.Conn.Send(img)
	}
	return s.cfg.Conn.SendTo(img, s.cfg.BroadcastAddr)
}

// awaitAck waits up to the configured timeout for one acknowledgment
// datagram. It retries through transient socket noise, reports a timeout
// as ok=false, and surfaces only fatal errors. Short datagrams come back
// as an invalid Ack so the caller's single recovery path applies; a
// longer datagram is cut to the AckSize buffer and judged by those bytes.
func (s *Sender) awaitAck(ctx context.Context, buf []byte) (*wire.Ack, bool, error) {
	for {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		n, _, err := s.cfg.Conn.Recv(buf, s.cfg.Timeout)
		if err != nil {
			if netx.IsTimeout(err) {
				return nil, false, nil
			}
			if netx.IsTransient(err) {
				s.log.Debug("tx: transient recv error, retrying", "error", err)
				continue
			}
			return nil, false, fmt.Errorf("wait for ACK: %w", err)
		}
		ack, err := wire.UnmarshalAck(buf[:n])
		if err != nil {
			return &wire.Ack{}, true, nil
		}
		return ack, true, nil
	}
}
