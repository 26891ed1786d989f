package rx

import (
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/malbeclabs/stopandwait/internal/netx"
	"github.com/malbeclabs/stopandwait/internal/wire"
)

const (
	// defaultPollTimeout is the per-read deadline of the receive loop;
	// it only bounds how quickly cancellation is noticed.
	defaultPollTimeout = 500 * time.Millisecond

	// defaultEOTGrace is how long the receiver lingers after EOT for a
	// retransmission caused by a lost final ACK.
	defaultEOTGrace = time.Second

	// maxFilenameBytes bounds the filename frame the receiver is
	// prepared to read when the name outgrows the session data size.
	maxFilenameBytes = 255
)

// Config carries one receive session's collaborators and knobs.
type Config struct {
	Logger *slog.Logger
	Conn   *netx.Conn

	// Optional with defaults.
	Clock       clockwork.Clock
	Channel     *wire.Channel // applied to outgoing ACKs; nil → clean
	TXPort      string        // transmitter port used when pinning the peer
	LocalIP     [4]byte       // IPv4 advertised in every ACK
	PollTimeout time.Duration
	EOTGrace    time.Duration
}

// Validate applies defaults and rejects missing collaborators.
func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Conn == nil {
		return errors.New("socket is required")
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.TXPort == "" {
		c.TXPort = wire.TXPort
	}
	if c.LocalIP == ([4]byte{}) {
		c.LocalIP = netx.LocalIPv4()
	}
	if c.PollTimeout == 0 {
		c.PollTimeout = defaultPollTimeout
	}
	if c.PollTimeout < 0 {
		return errors.New("poll timeout must be > 0")
	}
	if c.EOTGrace == 0 {
		c.EOTGrace = defaultEOTGrace
	}
	if c.EOTGrace < 0 {
		return errors.New("eot grace must be > 0")
	}
	return nil
}
