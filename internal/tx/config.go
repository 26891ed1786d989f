package tx

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/malbeclabs/stopandwait/internal/netx"
	"github.com/malbeclabs/stopandwait/internal/wire"
)

const (
	// defaultDataSize is the per-frame data capacity when the operator
	// does not choose one.
	defaultDataSize = 3840

	// defaultTimeout is the ACK wait before a retransmission.
	defaultTimeout = 30 * time.Millisecond

	// maxDataSize is the u16 ceiling of the parameters frame.
	maxDataSize = 65535
)

// Config carries everything one transfer needs. Required fields have no
// defaults; optional fields are defaulted by Validate.
type Config struct {
	Logger   *slog.Logger
	Conn     *netx.Conn
	Data     []byte
	Filename string

	// Optional with defaults.
	Clock         clockwork.Clock
	Channel       *wire.Channel // nil → no simulated bit errors
	DataSize      int           // per-frame data capacity, multiple of 8
	Timeout       time.Duration // ACK wait before retransmit
	RXPort        string        // receiver port for broadcast and pinning
	BroadcastAddr *net.UDPAddr  // discovery destination
	LocalIP       [4]byte       // IPv4 advertised in the SOT payload
	PeerIP        net.IP        // non-nil → skip discovery, pin up front
}

// Validate applies defaults and rejects unusable parameter combinations.
func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Conn == nil {
		return errors.New("socket is required")
	}
	if c.Filename == "" {
		return errors.New("filename is required")
	}

	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.DataSize == 0 {
		c.DataSize = defaultDataSize
	}
	if c.DataSize < 8 || c.DataSize%8 != 0 {
		return fmt.Errorf("data size %d must be a positive multiple of 8", c.DataSize)
	}
	if c.DataSize > maxDataSize {
		return fmt.Errorf("data size %d exceeds %d", c.DataSize, maxDataSize)
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.Timeout < 0 {
		return errors.New("timeout must be > 0")
	}
	if c.RXPort == "" {
		c.RXPort = wire.RXPort
	}
	if c.BroadcastAddr == nil {
		addr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort("255.255.255.255", c.RXPort))
		if err != nil {
			return fmt.Errorf("resolve broadcast address: %w", err)
		}
		c.BroadcastAddr = addr
	}
	if c.LocalIP == ([4]byte{}) {
		c.LocalIP = netx.LocalIPv4()
	}
	return nil
}
