// Package netx owns the single UDP socket of each protocol endpoint.
// The socket is bound early with broadcast capability, carries the
// discovery broadcast while the peer is unknown, and is connected in
// place once the handshake has pinned the peer address.
package netx

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Conn wraps one IPv4 UDP socket. After Bind the socket is unconnected:
// datagrams go out via SendTo (typically to the broadcast address) and
// reads accept any source. Connect pins the peer, after which Send/Recv
// use the connected path and asynchronous ICMP errors surface on reads.
type Conn struct {
	raw       *net.UDPConn
	connected bool
}

// Bind opens the socket on 0.0.0.0:port with SO_BROADCAST enabled, so
// the same descriptor can carry the discovery broadcast and, later, the
// unicast session. Port "0" binds an ephemeral port.
func Bind(port string) (*Conn, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var serr error
			if err := c.Control(func(fd uintptr) {
				serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
			}); err != nil {
				return err
			}
			return serr
		},
	}
	pc, err := lc.ListenPacket(context.Background(), "udp4", net.JoinHostPort("0.0.0.0", port))
	if err != nil {
		return nil, fmt.Errorf("bind udp4 port %s: %w", port, err)
	}
	return &Conn{raw: pc.(*net.UDPConn)}, nil
}

// Connect pins the peer by running connect(2) on the already-bound
// descriptor. From then on Send writes to the peer and reads report
// ICMP port-unreachable as ECONNREFUSED.
func (c *Conn) Connect(ip net.IP, port string) error {
	ip4 := ip.To4()
	if ip4 == nil {
		return fmt.Errorf("peer %s is not an IPv4 address", ip)
	}
	p, err := strconv.Atoi(port)
	if err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("invalid peer port %q", port)
	}

	sc, err := c.raw.SyscallConn()
	if err != nil {
		return err
	}
	var serr error
	if err := sc.Control(func(fd uintptr) {
		sa := &unix.SockaddrInet4{Port: p}
		copy(sa.Addr[:], ip4)
		serr = unix.Connect(int(fd), sa)
	}); err != nil {
		return err
	}
	if serr != nil {
		return fmt.Errorf("connect %s:%d: %w", ip4, p, serr)
	}
	c.connected = true
	return nil
}

// Connected reports whether the peer has been pinned.
func (c *Conn) Connected() bool { return c.connected }

// SendTo transmits one datagram on the unconnected socket.
func (c *Conn) SendTo(b []byte, addr *net.UDPAddr) error {
	if c.connected {
		return fmt.Errorf("socket already connected")
	}
	_, err := c.raw.WriteToUDP(b, addr)
	return err
}

// Send transmits one datagram to the pinned peer.
func (c *Conn) Send(b []byte) error {
	if !c.connected {
		return fmt.Errorf("socket not connected")
	}
	_, err := c.raw.Write(b)
	return err
}

// Recv reads one datagram into buf, waiting at most timeout. The
// returned address is the datagram source (nil after Connect on some
// paths is not possible: recvfrom always reports it).
func (c *Conn) Recv(buf []byte, timeout time.Duration) (int, *net.UDPAddr, error) {
	if err := c.raw.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, nil, err
	}
	return c.raw.ReadFromUDP(buf)
}

// Port returns the local port as a string, as used in address formatting.
func (c *Conn) Port() string {
	return strconv.Itoa(c.raw.LocalAddr().(*net.UDPAddr).Port)
}

// LocalAddr returns the bound local address.
func (c *Conn) LocalAddr() net.Addr { return c.raw.LocalAddr() }

// Close releases the socket.
func (c *Conn) Close() error { return c.raw.Close() }
