package netx

import "net"

// LocalIPv4 returns the first non-loopback unicast IPv4 address of this
// host, falling back to 127.0.0.1 when none is configured. The handshake
// embeds it in the SOT payload and in every ACK so each endpoint can pin
// the other without prior configuration.
func LocalIPv4() [4]byte {
	out := [4]byte{127, 0, 0, 1}
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return out
	}
	for _, a := range addrs {
		ipn, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		ip4 := ipn.IP.To4()
		if ip4 == nil || ip4.IsLoopback() {
			continue
		}
		copy(out[:], ip4)
		break
	}
	return out
}
