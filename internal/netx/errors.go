package netx

import (
	"errors"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// IsTimeout reports a read deadline expiry.
func IsTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// IsTransient reports receive errors the event loops retry without
// surfacing: interrupted syscalls, and the asynchronous ICMP
// port-unreachable that connected UDP sockets deliver as ECONNREFUSED.
// The latter shows up whenever one endpoint starts before the other and
// is not a real session error.
func IsTransient(err error) bool {
	return errors.Is(err, unix.EINTR) || errors.Is(err, unix.ECONNREFUSED)
}

// IsFatal reports a non-recoverable socket condition: a closed
// descriptor or the errnos that indicate the interface went away.
func IsFatal(err error) bool {
	if errors.Is(err, net.ErrClosed) {
		return true
	}
	var se syscall.Errno
	if errors.As(err, &se) {
		switch se {
		case unix.EBADF, unix.ENETDOWN, unix.ENODEV, unix.ENXIO:
			return true
		}
	}
	return false
}
