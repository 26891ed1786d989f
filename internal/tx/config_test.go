package tx

import (
	"log/slog"
	"testing"
	"time"

	"github.com/malbeclabs/stopandwait/internal/netx"
	"github.com/malbeclabs/stopandwait/internal/wire"
	"github.com/stretchr/testify/require"
)

func testConn(t *testing.T) *netx.Conn {
	t.Helper()
	c, err := netx.Bind("0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestTx_Config_Defaults(t *testing.T) {
	t.Parallel()
	cfg := &Config{
		Logger:   slog.Default(),
		Conn:     testConn(t),
		Filename: "f.bin",
	}
	require.NoError(t, cfg.Validate())
	require.Equal(t, defaultDataSize, cfg.DataSize)
	require.Equal(t, defaultTimeout, cfg.Timeout)
	require.Equal(t, wire.RXPort, cfg.RXPort)
	require.NotNil(t, cfg.Clock)
	require.NotNil(t, cfg.BroadcastAddr)
	require.Equal(t, "255.255.255.255", cfg.BroadcastAddr.IP.String())
	require.NotEqual(t, [4]byte{}, cfg.LocalIP)
}

func TestTx_Config_Required(t *testing.T) {
	t.Parallel()
	require.EqualError(t, (&Config{}).Validate(), "logger is required")
	require.EqualError(t, (&Config{Logger: slog.Default()}).Validate(), "socket is required")
	require.EqualError(t, (&Config{Logger: slog.Default(), Conn: testConn(t)}).Validate(), "filename is required")
}

func TestTx_Config_RejectsBadDataSize(t *testing.T) {
	t.Parallel()
	for _, size := range []int{4, 10, -8, 70000} {
		cfg := &Config{Logger: slog.Default(), Conn: testConn(t), Filename: "f", DataSize: size}
		require.Error(t, cfg.Validate(), "size %d", size)
	}
}

func TestTx_Config_RejectsNegativeTimeout(t *testing.T) {
	t.Parallel()
	cfg := &Config{Logger: slog.Default(), Conn: testConn(t), Filename: "f", Timeout: -time.Millisecond}
	require.EqualError(t, cfg.Validate(), "timeout must be > 0")
}
