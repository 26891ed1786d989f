package e2e

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/malbeclabs/stopandwait/internal/netx"
	"github.com/malbeclabs/stopandwait/internal/rx"
	"github.com/malbeclabs/stopandwait/internal/tx"
	"github.com/malbeclabs/stopandwait/internal/wire"
	"github.com/stretchr/testify/require"
)

var loopbackIP = [4]byte{127, 0, 0, 1}

// runTransfer wires a real Sender and Receiver over loopback sockets,
// with the discovery broadcast redirected at the receiver's port, and
// returns both endpoints' outcomes. bep > 0 corrupts frames and ACKs
// with the given seeded probability.
func runTransfer(t *testing.T, data []byte, filename string, dataSize int, bep float64, seed int64) (*tx.Stats, *rx.Result) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	rxConn, err := netx.Bind("0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rxConn.Close() })

	txConn, err := netx.Bind("0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = txConn.Close() })

	receiver, err := rx.New(&rx.Config{
		Logger:      log,
		Conn:        rxConn,
		Channel:     wire.NewChannel(bep, rand.New(rand.NewSource(seed))),
		TXPort:      txConn.Port(),
		LocalIP:     loopbackIP,
		PollTimeout: 100 * time.Millisecond,
		EOTGrace:    300 * time.Millisecond,
	})
	require.NoError(t, err)

	rxPort, err := strconv.Atoi(rxConn.Port())
	require.NoError(t, err)
	sender, err := tx.New(&tx.Config{
		Logger:        log,
		Conn:          txConn,
		Data:          data,
		Filename:      filename,
		Channel:       wire.NewChannel(bep, rand.New(rand.NewSource(seed+1))),
		DataSize:      dataSize,
		Timeout:       100 * time.Millisecond,
		RXPort:        rxConn.Port(),
		BroadcastAddr: &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: rxPort},
		LocalIP:       loopbackIP,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	t.Cleanup(cancel)

	type rxOut struct {
		res *rx.Result
		err error
	}
	rxCh := make(chan rxOut, 1)
	go func() {
		res, err := receiver.Run(ctx)
		rxCh <- rxOut{res, err}
	}()

	stats, err := sender.Run(ctx)
	require.NoError(t, err)

	out := <-rxCh
	require.NoError(t, out.err)
	return stats, out.res
}

func TestE2E_SmallFile(t *testing.T) {
	t.Parallel()
	stats, res := runTransfer(t, []byte("hello"), "greet.txt", 8, 0, 1)

	require.Equal(t, "hello", string(res.Data))
	require.Equal(t, "greet.txt", res.Filename)
	require.Equal(t, uint32(0x3610A686), res.ReceivedChecksum)
	require.True(t, res.ChecksumOK())

	require.Equal(t, 8, stats.Frames)
	require.Zero(t, stats.InvalidAcks)
	require.Zero(t, stats.DuplicateAcks)
}

func TestE2E_EmptyFile(t *testing.T) {
	t.Parallel()
	stats, res := runTransfer(t, nil, "empty.bin", 8, 0, 2)

	require.Empty(t, res.Data)
	require.Equal(t, "empty.bin", res.Filename)
	require.Equal(t, uint32(0), res.ReceivedChecksum)
	require.Equal(t, uint32(0), res.ComputedChecksum)
	require.True(t, res.ChecksumOK())
	require.Equal(t, 7, stats.Frames)
}

func TestE2E_DataSizes(t *testing.T) {
	t.Parallel()
	file := make([]byte, 4096+3) // force a trailing partial frame
	rand.New(rand.NewSource(99)).Read(file)

	for _, dataSize := range []int{8, 64, 512, 3840} {
		dataSize := dataSize
		t.Run(fmt.Sprintf("dataSize=%d", dataSize), func(t *testing.T) {
			t.Parallel()
			_, res := runTransfer(t, file, "blob.bin", dataSize, 0, int64(dataSize))
			require.True(t, bytes.Equal(file, res.Data))
			require.True(t, res.ChecksumOK())
		})
	}
}

func TestE2E_RandomSmallFileRestoresFilename(t *testing.T) {
	t.Parallel()
	file := make([]byte, 32)
	rand.New(rand.NewSource(7)).Read(file)

	_, res := runTransfer(t, file, "snapshot-2024.dat", 8, 0, 7)
	require.True(t, bytes.Equal(file, res.Data))
	require.Equal(t, "snapshot-2024.dat", res.Filename)
	require.True(t, res.ChecksumOK())
}

// With a small bit-error probability on both directions the transfer
// still completes byte-identical; only the retry counts grow.
func TestE2E_LossyChannelStillDelivers(t *testing.T) {
	t.Parallel()
	file := make([]byte, 2048)
	rand.New(rand.NewSource(1234)).Read(file)

	stats, res := runTransfer(t, file, "noisy.bin", 64, 1e-4, 1234)
	require.True(t, bytes.Equal(file, res.Data))
	require.Equal(t, "noisy.bin", res.Filename)
	require.True(t, res.ChecksumOK())
	require.GreaterOrEqual(t, stats.Sends, stats.Frames)
}
