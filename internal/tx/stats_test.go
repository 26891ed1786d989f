package tx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTx_Stats_Averages(t *testing.T) {
	t.Parallel()
	s := &Stats{
		Frames:       4,
		Sends:        6,
		PayloadBytes: 2000,
		Duration:     2 * time.Second,
	}
	require.InDelta(t, 1.5, s.AverageTries(), 1e-9)
	require.Equal(t, 500*time.Millisecond, s.AverageRTT())
	require.InDelta(t, 1.0, s.EffectiveKBps(), 1e-9)
}

func TestTx_Stats_ZeroSafe(t *testing.T) {
	t.Parallel()
	s := &Stats{}
	require.Zero(t, s.AverageTries())
	require.Zero(t, s.AverageRTT())
	require.Zero(t, s.EffectiveKBps())
}

func TestTx_Stats_RenderContainsRows(t *testing.T) {
	t.Parallel()
	var sb strings.Builder
	(&Stats{Frames: 8, Sends: 9, Duration: time.Second}).Render(&sb)
	out := sb.String()
	require.Contains(t, out, "Frames delivered")
	require.Contains(t, out, "Average tries per frame")
	require.Contains(t, out, "1.12")
}
