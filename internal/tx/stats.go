package tx

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Stats aggregates the outcomes of one transfer.
type Stats struct {
	Frames        int           // frames delivered (queue length)
	Sends         int           // datagrams sent, retransmits included
	Timeouts      int           // ACK waits that expired
	InvalidAcks   int           // acks dropped on code/checksum
	DuplicateAcks int           // valid acks with a stale sequence
	BytesSent     int64         // wire bytes, retransmits included
	PayloadBytes  int64         // file bytes carried
	Duration      time.Duration // wall time of the whole session
}

// AverageTries is the mean number of transmissions per delivered frame.
func (s *Stats) AverageTries() float64 {
	if s.Frames == 0 {
		return 0
	}
	return float64(s.Sends) / float64(s.Frames)
}

// AverageRTT is the mean wall time per delivered frame.
func (s *Stats) AverageRTT() time.Duration {
	if s.Frames == 0 {
		return 0
	}
	return s.Duration / time.Duration(s.Frames)
}

// EffectiveKBps is the payload throughput over the session wall time.
func (s *Stats) EffectiveKBps() float64 {
	secs := s.Duration.Seconds()
	if secs == 0 {
		return 0
	}
	return float64(s.PayloadBytes) / secs / 1000
}

// Render writes the transfer report as a bordered table.
func (s *Stats) Render(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetHeader([]string{"Metric", "Value"})
	table.AppendBulk([][]string{
		{"Frames delivered", fmt.Sprintf("%d", s.Frames)},
		{"Datagrams sent", fmt.Sprintf("%d", s.Sends)},
		{"ACK timeouts", fmt.Sprintf("%d", s.Timeouts)},
		{"Invalid ACKs", fmt.Sprintf("%d", s.InvalidAcks)},
		{"Duplicate ACKs", fmt.Sprintf("%d", s.DuplicateAcks)},
		{"Payload bytes", fmt.Sprintf("%d", s.PayloadBytes)},
		{"Wire bytes", fmt.Sprintf("%d", s.BytesSent)},
		{"Transfer time", s.Duration.String()},
		{"Average tries per frame", fmt.Sprintf("%.2f", s.AverageTries())},
		{"Average RTT per frame", s.AverageRTT().String()},
		{"Effective speed", fmt.Sprintf("%.2f kB/s", s.EffectiveKBps())},
	})
	table.Render()
}
