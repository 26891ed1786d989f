package tx

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricFramesDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stopandwait_tx_frames_delivered_total",
		Help: "Frames positively acknowledged and removed from the queue",
	})

	metricSends = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stopandwait_tx_sends_total",
		Help: "Datagram transmissions, retransmits included",
	})

	metricTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stopandwait_tx_ack_timeouts_total",
		Help: "ACK waits that expired and triggered a retransmit",
	})

	metricInvalidAcks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stopandwait_tx_invalid_acks_total",
		Help: "Received acknowledgments that failed code or checksum validation",
	})

	metricDuplicateAcks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stopandwait_tx_duplicate_acks_total",
		Help: "Valid acknowledgments carrying a stale sequence byte",
	})

	metricBytesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stopandwait_tx_bytes_sent_total",
		Help: "Wire bytes transmitted, retransmits included",
	})
)
