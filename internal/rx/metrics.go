package rx

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricFramesAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stopandwait_rx_frames_accepted_total",
		Help: "Valid frames accepted in sequence",
	})

	metricFramesInvalid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stopandwait_rx_frames_invalid_total",
		Help: "Frames silently dropped on checksum failure",
	})

	metricFramesDuplicate = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stopandwait_rx_frames_duplicate_total",
		Help: "Valid frames with a stale sequence byte, re-acknowledged without effect",
	})

	metricAcksSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stopandwait_rx_acks_sent_total",
		Help: "Acknowledgments transmitted, duplicates included",
	})

	metricBytesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stopandwait_rx_bytes_received_total",
		Help: "File payload bytes appended to the output",
	})

	metricStateTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stopandwait_rx_state_transitions_total",
		Help: "Count of session state transitions",
	}, []string{"state_from", "state_to"})
)
