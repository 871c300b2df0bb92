package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Transfer direction label values.
const (
	DirectionUpload   = "upload"
	DirectionDownload = "download"
)

var (
	// Operations counts session operations by name and outcome (success|failure).
	Operations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sftpctl_operations_total",
			Help: "Total number of session operations",
		},
		[]string{"operation", "result"},
	)

	// TransferBytes accumulates bytes moved by direction (upload|download).
	TransferBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sftpctl_transfer_bytes_total",
			Help: "Total bytes transferred",
		},
		[]string{"direction"},
	)

	// ConnectDuration measures transport, authentication and channel setup time.
	ConnectDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sftpctl_connect_duration_seconds",
			Help:    "Time taken to establish an authenticated transfer channel",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Connected tracks clients currently holding a channel.
	Connected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sftpctl_connected",
			Help: "Number of connected session clients",
		},
	)
)

// ObserveOperation increments the operation counter for op.
func ObserveOperation(op string, ok bool) {
	result := ResultSuccess
	if !ok {
		result = ResultFailure
	}
	Operations.WithLabelValues(op, result).Inc()
}
