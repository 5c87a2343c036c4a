// Package metrics defines prometheus metric types and provides convenience
// instrumentation points used by the conn and client packages.
//
// When defining new operations or metrics, these are helpful values to track:
//  - things coming into or going out of the system: requests, bytes, connections.
//  - the success or error status of any of the above.
//  - the distribution of processing latency.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks per-opcode round-trip latency, from request
	// marshalling through response parsing.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "memcache_request_duration_seconds",
			Help: "Round-trip latency of client operations, by opcode.",
			Buckets: []float64{
				0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005,
				0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5,
			},
		},
		[]string{"opcode"})

	// RequestCount counts completed operations by opcode and outcome
	// status, including domain outcomes like KEY_ENOENT.
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memcache_request_total",
			Help: "Number of completed client operations, by opcode and status.",
		}, []string{"opcode", "status"})

	// DialCount counts connection attempts, separated by whether the
	// attempt succeeded.
	DialCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memcache_dial_total",
			Help: "Number of connection attempts, by outcome.",
		}, []string{"outcome"})

	// ReconnectCount counts transitions from connected back to
	// disconnected following a recoverable I/O error.
	ReconnectCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "memcache_reconnect_total",
			Help: "Number of times a connection dropped back to disconnected after an I/O error.",
		},
	)

	// CodecErrorCount counts encode/decode failures seen by the client, by
	// which direction failed ("encode" or "decode").
	CodecErrorCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memcache_codec_error_total",
			Help: "Number of codec encode/decode failures, by error kind.",
		}, []string{"kind"})

	// EncodedValueSize tracks the size in bytes of values passed through
	// the codec's Encode entry point.
	EncodedValueSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "memcache_encoded_value_size_bytes",
			Help: "Size distribution of codec-encoded values, in bytes.",
			Buckets: []float64{
				16, 32, 64, 128, 256, 512, 1024, 4096, 16384, 65536, 262144, 1048576,
			},
		},
	)
)
