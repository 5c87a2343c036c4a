package metrics_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/m-lab/memcache/metrics"
)

func TestMetricsRegistered(t *testing.T) {
	metrics.RequestCount.WithLabelValues("get", "SUCCESS").Inc()
	metrics.DialCount.WithLabelValues("ok").Inc()
	metrics.ReconnectCount.Inc()
	metrics.CodecErrorCount.WithLabelValues("bad-codec-version").Inc()
	metrics.EncodedValueSize.Observe(128)
	metrics.RequestDuration.WithLabelValues("get").Observe(0.001)

	collectors := []prometheus.Collector{
		metrics.RequestCount,
		metrics.DialCount,
		metrics.ReconnectCount,
		metrics.CodecErrorCount,
		metrics.EncodedValueSize,
		metrics.RequestDuration,
	}
	for _, c := range collectors {
		if count := testutil.CollectAndCount(c); count == 0 {
			t.Errorf("expected at least one sample for %v", c)
		}
	}
}

func TestMetricNamesHavePrefix(t *testing.T) {
	names := []string{
		"memcache_request_duration_seconds",
		"memcache_request_total",
		"memcache_dial_total",
		"memcache_reconnect_total",
		"memcache_codec_error_total",
		"memcache_encoded_value_size_bytes",
	}
	for _, n := range names {
		if !strings.HasPrefix(n, "memcache_") {
			t.Errorf("metric %q does not use the memcache_ namespace", n)
		}
	}
}
