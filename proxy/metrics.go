package proxy

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"straico-gateway/apierror"
)

// requestsTotal and requestDuration are the counters and latency
// histogram DESIGN.md promises for /v1/chat/completions: split by
// streaming mode, and on failure by error taxonomy kind.
var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "straico_gateway_chat_completions_total",
			Help: "Total /v1/chat/completions requests, labeled by streaming mode and outcome.",
		},
		[]string{"stream", "outcome"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "straico_gateway_chat_completions_duration_seconds",
			Help:    "Latency of /v1/chat/completions requests, labeled by streaming mode.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stream"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration)
}

func streamLabel(stream bool) string {
	if stream {
		return "true"
	}
	return "false"
}

// outcomeLabel reduces err to the taxonomy kind driving the response,
// or "ok" when the request succeeded.
func outcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return string(apierror.As(err).Kind)
}

// observeRequest records one completed /v1/chat/completions call. Call
// it once per request with the wall-clock start time and the terminal
// error, if any (nil on success).
func observeRequest(start time.Time, stream bool, err error) {
	requestsTotal.WithLabelValues(streamLabel(stream), outcomeLabel(err)).Inc()
	requestDuration.WithLabelValues(streamLabel(stream)).Observe(time.Since(start).Seconds())
}
