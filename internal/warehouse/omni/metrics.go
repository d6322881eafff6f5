package omni

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	acquisitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketlens_omni_acquisitions_total",
			Help: "Total number of query acquisitions by outcome.",
		},
		[]string{"outcome"},
	)
	acquisitionDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ticketlens_omni_acquisition_duration_seconds",
			Help:    "End-to-end latency of query acquisitions.",
			Buckets: prometheus.DefBuckets,
		},
	)
	pollTicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ticketlens_omni_poll_ticks_total",
			Help: "Total number of job wait requests issued.",
		},
	)
	pollFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ticketlens_omni_poll_failures_total",
			Help: "Total number of job wait requests that failed.",
		},
	)
	pollTimeoutsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ticketlens_omni_poll_timeouts_total",
			Help: "Total number of acquisitions abandoned at the poll deadline.",
		},
	)
	resultRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ticketlens_omni_result_rows",
			Help:    "Row counts of decoded result tables.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)

func init() {
	prometheus.MustRegister(
		acquisitionsTotal,
		acquisitionDurationSeconds,
		pollTicksTotal,
		pollFailuresTotal,
		pollTimeoutsTotal,
		resultRows,
	)
}

func outcomeLabel(err error) string {
	var executionErr *ExecutionError
	var malformedErr *MalformedResponseError
	var timeoutErr *PollTimeoutError
	var decodeErr *DecodeError
	var transportErr *TransportError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &timeoutErr):
		return "poll_timeout"
	case errors.As(err, &executionErr):
		return "execution_failed"
	case errors.As(err, &malformedErr):
		return "malformed_response"
	case errors.As(err, &decodeErr):
		return "decode_error"
	case errors.As(err, &transportErr):
		return "transport_error"
	default:
		return "error"
	}
}
