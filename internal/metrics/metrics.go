package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DispatchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resumerefresh_dispatch_total",
		Help: "Total number of resume refresh emails dispatched, by mode (amp/static) and outcome",
	}, []string{"mode", "outcome"})
	DispatchAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resumerefresh_dispatch_attempts_total",
		Help: "Total number of transmission attempts, by failure reason (empty on success)",
	}, []string{"reason"})
	SubmissionTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resumerefresh_submissions_total",
		Help: "Total number of inbound submissions, by source and result",
	}, []string{"source", "result"})
	// Origin rejections are counted separately; they never reach validation.
	OriginRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "resumerefresh_amp_origin_rejected_total",
		Help: "Total number of AMP submissions rejected by the origin check",
	})
)

func init() {
	prometheus.MustRegister(DispatchTotal)
	prometheus.MustRegister(DispatchAttempts)
	prometheus.MustRegister(SubmissionTotal)
	prometheus.MustRegister(OriginRejected)
}

// Handler returns an http.Handler exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
