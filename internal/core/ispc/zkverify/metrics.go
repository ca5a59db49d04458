package zkverify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/weisyn/zkhost/pkg/types"
)

const (
	outcomeAccepted = "accepted"
	outcomeRejected = "rejected"
	outcomeAborted  = "aborted"
)

var (
	// VerifyRequestsTotal 验证请求次数（Counter）
	VerifyRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zkhost_zkverify_requests_total",
			Help: "零知识证明验证请求总次数",
		},
		[]string{"backend", "outcome"}, // outcome: accepted, rejected, aborted
	)

	// VerifyDurationSeconds 单次验证耗时（Histogram，秒）
	VerifyDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zkhost_zkverify_duration_seconds",
			Help:    "单次零知识证明验证耗时（秒）",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"backend"},
	)
)

func init() {
	prometheus.MustRegister(VerifyRequestsTotal, VerifyDurationSeconds)
}

func observe(backend types.BackendTag, result types.VerificationResult, err error, elapsed time.Duration) {
	outcome := outcomeAborted
	if err == nil {
		if result == types.ResultAccepted {
			outcome = outcomeAccepted
		} else {
			outcome = outcomeRejected
		}
	}
	VerifyRequestsTotal.WithLabelValues(backend.String(), outcome).Inc()
	VerifyDurationSeconds.WithLabelValues(backend.String()).Observe(elapsed.Seconds())
}
