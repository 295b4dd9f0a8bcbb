package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursehub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coursehub_http_request_duration_seconds",
			Help:    "Histogram of response durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	// EnrollmentTransitions 选课状态流转次数（result: ok | already_processed | not_found | error）
	EnrollmentTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursehub_enrollment_transitions_total",
			Help: "Enrollment status transition attempts by target, actor and result",
		},
		[]string{"target", "actor", "result"},
	)

	// AutoApproveSweeps 后台扫描次数（result: ok | failed | skipped）
	AutoApproveSweeps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursehub_auto_approve_sweeps_total",
			Help: "Auto-approval sweep runs by result",
		},
		[]string{"result"},
	)

	// PendingTimers 进程内待触发的自动审批定时器数量
	PendingTimers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "coursehub_enrollment_pending_timers",
			Help: "Number of in-process auto-approval timers",
		},
	)
)

var registerOnce sync.Once

// Init 注册全部指标，可重复调用
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCount, RequestDuration, EnrollmentTransitions, AutoApproveSweeps, PendingTimers)
	})
}
