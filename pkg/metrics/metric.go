package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric holds the prometheus collectors of the planner and its HTTP surface.
// A nil *Metric is valid and records nothing.
type Metric struct {
	plans           *prometheus.CounterVec
	planDuration    prometheus.Histogram
	planNodes       prometheus.Histogram
	twoOptPasses    prometheus.Histogram
	twoOptMoves     prometheus.Histogram
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	providerCalls   *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
}

func NewMetric(reg prometheus.Registerer) *Metric {
	met := &Metric{
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "collectorx",
			Name:      "plans_total",
			Help:      "Number of planned tours by result.",
		}, []string{"result"}),
		planDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "collectorx",
			Name:      "plan_duration_seconds",
			Help:      "Time spent building and improving one tour.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		planNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "collectorx",
			Name:      "plan_nodes",
			Help:      "Cost matrix size of planned tours.",
			Buckets:   prometheus.ExponentialBuckets(2, 2, 10),
		}),
		twoOptPasses: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "collectorx",
			Name:      "two_opt_passes",
			Help:      "2-opt passes per improved tour.",
			Buckets:   prometheus.LinearBuckets(1, 2, 10),
		}),
		twoOptMoves: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "collectorx",
			Name:      "two_opt_moves",
			Help:      "Accepted 2-opt moves per improved tour.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "collectorx",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "collectorx",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "collectorx",
			Name:      "provider_calls_total",
			Help:      "Calls to the distance matrix provider by service and result.",
		}, []string{"service", "result"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "collectorx",
			Name:      "provider_call_duration_seconds",
			Help:      "Distance matrix provider latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service"}),
	}

	if reg != nil {
		reg.MustRegister(met.plans, met.planDuration, met.planNodes, met.twoOptPasses, met.twoOptMoves,
			met.httpRequests, met.httpDuration, met.providerCalls, met.providerLatency)
	}
	return met
}

func (met *Metric) ObservePlan(nodes int, elapsed time.Duration, err error) {
	if met == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	met.plans.WithLabelValues(result).Inc()
	met.planDuration.Observe(elapsed.Seconds())
	met.planNodes.Observe(float64(nodes))
}

func (met *Metric) ObserveTwoOpt(passes, moves int) {
	if met == nil {
		return
	}
	met.twoOptPasses.Observe(float64(passes))
	met.twoOptMoves.Observe(float64(moves))
}

func (met *Metric) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	if met == nil {
		return
	}
	met.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	met.httpDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func (met *Metric) ObserveProvider(service string, elapsed time.Duration, err error) {
	if met == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	met.providerCalls.WithLabelValues(service, result).Inc()
	met.providerLatency.WithLabelValues(service).Observe(elapsed.Seconds())
}
