package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skyhub",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	checkIns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skyhub",
			Name:      "check_ins_total",
			Help:      "Check-in attempts by outcome.",
		},
		[]string{"outcome"},
	)

	trackerTicks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "skyhub",
			Name:      "tracker_ticks_total",
			Help:      "Position simulator ticks.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, checkIns, trackerTicks)
	})
}

// IncHTTP increments the request counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncCheckIn increments the check-in counter for an outcome label
// ("success" or "not_found").
func IncCheckIn(outcome string) {
	checkIns.WithLabelValues(outcome).Inc()
}

// IncTrackerTick counts one simulator tick.
func IncTrackerTick() {
	trackerTicks.Inc()
}
