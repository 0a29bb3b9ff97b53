package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	rate "github.com/nholding/rate-calendar/internal/rate/domain"
)

const (
	namespace = "rate_calendar"

	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

// Collectors groups every metric the service exports.
type Collectors struct {
	// batches counts processed batches.
	// Labels: outcome (succeeded, failed), stage (the stage that decided it)
	batches *prometheus.CounterVec

	// records counts records received, valid or not.
	records prometheus.Counter

	// recordErrors counts failure reasons across all batches.
	// Labels: reason
	recordErrors *prometheus.CounterVec

	// merges counts entries folded into an overlapping same-rate entry.
	merges prometheus.Counter

	// unresolved counts same-rate overlaps left in a successful calendar.
	unresolved prometheus.Counter

	// duration measures pipeline time per batch.
	// Labels: outcome
	duration *prometheus.HistogramVec

	// sinkFailures counts audit writes that failed.
	// Labels: sink (archive, ledger)
	sinkFailures *prometheus.CounterVec

	// httpRequests counts answered requests.
	// Labels: route, code
	httpRequests *prometheus.CounterVec
}

// NewCollectors creates the collectors and registers them on reg.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	f := promauto.With(reg)

	return &Collectors{
		batches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Processed batches by outcome and deciding stage",
		}, []string{"outcome", "stage"}),

		records: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records received across all batches",
		}),

		recordErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Batch errors by reason",
		}, []string{"reason"}),

		merges: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merges_total",
			Help:      "Entries merged into an overlapping entry with the same rate",
		}),

		unresolved: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unresolved_overlaps_total",
			Help:      "Same-rate overlaps left in a successful calendar",
		}),

		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Time to process one batch",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"outcome"}),

		sinkFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "sink_failures_total",
			Help:      "Failed audit writes by sink",
		}, []string{"sink"}),

		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "code"}),
	}
}

// Outcome names the result for the outcome label.
func Outcome(res rate.Result) string {
	if res.Succeeded() {
		return OutcomeSucceeded
	}
	return OutcomeFailed
}

// ObserveBatch records one pipeline run.
func (c *Collectors) ObserveBatch(res rate.Result, d time.Duration) {
	if c == nil {
		return
	}

	outcome := Outcome(res)
	c.batches.WithLabelValues(outcome, string(res.Stage)).Inc()
	c.records.Add(float64(res.Stats.Records))
	c.merges.Add(float64(res.Stats.Merged))
	c.unresolved.Add(float64(len(res.Stats.Unresolved)))
	c.duration.WithLabelValues(outcome).Observe(d.Seconds())

	for reason, n := range res.Reasons() {
		c.recordErrors.WithLabelValues(string(reason)).Add(float64(n))
	}
}

// SinkFailed records a failed audit write.
func (c *Collectors) SinkFailed(sink string) {
	if c == nil {
		return
	}
	c.sinkFailures.WithLabelValues(sink).Inc()
}

// ObserveRequest records an answered HTTP request.
func (c *Collectors) ObserveRequest(route string, code int) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
