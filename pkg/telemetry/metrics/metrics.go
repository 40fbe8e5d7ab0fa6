package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace is the prefix for all metrics exported by the archiver.
const Namespace = "workbench_archiver"

// Collector owns the Prometheus registry and all archiver metrics.
//
// Metrics:
//   - workbench_archiver_api_requests_total: API calls by action and outcome
//   - workbench_archiver_api_request_duration_seconds: API call latency by action
//   - workbench_archiver_api_retries_total: retry attempts by action
//   - workbench_archiver_pages_listed_total: listing pages fetched
//   - workbench_archiver_samples_total: sample classifications by result
//   - workbench_archiver_scans_archived_total: archive attempts by outcome
type Collector struct {
	registry *prometheus.Registry

	apiRequests   *prometheus.CounterVec
	apiDuration   *prometheus.HistogramVec
	apiRetries    *prometheus.CounterVec
	pagesListed   prometheus.Counter
	samples       *prometheus.CounterVec
	scansArchived *prometheus.CounterVec
}

// NewCollector creates a collector with its own registry and registers
// all archiver metrics on it.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		apiRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "api_requests_total",
				Help:      "Total number of Workbench API calls",
			},
			[]string{"action", "outcome"},
		),

		apiDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "api_request_duration_seconds",
				Help:      "Duration of Workbench API calls in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
			},
			[]string{"action"},
		),

		apiRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "api_retries_total",
				Help:      "Total number of Workbench API retry attempts",
			},
			[]string{"action"},
		),

		pagesListed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "pages_listed_total",
				Help:      "Total number of scan listing pages fetched",
			},
		),

		samples: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "samples_total",
				Help:      "Sample observations by classification result",
			},
			[]string{"result"},
		),

		scansArchived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "scans_archived_total",
				Help:      "Archive attempts by outcome",
			},
			[]string{"outcome"},
		),
	}

	c.registry.MustRegister(
		c.apiRequests,
		c.apiDuration,
		c.apiRetries,
		c.pagesListed,
		c.samples,
		c.scansArchived,
	)

	return c
}

// APIRequest records one completed API call.
func (c *Collector) APIRequest(action, outcome string, duration time.Duration) {
	c.apiRequests.WithLabelValues(action, outcome).Inc()
	c.apiDuration.WithLabelValues(action).Observe(duration.Seconds())
}

// APIRetry records one retry attempt for an API action.
func (c *Collector) APIRetry(action string) {
	c.apiRetries.WithLabelValues(action).Inc()
}

// PageListed records one fetched listing page.
func (c *Collector) PageListed() {
	c.pagesListed.Inc()
}

// SampleObserved records the classification of one sampled scan.
// Result is one of "stale", "fresh", "archived", "invalid".
func (c *Collector) SampleObserved(result string) {
	c.samples.WithLabelValues(result).Inc()
}

// ScanArchived records one archive attempt outcome ("success" or "failure").
func (c *Collector) ScanArchived(outcome string) {
	c.scansArchived.WithLabelValues(outcome).Inc()
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
