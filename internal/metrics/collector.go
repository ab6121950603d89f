// Package metrics keeps process-wide request counters and recent request
// durations and exposes them in the Prometheus text format.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultSampleCap bounds the duration samples kept per (method, path).
const DefaultSampleCap = 1000

type routeKey struct {
	method string
	path   string
}

// samples is a ring buffer of the most recent durations, in seconds.
type samples struct {
	values []float64
	next   int
	full   bool
}

func (s *samples) add(v float64) {
	s.values[s.next] = v
	s.next++
	if s.next == len(s.values) {
		s.next = 0
		s.full = true
	}
}

func (s *samples) sumCount() (float64, uint64) {
	n := s.next
	if s.full {
		n = len(s.values)
	}
	var sum float64
	for _, v := range s.values[:n] {
		sum += v
	}
	return sum, uint64(n)
}

type Collector struct {
	registry *prometheus.Registry

	requests  *prometheus.CounterVec
	startTime prometheus.Gauge

	durationDesc *prometheus.Desc
	sampleCap    int

	mu        sync.Mutex
	durations map[routeKey]*samples
}

func NewCollector(version string, sampleCap int) *Collector {
	if sampleCap <= 0 {
		sampleCap = DefaultSampleCap
	}

	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		startTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "app_start_time_seconds",
			Help: "Unix timestamp when the app started",
		}),
		durationDesc: prometheus.NewDesc(
			"http_request_duration_seconds",
			"HTTP request duration in seconds",
			[]string{"method", "path"}, nil,
		),
		sampleCap: sampleCap,
		durations: make(map[routeKey]*samples),
	}

	info := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "app_info",
		Help:        "Application information",
		ConstLabels: prometheus.Labels{"version": version},
	})
	info.Set(1)

	c.registry.MustRegister(info, c.requests, c)
	return c
}

// MarkStarted records the process start time and begins exporting it.
func (c *Collector) MarkStarted(at time.Time) {
	c.startTime.Set(float64(at.UnixNano()) / 1e9)
	_ = c.registry.Register(c.startTime)
}

// Observe records one completed request. Safe for concurrent use.
func (c *Collector) Observe(method, path string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()

	key := routeKey{method: method, path: path}
	c.mu.Lock()
	s, ok := c.durations[key]
	if !ok {
		s = &samples{values: make([]float64, c.sampleCap)}
		c.durations[key] = s
	}
	s.add(duration.Seconds())
	c.mu.Unlock()
}

// Describe implements prometheus.Collector for the duration summaries.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.durationDesc
}

// Collect reduces each duration buffer to a quantile-free summary.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, s := range c.durations {
		sum, count := s.sumCount()
		ch <- prometheus.MustNewConstSummary(c.durationDesc, count, sum, nil, key.method, key.path)
	}
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.registry
}
