package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	Namespace = "blockseek"

	// Status label values for success/error metrics
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics records which resolution strategy answered each request.
type Metrics struct {
	resolutions        *prometheus.CounterVec
	resolutionDuration *prometheus.HistogramVec
	fallbacks          prometheus.Counter
	tokenReads         *prometheus.CounterVec
}

// New creates the collectors and registers them with registry.
func New(registry prometheus.Registerer) (*Metrics, error) {
	if registry == nil {
		return nil, errors.New("registry must not be nil")
	}

	m := &Metrics{
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "resolutions_total",
				Help:      "Timestamp to block resolutions by strategy and status",
			},
			[]string{"strategy", "status"},
		),
		resolutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "resolution_duration_seconds",
				Help:      "Time spent by a strategy to resolve a timestamp",
				Buckets:   []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"strategy"},
		),
		fallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "fallbacks_total",
				Help:      "Resolutions that fell through to a lower priority strategy",
			},
		),
		tokenReads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "token_reads_total",
				Help:      "Token metadata reads by status",
			},
			[]string{"status"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.resolutions,
		m.resolutionDuration,
		m.fallbacks,
		m.tokenReads,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// NewNoop returns metrics registered with a private registry.
func NewNoop() *Metrics {
	m, _ := New(prometheus.NewRegistry())
	return m
}

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}

func (m *Metrics) ObserveResolution(strategy string, took time.Duration, err error) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(strategy, status(err)).Inc()
	m.resolutionDuration.WithLabelValues(strategy).Observe(took.Seconds())
}

func (m *Metrics) IncFallback() {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}

func (m *Metrics) ObserveTokenRead(err error) {
	if m == nil {
		return
	}
	m.tokenReads.WithLabelValues(status(err)).Inc()
}

// Handler exposes the collectors of gatherer over HTTP.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
