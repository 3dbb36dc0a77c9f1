// Package metrics records parse outcomes with Prometheus collectors.
//
// All Prometheus types stay inside this package; callers only report what
// happened through ObserveParse and mount Handler.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/cookielog/internal/core"
)

// Outcome label values besides the parse error kinds.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder owns a private registry and the parse collectors.
type Recorder struct {
	reg      *prometheus.Registry
	parses   *prometheus.CounterVec
	rows     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates a Recorder with its collectors registered.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		parses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cookielog_parse_total",
				Help: "Documents parsed, partitioned by schema and outcome.",
			},
			[]string{"schema", "outcome"},
		),
		rows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cookielog_parse_rows_total",
				Help: "Records produced by successful parses.",
			},
			[]string{"schema"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cookielog_parse_duration_seconds",
				Help:    "Time spent parsing a document.",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"schema"},
		),
	}

	r.reg.MustRegister(r.parses, r.rows, r.duration)
	return r
}

// ObserveParse records one parse of a document against schema.
func (r *Recorder) ObserveParse(schema string, rows int, err error, d time.Duration) {
	outcome := Outcome(err)
	r.parses.WithLabelValues(schema, outcome).Inc()
	r.duration.WithLabelValues(schema).Observe(d.Seconds())
	if err == nil {
		r.rows.WithLabelValues(schema).Add(float64(rows))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Outcome maps an error to its outcome label: "ok", the parse error kind, or
// "error" for anything else.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var perr *core.ParseError
	if errors.As(err, &perr) {
		return perr.Kind.String()
	}
	return OutcomeError
}
