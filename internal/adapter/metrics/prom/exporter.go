package prom

import (
	"net/http"

	"sessionreplay/internal/app/ports"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter records playback metrics into its own Prometheus registry.
type Exporter struct {
	registry      *prometheus.Registry
	emitted       *prometheus.CounterVec
	cancellations prometheus.Counter
	completions   prometheus.Counter
	fetchFailures prometheus.Counter
}

func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		emitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "replay",
			Name:      "events_emitted_total",
			Help:      "Events emitted to the sink, by playback mode.",
		}, []string{"mode"}),
		cancellations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "replay",
			Name:      "cancellations_total",
			Help:      "Replay sessions cancelled before completing on their timer.",
		}),
		completions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "replay",
			Name:      "completions_total",
			Help:      "Replay sessions that finished timed playback.",
		}),
		fetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "replay",
			Name:      "fetch_failures_total",
			Help:      "Session event log fetches that failed.",
		}),
	}
	e.registry.MustRegister(e.emitted, e.cancellations, e.completions, e.fetchFailures)
	return e
}

func (e *Exporter) RecordEmitted(mode ports.PlaybackMode) {
	e.emitted.WithLabelValues(string(mode)).Inc()
}

func (e *Exporter) RecordCancelled()    { e.cancellations.Inc() }
func (e *Exporter) RecordCompleted()    { e.completions.Inc() }
func (e *Exporter) RecordFetchFailure() { e.fetchFailures.Inc() }

func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// StartHTTP serves /metrics on addr in the background.
func (e *Exporter) StartHTTP(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	go func() {
		hlog.Infof("prometheus metrics on %s/metrics", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			hlog.Errorf("metrics server: %v", err)
		}
	}()
}
