// Package promhook exports cache events as Prometheus metrics.
//
//	reg := prometheus.NewRegistry()
//	hooks, err := promhook.New(promhook.Options{Namespace: "myapp", Registerer: reg})
//
// Metrics (with the namespace prefix):
//
//	fncache_events_total{cache,event}      hit|miss|set|set_rejected|delete|delete_failed
//	fncache_errors_total{cache,op}         store faults
//	fncache_op_duration_seconds{cache,op}  store latency
package promhook

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/fncache"
)

type Options struct {
	Namespace   string
	ConstLabels prometheus.Labels
	// Registerer defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
	// Buckets for the latency histogram; nil uses ExponentialBuckets(50µs, 2, 14).
	Buckets []float64
}

type Hooks struct {
	events   *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ fncache.Hooks = (*Hooks)(nil)

func New(opts Options) (*Hooks, error) {
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	buckets := opts.Buckets
	if buckets == nil {
		buckets = prometheus.ExponentialBuckets(50e-6, 2, 14)
	}

	h := &Hooks{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Subsystem:   "fncache",
			Name:        "events_total",
			Help:        "Cache events by outcome.",
			ConstLabels: opts.ConstLabels,
		}, []string{"cache", "event"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Subsystem:   "fncache",
			Name:        "errors_total",
			Help:        "Store faults swallowed by the cache.",
			ConstLabels: opts.ConstLabels,
		}, []string{"cache", "op"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   opts.Namespace,
			Subsystem:   "fncache",
			Name:        "op_duration_seconds",
			Help:        "Time spent in the store per operation.",
			ConstLabels: opts.ConstLabels,
			Buckets:     buckets,
		}, []string{"cache", "op"}),
	}
	for _, c := range []prometheus.Collector{h.events, h.errors, h.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hooks) observe(e fncache.Event, op, event string) {
	h.events.WithLabelValues(e.Cache, event).Inc()
	h.duration.WithLabelValues(e.Cache, op).Observe(e.Elapsed.Seconds())
}

func (h *Hooks) Hit(e fncache.Event)  { h.observe(e, "get", "hit") }
func (h *Hooks) Miss(e fncache.Event) { h.observe(e, "get", "miss") }

func (h *Hooks) Set(e fncache.Event, ok bool) {
	if ok {
		h.observe(e, "set", "set")
		return
	}
	h.observe(e, "set", "set_rejected")
}

func (h *Hooks) Delete(e fncache.Event, ok bool) {
	if ok {
		h.observe(e, "delete", "delete")
		return
	}
	h.observe(e, "delete", "delete_failed")
}

func (h *Hooks) Error(e fncache.Event, op string, _ error) {
	h.errors.WithLabelValues(e.Cache, op).Inc()
}
