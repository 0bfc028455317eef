package plugin

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Run results recorded per plugin.
const (
	ResultOK          = "ok"
	ResultEmpty       = "empty"
	ResultPassthrough = "passthrough"
)

type metrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "routeglass_plugin_runs_total",
			Help: "Output plugin invocations by result.",
		}, []string{"plugin", "platform", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "routeglass_parse_duration_seconds",
			Help:    "Time spent in an applicable output plugin.",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"plugin"}),
	}
	if reg == nil {
		return m
	}
	m.runs = registerOrReuse(reg, m.runs).(*prometheus.CounterVec)
	m.duration = registerOrReuse(reg, m.duration).(*prometheus.HistogramVec)
	return m
}

// Several pipelines may share one registerer; the first registration wins.
func registerOrReuse(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}
