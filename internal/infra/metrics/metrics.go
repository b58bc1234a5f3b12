package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Imports        *prometheus.CounterVec
	Exports        prometheus.Counter
	OpnameSessions prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Imports: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "toko_imports_total",
			Help: "Spreadsheet imports by result.",
		}, []string{"result"}),
		Exports: factory.NewCounter(prometheus.CounterOpts{
			Name: "toko_exports_total",
			Help: "Spreadsheet exports built.",
		}),
		OpnameSessions: factory.NewCounter(prometheus.CounterOpts{
			Name: "toko_opname_sessions_total",
			Help: "Completed stock opname sessions.",
		}),
	}
}
