package contract

import "github.com/prometheus/client_golang/prometheus"

// Metrics is optional; a nil *Metrics records nothing.
type Metrics struct {
	calls     *prometheus.CounterVec
	treasury  prometheus.Gauge
	proposals prometheus.Gauge
}

// NewMetrics registers the engine collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "okinoko_vote",
			Name:      "calls_total",
			Help:      "Engine calls by operation and result kind.",
		}, []string{"op", "result"}),
		treasury: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "okinoko_vote",
			Name:      "treasury_balance",
			Help:      "Treasury balance in native units.",
		}),
		proposals: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "okinoko_vote",
			Name:      "proposals",
			Help:      "Number of proposals ever created.",
		}),
	}
	for _, c := range []prometheus.Collector{m.calls, m.treasury, m.proposals} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(op, result string) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(op, result).Inc()
}

func (m *Metrics) setTreasury(v uint64) {
	if m == nil {
		return
	}
	m.treasury.Set(float64(v))
}

func (m *Metrics) setProposals(n uint64) {
	if m == nil {
		return
	}
	m.proposals.Set(float64(n))
}
