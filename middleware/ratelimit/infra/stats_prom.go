package infra

import (
	"context"

	"quota-gateway/middleware/ratelimit/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// PromStats exporta as decisões como um counter Prometheus com label de
// desfecho. Só o desfecho vira label: rota/chave ficam de fora para não
// explodir cardinalidade.
type PromStats struct {
	decisions *prometheus.CounterVec
}

// NewPromStats registra o counter em reg. Use prometheus.DefaultRegisterer
// para o registry global do processo.
func NewPromStats(reg prometheus.Registerer) (*PromStats, error) {
	s := &PromStats{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ratelimit",
			Name:      "decisions_total",
			Help:      "Admission decisions by outcome.",
		}, []string{"outcome"}),
	}
	if err := reg.Register(s.decisions); err != nil {
		return nil, err
	}
	return s, nil
}

// Record implementa domain.StatsStore.
func (s *PromStats) Record(_ context.Context, ev domain.StatsEvent) error {
	outcome := string(ev.Outcome)
	if outcome == "" {
		outcome = "unknown"
	}
	s.decisions.WithLabelValues(outcome).Inc()
	return nil
}
