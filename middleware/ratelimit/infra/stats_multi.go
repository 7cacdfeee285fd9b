package infra

import (
	"context"
	"errors"

	"quota-gateway/middleware/ratelimit/domain"
)

// MultiStats replica cada evento para vários destinos (ex: Redis + Prometheus).
//
// Todos os destinos recebem o evento mesmo quando algum falha; os erros são
// agregados. O contrato continua best-effort no middleware.
type MultiStats []domain.StatsStore

func (m MultiStats) Record(ctx context.Context, ev domain.StatsEvent) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
