package application

import (
	"context"
	"fmt"
	"time"

	"quota-gateway/middleware/ratelimit/domain"
)

// Service concentra a regra de aplicação da cota por janela fixa.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas consome uma unidade
// do contador e traduz o estado em decisão.
type Service struct {
	Store  domain.CounterStore
	Window time.Duration
	Max    int
}

// Decide consome uma unidade da cota de key e decide admit/throttle.
//
// O Remaining da Decision já é o valor a reportar ("restantes depois desta
// chamada"): store.Remaining-1, nunca negativo. Falha do contador é fatal
// para a requisição (sem retry nesta camada).
func (s Service) Decide(ctx context.Context, key domain.Key) (domain.Decision, error) {
	window := s.Window
	if window <= 0 {
		window = domain.DefaultWindow
	}
	max := s.Max
	if max <= 0 {
		max = domain.DefaultMax
	}

	q, err := s.Store.Consume(ctx, key, window, max)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	calls := q.Remaining - 1
	if calls < 0 {
		calls = 0
	}

	return domain.Decision{
		Allowed:   q.Remaining > 0,
		Total:     q.Total,
		Remaining: calls,
		Reset:     q.Reset,
	}, nil
}
