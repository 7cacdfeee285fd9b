package domain

import (
	"context"
	"time"
)

// Outcome é o desfecho da decisão de admissão para uma requisição.
type Outcome string

const (
	OutcomeAdmitted  Outcome = "admitted"
	OutcomeBypassed  Outcome = "bypassed"
	OutcomeThrottled Outcome = "throttled"
	OutcomeDenied    Outcome = "denied"
)

// StatsEvent representa um evento de decisão do middleware de admissão.
//
// Ele é propositalmente "agnóstico de HTTP": Method/Path são strings genéricas
// e podem ser usadas para web, gRPC, etc.
//
// Observação: cuidado com cardinalidade (ex.: salvar Key/Path sem controle pode
// explodir o número de séries/chaves em uma base como Redis/Prometheus).
type StatsEvent struct {
	Key     Key
	Outcome Outcome

	Method string
	Path   string

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas de decisão.
//
// Implementações podem armazenar em Redis, Prometheus, memória, etc.
// O middleware deve tratar erro como best-effort (não derrubar request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
