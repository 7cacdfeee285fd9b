package domain

// Camada de domínio da cota por janela fixa.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"context"
	"time"
)

type Key string

// Defaults da cota quando a configuração não informa valores.
const (
	DefaultWindow = 1 * time.Hour
	DefaultMax    = 2500
)

// Quota é o estado da cota reportado pelo contador externo ao consumir
// uma unidade.
//
// Remaining inclui a própria requisição sendo cobrada: a primeira requisição
// de uma janela com max=N reporta N, a N-ésima reporta 1 e a N+1-ésima
// reporta 0. Reset é o timestamp UNIX (segundos) em que a janela fecha.
type Quota struct {
	Total     int
	Remaining int
	Reset     int64
}

// CounterStore é o cliente do contador atômico por janela fixa (ex: Redis).
//
// Consume incrementa o contador de key na janela corrente e retorna o estado
// resultante. A implementação deve garantir atomicidade entre chamadores
// concorrentes (no máximo max resultados com Remaining>0 por janela) e deve
// falhar — nunca degradar silenciosamente — quando o backend estiver
// indisponível.
type CounterStore interface {
	Consume(ctx context.Context, key Key, window time.Duration, max int) (Quota, error)
}

// Decision é o resultado da avaliação de cota para uma requisição.
//
// Remaining aqui já é o valor a reportar ao cliente ("restantes depois desta
// chamada"): store.Remaining-1, nunca negativo.
type Decision struct {
	Allowed   bool
	Total     int
	Remaining int
	Reset     int64
}
