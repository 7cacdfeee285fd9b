package infra

import (
	"context"
	"sync"
	"time"

	"quota-gateway/middleware/ratelimit/domain"
)

// MemoryCounterStore é uma implementação de domain.CounterStore em memória,
// com uma janela fixa por chave e limpeza periódica de janelas encerradas.
//
// Útil para testes e desenvolvimento; para mais de um processo use o
// RedisCounterStore.
type MemoryCounterStore struct {
	mu           sync.Mutex
	entries      map[string]*counterEntry
	cleanupEvery time.Duration
}

type counterEntry struct {
	count int
	reset time.Time
}

type MemoryCounterOption func(*MemoryCounterStore)

func WithCounterCleanupEvery(d time.Duration) MemoryCounterOption {
	return func(s *MemoryCounterStore) { s.cleanupEvery = d }
}

func NewMemoryCounterStore(opts ...MemoryCounterOption) *MemoryCounterStore {
	s := &MemoryCounterStore{
		entries:      make(map[string]*counterEntry),
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Consume implementa domain.CounterStore.
//
// A janela nasce na primeira cobrança (reset = agora + window), igual ao
// comportamento do contador em Redis — não há alinhamento em fronteiras
// fixas de relógio.
func (s *MemoryCounterStore) Consume(_ context.Context, key domain.Key, window time.Duration, max int) (domain.Quota, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[string(key)]
	if !ok || !now.Before(ent.reset) {
		ent = &counterEntry{reset: now.Add(window)}
		s.entries[string(key)] = ent
	}
	ent.count++

	remaining := max - ent.count + 1
	if remaining < 0 {
		remaining = 0
	}
	if remaining > max {
		remaining = max
	}

	return domain.Quota{
		Total:     max,
		Remaining: remaining,
		Reset:     ent.reset.Unix(),
	}, nil
}

// Cleanup remove janelas já encerradas.
func (s *MemoryCounterStore) Cleanup() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if !now.Before(ent.reset) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor inicia uma goroutine que limpa janelas encerradas periodicamente.
// Pare cancelando o contexto.
func (s *MemoryCounterStore) StartJanitor(ctx DoneContext) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

// DoneContext é o mínimo que o janitor precisa de um context.Context.
// (Permite reuso em libs sem acoplar.)
type DoneContext interface {
	Done() <-chan struct{}
}
