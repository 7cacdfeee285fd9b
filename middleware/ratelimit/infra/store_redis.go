package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quota-gateway/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// consumeScript incrementa o contador da janela e fixa o TTL na primeira
// cobrança, tudo em uma chamada atômica. O branch de PTTL negativo cobre
// chave sem TTL (ex: criada por uma versão antiga ou flush parcial).
var consumeScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisCounterStore implementa domain.CounterStore sobre Redis.
//
// Uma chave por identidade; a janela nasce na primeira cobrança e fecha
// quando o TTL expira. A atomicidade do script garante no máximo `max`
// resultados com Remaining>0 por janela mesmo com chamadores concorrentes.
type RedisCounterStore struct {
	rdb    *redis.Client
	prefix string
}

type RedisCounterOption func(*RedisCounterStore)

func WithCounterPrefix(prefix string) RedisCounterOption {
	return func(s *RedisCounterStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func NewRedisCounterStore(rdb *redis.Client, opts ...RedisCounterOption) *RedisCounterStore {
	s := &RedisCounterStore{
		rdb:    rdb,
		prefix: "ratelimit:counter",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Consume implementa domain.CounterStore.
func (s *RedisCounterStore) Consume(ctx context.Context, key domain.Key, window time.Duration, max int) (domain.Quota, error) {
	vals, err := consumeScript.Run(ctx, s.rdb,
		[]string{s.prefix + ":" + string(key)},
		window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return domain.Quota{}, err
	}
	if len(vals) != 2 {
		return domain.Quota{}, fmt.Errorf("unexpected script reply: %v", vals)
	}

	count, ttl := vals[0], time.Duration(vals[1])*time.Millisecond
	return quotaFromCount(count, max, time.Now(), ttl), nil
}

// quotaFromCount deriva o triple {total, remaining, reset} a partir do valor
// do contador e do TTL restante da janela.
//
// Remaining inclui a cobrança corrente (count=1 com max=N reporta N), de modo
// que "admitir se Remaining>0" resulta em exatamente max admissões por janela.
func quotaFromCount(count int64, max int, now time.Time, ttl time.Duration) domain.Quota {
	remaining := max - int(count) + 1
	if remaining < 0 {
		remaining = 0
	}
	if remaining > max {
		remaining = max
	}
	return domain.Quota{
		Total:     max,
		Remaining: remaining,
		Reset:     now.Add(ttl).Unix(),
	}
}
