// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - RedisCounterStore: contador de janela fixa atômico em Redis (INCR+PEXPIRE)
//   - MemoryCounterStore: contador de janela fixa em memória, para dev/testes
//   - RedisStatsStore / MemoryStatsStore / PromStats: destinos de estatísticas
//   - ChanPool: semáforo simples para limite de concorrência
package infra
