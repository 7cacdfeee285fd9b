// Package ratelimit fornece adapters HTTP (net/http) para admissão por cota
// de janela fixa e limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (consumo da cota, decisão admit/throttle) sem net/http
//   - infra: implementações concretas (contador em Redis/memória, destinos de stats)
//   - ratelimit (este pacote): middlewares HTTP + resolução de identidade +
//     predicados de allow/deny-list + tradução para status/headers
//
// Fluxo por requisição:
//
//  1. Resolve a identidade do chamador (KeyFn ou padrão XFF/RemoteAddr)
//  2. Avalia allow/deny-list; deny-list responde 493 antes de qualquer bypass
//  3. Identidade desligada ou allow-list: chama o próximo handler sem tocar a cota
//  4. Consome uma unidade no contador e emite X-RateLimit-Limit/-Remaining/-Reset
//  5. Com cota: chama o próximo handler. Sem cota: 429 + Retry-After, com
//     resposta direta ou erro para o handler upstream (Options.Throw)
//
// Variáveis de ambiente do binário gateway (cmd/gateway) controlam o comportamento,
// como QUOTA_WINDOW, QUOTA_MAX, RATE_STORE e CONCURRENCY_MAX.
package ratelimit
