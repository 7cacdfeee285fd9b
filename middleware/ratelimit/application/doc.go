// Package application contém os casos de uso (regras de aplicação) para a
// admissão por cota e o limite de concorrência.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Decide(ctx, key) consome uma unidade da cota e retorna uma
// Decision (admit/throttle + valores para headers).
package application
