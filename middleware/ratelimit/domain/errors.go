package domain

import (
	"errors"
	"strconv"
)

// StatusForbidden é o status usado para chamadores em deny-list.
// Não é um código IANA; é herdado do contrato original do middleware.
const StatusForbidden = 493

// StatusError é um erro com status HTTP associado, pensado para ser traduzido
// em resposta por um handler de erro upstream (errors.As na borda HTTP).
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return "status " + strconv.Itoa(e.Status)
	}
	return e.Message
}

// ErrForbidden sinaliza chamador em deny-list. O middleware nunca escreve
// corpo para este caso; a tradução fica com o handler de erro.
var ErrForbidden = &StatusError{Status: StatusForbidden, Message: "Forbidden"}

// ErrStoreUnavailable indica falha na consulta ao contador externo.
// É fatal para a requisição: não há retry nesta camada.
var ErrStoreUnavailable = errors.New("counter store unavailable")
