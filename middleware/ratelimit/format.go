// utilitário pequeno para formatação rápida/consistente de valores numéricos
// em headers e da duração por extenso da mensagem padrão de throttle.
//    Evita puxar fmt (que é mais “pesado” e genérico) só para formatação simples

package ratelimit

import (
	"strconv"
	"time"
)

func formatInt(v int) string { return strconv.Itoa(v) }

func formatInt64(v int64) string { return strconv.FormatInt(v, 10) }

// longDuration formata a duração aproximada por extenso ("2 hours",
// "45 seconds"), arredondando para a maior unidade que couber.
func longDuration(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}

	const (
		second = int64(1000)
		minute = 60 * second
		hour   = 60 * minute
		day    = 24 * hour
	)

	switch {
	case ms >= day:
		return longUnit(ms, day, "day")
	case ms >= hour:
		return longUnit(ms, hour, "hour")
	case ms >= minute:
		return longUnit(ms, minute, "minute")
	case ms >= second:
		return longUnit(ms, second, "second")
	default:
		return strconv.FormatInt(ms, 10) + " ms"
	}
}

func longUnit(ms, unit int64, name string) string {
	n := (ms + unit/2) / unit
	s := strconv.FormatInt(n, 10) + " " + name
	if n != 1 {
		s += "s"
	}
	return s
}
