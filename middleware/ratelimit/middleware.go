package ratelimit

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"quota-gateway/middleware/ratelimit/application"
	"quota-gateway/middleware/ratelimit/domain"
)

// KeyFunc resolve a identidade do chamador. ok=false desliga a limitação para
// a requisição (bypass total: sem consulta ao contador, sem headers).
type KeyFunc func(r *http.Request) (key string, ok bool)

// Predicate avalia a requisição para allow/deny-list. Pode consultar fontes
// externas (a chamada bloqueia a requisição corrente, não o servidor); erro
// aborta a requisição via ErrorHandler.
type Predicate func(r *http.Request) (bool, error)

// HeaderNames permite renomear os três headers de cota.
type HeaderNames struct {
	Total     string
	Remaining string
	Reset     string
}

// ErrorHandler traduz erros em resposta HTTP. Recebe deny-list (493), falha
// do contador e, com Options.Throw, também o throttle (429).
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type Options struct {
	Store domain.CounterStore
	Stats domain.StatsStore

	Window time.Duration // default 1h
	Max    int           // default 2500

	KeyFn     KeyFunc
	Whitelist Predicate
	Blacklist Predicate

	Headers        HeaderNames
	DisableHeaders bool

	// Throw entrega o throttle como erro ao ErrorHandler em vez de escrever
	// a resposta 429 direto. Deny-list sempre passa pelo ErrorHandler,
	// independente de Throw: não existe resposta in-band para 493.
	Throw        bool
	ErrorMessage string
	ErrorHandler ErrorHandler
}

// DefaultKeyFunc resolve a identidade padrão: o valor de X-Forwarded-For
// quando presente, senão o host do RemoteAddr.
//
// Atenção: o header é usado como veio, sem parse de múltiplos hops — sem um
// proxy confiável na frente, o chamador consegue forjar a própria identidade.
// O comportamento é mantido de propósito; injete um KeyFn se precisar de algo
// mais estrito.
func DefaultKeyFunc() KeyFunc {
	return func(r *http.Request) (string, bool) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			return xff, true
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host, true
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr, true
		}
		return "unknown", true
	}
}

// DefaultErrorHandler escreve apenas o status do erro, sem corpo.
// Erros sem status viram 500.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	var se *domain.StatusError
	if errors.As(err, &se) {
		w.WriteHeader(se.Status)
		return
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.Window <= 0 {
		opts.Window = domain.DefaultWindow
	}
	if opts.Max <= 0 {
		opts.Max = domain.DefaultMax
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc()
	}
	if opts.Headers.Total == "" {
		opts.Headers.Total = "X-RateLimit-Limit"
	}
	if opts.Headers.Remaining == "" {
		opts.Headers.Remaining = "X-RateLimit-Remaining"
	}
	if opts.Headers.Reset == "" {
		opts.Headers.Reset = "X-RateLimit-Reset"
	}
	if opts.ErrorHandler == nil {
		opts.ErrorHandler = DefaultErrorHandler
	}

	svc := application.Service{
		Store:  opts.Store,
		Window: opts.Window,
		Max:    opts.Max,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opts.Store == nil {
				next.ServeHTTP(w, r)
				return
			}

			key, enabled := opts.KeyFn(r)

			whitelisted, err := eval(opts.Whitelist, r)
			if err != nil {
				opts.ErrorHandler(w, r, err)
				return
			}
			blacklisted, err := eval(opts.Blacklist, r)
			if err != nil {
				opts.ErrorHandler(w, r, err)
				return
			}

			// deny-list vence inclusive sobre resolver desligado e allow-list
			if blacklisted {
				record(r, opts.Stats, key, domain.OutcomeDenied)
				opts.ErrorHandler(w, r, domain.ErrForbidden)
				return
			}

			if !enabled || whitelisted {
				record(r, opts.Stats, key, domain.OutcomeBypassed)
				next.ServeHTTP(w, r)
				return
			}

			dec, err := svc.Decide(r.Context(), domain.Key(key))
			if err != nil {
				opts.ErrorHandler(w, r, err)
				return
			}

			if !opts.DisableHeaders {
				h := w.Header()
				h.Set(opts.Headers.Total, formatInt(dec.Total))
				h.Set(opts.Headers.Remaining, formatInt(dec.Remaining))
				h.Set(opts.Headers.Reset, formatInt64(dec.Reset))
			}

			if dec.Allowed {
				record(r, opts.Stats, key, domain.OutcomeAdmitted)
				next.ServeHTTP(w, r)
				return
			}

			record(r, opts.Stats, key, domain.OutcomeThrottled)

			nowMs := time.Now().UnixMilli()
			delta := time.Duration(dec.Reset*1000-nowMs) * time.Millisecond
			after := dec.Reset - nowMs/1000
			w.Header().Set("Retry-After", formatInt64(after))

			msg := opts.ErrorMessage
			if msg == "" {
				msg = "Rate limit exceeded, retry in " + longDuration(delta)
			}

			if opts.Throw {
				opts.ErrorHandler(w, r, &domain.StatusError{
					Status:  http.StatusTooManyRequests,
					Message: msg,
				})
				return
			}

			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = io.WriteString(w, msg)
		})
	}
}

func eval(p Predicate, r *http.Request) (bool, error) {
	if p == nil {
		return false, nil
	}
	return p(r)
}

// record é best-effort: erro do destino de stats nunca derruba a requisição.
func record(r *http.Request, stats domain.StatsStore, key string, outcome domain.Outcome) {
	if stats == nil {
		return
	}
	_ = stats.Record(r.Context(), domain.StatsEvent{
		Key:     domain.Key(key),
		Outcome: outcome,
		Method:  r.Method,
		Path:    r.URL.Path,
		At:      time.Now(),
	})
}
