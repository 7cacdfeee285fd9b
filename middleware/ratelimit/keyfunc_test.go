package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDefaultKeyFunc_UsesRawXForwardedFor(t *testing.T) {
	fn := DefaultKeyFunc()

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	r.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")

	// valor bruto, sem parse de múltiplos hops (comportamento documentado)
	if got, ok := fn(r); !ok || got != "1.2.3.4, 5.6.7.8" {
		t.Fatalf("expected raw XFF value, got %q ok=%v", got, ok)
	}
}

func TestDefaultKeyFunc_FallbacksToRemoteAddrHost(t *testing.T) {
	fn := DefaultKeyFunc()

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.9:5555"

	if got, ok := fn(r); !ok || got != "10.0.0.9" {
		t.Fatalf("expected remote host, got %q ok=%v", got, ok)
	}
}

func TestDefaultKeyFunc_UsesRawRemoteAddrWithoutPort(t *testing.T) {
	fn := DefaultKeyFunc()

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.9"

	if got, ok := fn(r); !ok || got != "10.0.0.9" {
		t.Fatalf("expected raw remote addr, got %q ok=%v", got, ok)
	}
}

func TestDefaultKeyFunc_UnknownWhenNothingResolves(t *testing.T) {
	fn := DefaultKeyFunc()

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = ""

	if got, ok := fn(r); !ok || got != "unknown" {
		t.Fatalf("expected unknown key, got %q ok=%v", got, ok)
	}
}
