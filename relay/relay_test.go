package relay

import (
	"net/http/httptest"
	"testing"
)

func TestHandshakeTokenPrefersQueryParam(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws/chat?token=abc", nil)
	r.Header.Set("Authorization", "Bearer other")
	if got := handshakeToken(r); got != "abc" {
		t.Fatalf("expected query token, got %q", got)
	}
}

func TestHandshakeTokenFallsBackToHeader(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws/chat", nil)
	r.Header.Set("Authorization", "Bearer xyz")
	if got := handshakeToken(r); got != "Bearer xyz" {
		t.Fatalf("unexpected token %q", got)
	}

	empty := httptest.NewRequest("GET", "/ws/chat", nil)
	if got := handshakeToken(empty); got != "" {
		t.Fatalf("expected empty token, got %q", got)
	}
}
