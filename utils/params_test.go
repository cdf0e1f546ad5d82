package utils

import (
	"net/http/httptest"
	"testing"
)

func TestParseQueryOptionsDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/messages/abc", nil)
	opts := ParseQueryOptions(r)
	if opts.Page != 1 || opts.Limit != 20 {
		t.Fatalf("unexpected defaults: %+v", opts)
	}
}

func TestParseQueryOptionsClampsLimit(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/messages/abc?page=3&limit=500", nil)
	opts := ParseQueryOptions(r)
	if opts.Page != 3 || opts.Limit != 100 {
		t.Fatalf("unexpected options: %+v", opts)
	}

	r = httptest.NewRequest("GET", "/api/messages/abc?page=-1&limit=0", nil)
	opts = ParseQueryOptions(r)
	if opts.Page != 1 || opts.Limit != 20 {
		t.Fatalf("bad input not normalized: %+v", opts)
	}
}
