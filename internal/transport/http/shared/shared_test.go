package shared

import (
	"net/http/httptest"
	"testing"
)

func TestParseDateFormats(t *testing.T) {
	if parsed, err := ParseDate("2026-03-05"); err != nil || parsed.Day() != 5 {
		t.Fatalf("expected calendar date to parse, got %v %v", parsed, err)
	}
	if parsed, err := ParseDate("2026-03-05T09:30:00Z"); err != nil || parsed.Hour() != 9 {
		t.Fatalf("expected RFC3339 to parse, got %v %v", parsed, err)
	}
	if _, err := ParseDate("05/03/2026"); err == nil {
		t.Fatal("expected slash format to be rejected")
	}
	if parsed, err := ParseDate(""); err != nil || !parsed.IsZero() {
		t.Fatalf("expected empty input to yield zero time, got %v %v", parsed, err)
	}
}

func TestParsePaginationClampsLimit(t *testing.T) {
	r := httptest.NewRequest("GET", "/audit?limit=500&offset=20", nil)
	p := ParsePagination(r, 50, 100)
	if p.Limit != 100 || p.Offset != 20 {
		t.Fatalf("expected limit clamped to 100 offset 20, got %+v", p)
	}

	r = httptest.NewRequest("GET", "/audit?limit=bogus&offset=-3", nil)
	p = ParsePagination(r, 50, 100)
	if p.Limit != 50 || p.Offset != 0 {
		t.Fatalf("expected defaults on bad input, got %+v", p)
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.9:4040"
	if ip := ClientIP(r); ip != "192.0.2.9" {
		t.Fatalf("expected remote addr host, got %q", ip)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if ip := ClientIP(r); ip != "203.0.113.7" {
		t.Fatalf("expected first forwarded hop, got %q", ip)
	}
}
