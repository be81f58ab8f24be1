package cache

import (
	"testing"
	"time"
)

func TestTTLExpiry(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewWithClock[int](15*time.Second, func() time.Time { return current })

	c.Set("manager-1", 42)

	got, ok := c.Get("manager-1")
	if !ok || got != 42 {
		t.Fatalf("expected cached 42, got %v (ok=%v)", got, ok)
	}

	current = current.Add(14 * time.Second)
	if _, ok := c.Get("manager-1"); !ok {
		t.Fatal("entry expired before ttl")
	}

	current = current.Add(2 * time.Second)
	if _, ok := c.Get("manager-1"); ok {
		t.Fatal("entry survived past ttl")
	}
}

func TestTTLInvalidate(t *testing.T) {
	c := New[string](time.Minute)
	c.Set("admin", "snapshot")
	c.Invalidate("admin")
	if _, ok := c.Get("admin"); ok {
		t.Fatal("expected entry removed")
	}
}

func TestTTLZeroDurationDisabled(t *testing.T) {
	c := New[int](0)
	c.Set("k", 1)
	if _, ok := c.Get("k"); ok {
		t.Fatal("zero-ttl cache must never hit")
	}
}
