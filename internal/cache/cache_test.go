package cache

import (
	"testing"
	"time"
)

func TestEntryStartsEmpty(t *testing.T) {
	e := New[int](time.Minute)
	if _, ok := e.Get(); ok {
		t.Fatal("new entry should miss")
	}
	if !e.CapturedAt().IsZero() {
		t.Fatal("new entry should have zero capture time")
	}
}

func TestEntrySetGet(t *testing.T) {
	e := New[[]string](time.Minute)
	e.Set([]string{"a", "b"})

	got, ok := e.Get()
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if len(got) != 2 || got[0] != "a" {
		t.Fatalf("unexpected value %v", got)
	}
	if e.CapturedAt().IsZero() {
		t.Fatal("capture time should be set")
	}
}

func TestEntryExpires(t *testing.T) {
	e := New[int](50 * time.Millisecond)
	e.Set(7)

	if _, ok := e.Get(); !ok {
		t.Fatal("expected hit before TTL")
	}
	time.Sleep(80 * time.Millisecond)
	if _, ok := e.Get(); ok {
		t.Fatal("expected miss after TTL")
	}
}

func TestEntryInvalidate(t *testing.T) {
	e := New[int](time.Hour)
	e.Set(7)
	e.Invalidate()

	if _, ok := e.Get(); ok {
		t.Fatal("expected miss after Invalidate")
	}
	if !e.CapturedAt().IsZero() {
		t.Fatal("Invalidate should clear capture time")
	}

	// A fresh Set after invalidation behaves normally.
	e.Set(9)
	if got, ok := e.Get(); !ok || got != 9 {
		t.Fatalf("expected (9, true), got (%d, %v)", got, ok)
	}
}

func TestEntryZeroTTLAlwaysMisses(t *testing.T) {
	e := New[int](0)
	e.Set(1)
	if _, ok := e.Get(); ok {
		t.Fatal("zero TTL should disable caching")
	}
}
