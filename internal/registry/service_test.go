package registry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"climbreg/internal/core"
	"climbreg/internal/retry"
	"climbreg/internal/sheets/memory"
)

func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond}
}

// flakyStore wraps the memory store and fails the first failN calls of each
// operation.
type flakyStore struct {
	mu          sync.Mutex
	store       *memory.Store
	failAppends int
	failReads   int
}

func (f *flakyStore) Append(ctx context.Context, r core.Registration) (string, error) {
	f.mu.Lock()
	if f.failAppends > 0 {
		f.failAppends--
		f.mu.Unlock()
		return "", errors.New("quota exceeded")
	}
	f.mu.Unlock()
	return f.store.Append(ctx, r)
}

func (f *flakyStore) All(ctx context.Context) ([]core.Registration, error) {
	f.mu.Lock()
	if f.failReads > 0 {
		f.failReads--
		f.mu.Unlock()
		return nil, errors.New("quota exceeded")
	}
	f.mu.Unlock()
	return f.store.All(ctx)
}

func newReg(name string, cat core.Category, cents int64) core.Registration {
	return core.Registration{
		Name:     name,
		Email:    name + "@example.com",
		Category: cat,
		Amount:   core.Money{Cents: cents},
	}
}

func TestAppendThenReadReflectsRecord(t *testing.T) {
	store := memory.New()
	svc := NewService(store, store, Options{Retry: fastRetry(), CacheTTL: time.Hour})

	// Prime the cache so the write has a stale snapshot to invalidate.
	if got := svc.All(context.Background()); len(got) != 0 {
		t.Fatalf("expected empty table, got %d", len(got))
	}

	before := time.Now().UTC()
	if ok := svc.Append(context.Background(), newReg("Lynn", core.CategoryWomen, 2500)); !ok {
		t.Fatal("append failed")
	}
	after := time.Now().UTC()

	// The very next read must see the new record even though the prior
	// snapshot was cached with a long TTL.
	all := svc.All(context.Background())
	if len(all) != 1 {
		t.Fatalf("want 1 registration after write, got %d", len(all))
	}
	r := all[0]
	if r.Name != "Lynn" || r.Email != "Lynn@example.com" || r.Category != core.CategoryWomen || r.Amount.Cents != 2500 {
		t.Errorf("unexpected record %+v", r)
	}
	if r.Timestamp.Before(before) || r.Timestamp.After(after) {
		t.Errorf("timestamp %v outside [%v, %v]", r.Timestamp, before, after)
	}
}

func TestAppendRetriesTransientFailures(t *testing.T) {
	flaky := &flakyStore{store: memory.New(), failAppends: 2}
	svc := NewService(flaky, flaky, Options{Retry: fastRetry(), CacheTTL: time.Hour})

	if ok := svc.Append(context.Background(), newReg("Bo", core.CategoryMen, 2000)); !ok {
		t.Fatal("append should succeed after transient failures")
	}
	if all := svc.All(context.Background()); len(all) != 1 {
		t.Fatalf("want 1 registration, got %d", len(all))
	}
}

func TestAppendExhaustionReturnsFalse(t *testing.T) {
	flaky := &flakyStore{store: memory.New(), failAppends: 100}
	svc := NewService(flaky, flaky, Options{Retry: fastRetry(), CacheTTL: time.Hour})

	if ok := svc.Append(context.Background(), newReg("Bo", core.CategoryMen, 2000)); ok {
		t.Fatal("append should report failure after exhausting retries")
	}
}

func TestAllDegradesToEmptyOnFetchFailure(t *testing.T) {
	flaky := &flakyStore{store: memory.New(), failReads: 100}
	svc := NewService(flaky, flaky, Options{Retry: fastRetry(), CacheTTL: time.Hour})

	got := svc.All(context.Background())
	if got == nil || len(got) != 0 {
		t.Fatalf("read path must degrade to an empty table, got %v", got)
	}
	if stats := svc.PrizePool(context.Background()); stats != (core.PrizePoolStats{}) {
		t.Fatalf("stats over failed fetch must be all-zero, got %+v", stats)
	}
}

func TestFailureIsNotCached(t *testing.T) {
	flaky := &flakyStore{store: memory.New(), failReads: 3}
	_, _ = flaky.store.Append(context.Background(), newReg("Ada", core.CategoryWomen, 3000))

	// One attempt only, so the first failure exhausts and degrades.
	svc := NewService(flaky, flaky, Options{
		Retry:    retry.Config{MaxAttempts: 1, InitialDelay: time.Millisecond},
		CacheTTL: time.Hour,
	})

	for i := 0; i < 3; i++ {
		if got := svc.All(context.Background()); len(got) != 0 {
			t.Fatalf("call %d should degrade to empty", i)
		}
	}
	// Store recovered; the next read must refetch rather than serve a
	// cached failure.
	if got := svc.All(context.Background()); len(got) != 1 {
		t.Fatalf("recovered store should be visible, got %d", len(got))
	}
}

func TestSnapshotIsCachedWithinTTL(t *testing.T) {
	flaky := &flakyStore{store: memory.New()}
	_, _ = flaky.store.Append(context.Background(), newReg("Ada", core.CategoryWomen, 3000))
	svc := NewService(flaky, flaky, Options{Retry: fastRetry(), CacheTTL: time.Hour})

	if got := svc.All(context.Background()); len(got) != 1 {
		t.Fatalf("want 1, got %d", len(got))
	}

	// Break the store; the cached snapshot must still serve.
	flaky.mu.Lock()
	flaky.failReads = 100
	flaky.mu.Unlock()
	if got := svc.All(context.Background()); len(got) != 1 {
		t.Fatal("cached snapshot should serve within TTL without refetching")
	}
}

func TestPrizePoolAggregation(t *testing.T) {
	store := memory.New()
	svc := NewService(store, store, Options{Retry: fastRetry(), CacheTTL: time.Hour})

	svc.Append(context.Background(), newReg("Ada", core.CategoryWomen, 3000))
	svc.Append(context.Background(), newReg("Bo", core.CategoryMen, 2000))
	svc.Append(context.Background(), newReg("Cy", core.CategoryMen, 2550))

	stats := svc.PrizePool(context.Background())
	if stats.Total.Cents != 7550 {
		t.Errorf("Total = %d, want 7550", stats.Total.Cents)
	}
	if stats.ParticipantCount != 3 || stats.MenCount != 2 || stats.WomenCount != 1 {
		t.Errorf("counts = %+v", stats)
	}
}

func TestStatsCacheIndependentOfSnapshot(t *testing.T) {
	store := memory.New()
	svc := NewService(store, store, Options{Retry: fastRetry(), CacheTTL: time.Hour})
	svc.Append(context.Background(), newReg("Ada", core.CategoryWomen, 3000))

	first := svc.PrizePool(context.Background())
	if first.ParticipantCount != 1 {
		t.Fatalf("want 1 participant, got %d", first.ParticipantCount)
	}

	// A direct store write bypasses the service's invalidation; the cached
	// stats keep serving until their own entry is cleared.
	_, _ = store.Append(context.Background(), newReg("Bo", core.CategoryMen, 2000))
	if again := svc.PrizePool(context.Background()); again.ParticipantCount != 1 {
		t.Fatalf("stats should be served from cache, got %d", again.ParticipantCount)
	}

	svc.InvalidateStats()
	svc.InvalidateRegistrations()
	if fresh := svc.PrizePool(context.Background()); fresh.ParticipantCount != 2 {
		t.Fatalf("after invalidation stats should recompute, got %d", fresh.ParticipantCount)
	}
}

func TestRecentNewestFirst(t *testing.T) {
	store := memory.New()
	svc := NewService(store, store, Options{Retry: fastRetry(), CacheTTL: time.Hour})
	for _, name := range []string{"a1", "b2", "c3", "d4", "e5"} {
		svc.Append(context.Background(), newReg(name, core.CategoryMen, 2000))
	}

	recent := svc.Recent(context.Background(), 3)
	if len(recent) != 3 {
		t.Fatalf("want 3, got %d", len(recent))
	}
	for i, want := range []string{"e5", "d4", "c3"} {
		if recent[i].Name != want {
			t.Errorf("recent[%d] = %q, want %q", i, recent[i].Name, want)
		}
	}

	all := svc.Recent(context.Background(), 50)
	if len(all) != 5 || all[0].Name != "e5" || all[4].Name != "a1" {
		t.Errorf("short table should return everything newest-first, got %v", len(all))
	}
}
