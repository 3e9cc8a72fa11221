package core

import (
	"testing"
	"time"
)

func reg(name string, cat Category, cents int64) Registration {
	return Registration{
		Timestamp:   time.Now(),
		Name:        name,
		Email:       name + "@example.com",
		Category:    cat,
		Amount:      Money{Cents: cents},
		AmountValid: true,
	}
}

func TestComputePrizePoolEmpty(t *testing.T) {
	stats := ComputePrizePool(nil)
	if stats.Total.Cents != 0 || stats.ParticipantCount != 0 || stats.MenCount != 0 || stats.WomenCount != 0 {
		t.Fatalf("empty snapshot should yield all-zero stats, got %+v", stats)
	}
}

func TestComputePrizePool(t *testing.T) {
	regs := []Registration{
		reg("ada", CategoryWomen, 2000),
		reg("bo", CategoryMen, 3500),
		reg("cy", CategoryMen, 2500),
	}
	// Non-numeric amount cell: counted, not summed.
	broken := reg("dee", CategoryWomen, 0)
	broken.AmountValid = false
	regs = append(regs, broken)

	stats := ComputePrizePool(regs)
	if stats.Total.Cents != 8000 {
		t.Errorf("Total = %d, want 8000", stats.Total.Cents)
	}
	if stats.ParticipantCount != 4 {
		t.Errorf("ParticipantCount = %d, want 4", stats.ParticipantCount)
	}
	if stats.MenCount != 2 || stats.WomenCount != 2 {
		t.Errorf("category counts = %d/%d, want 2/2", stats.MenCount, stats.WomenCount)
	}
	if stats.MenCount+stats.WomenCount != stats.ParticipantCount {
		t.Errorf("category counts should cover all valid-category records")
	}
}

func TestComputePrizePoolUnknownCategory(t *testing.T) {
	regs := []Registration{reg("ada", "Open", 2000)}
	stats := ComputePrizePool(regs)
	if stats.ParticipantCount != 1 {
		t.Errorf("ParticipantCount = %d, want 1", stats.ParticipantCount)
	}
	if stats.MenCount != 0 || stats.WomenCount != 0 {
		t.Errorf("unknown category must not match either count")
	}
}

func TestRecentRegistrations(t *testing.T) {
	regs := []Registration{
		reg("a", CategoryMen, 2000),
		reg("b", CategoryWomen, 2000),
		reg("c", CategoryMen, 2000),
		reg("d", CategoryWomen, 2000),
	}

	t.Run("limit within bounds", func(t *testing.T) {
		got := RecentRegistrations(regs, 2)
		if len(got) != 2 || got[0].Name != "d" || got[1].Name != "c" {
			t.Fatalf("want [d c], got %v", names(got))
		}
	})

	t.Run("limit beyond length", func(t *testing.T) {
		got := RecentRegistrations(regs, 10)
		if len(got) != 4 || got[0].Name != "d" || got[3].Name != "a" {
			t.Fatalf("want [d c b a], got %v", names(got))
		}
	})

	t.Run("non-positive limit", func(t *testing.T) {
		if got := RecentRegistrations(regs, 0); len(got) != 0 {
			t.Fatalf("want empty, got %v", names(got))
		}
		if got := RecentRegistrations(regs, -3); len(got) != 0 {
			t.Fatalf("want empty, got %v", names(got))
		}
	})

	t.Run("does not mutate input", func(t *testing.T) {
		_ = RecentRegistrations(regs, 4)
		if regs[0].Name != "a" || regs[3].Name != "d" {
			t.Fatal("input slice order changed")
		}
	})
}

func names(regs []Registration) []string {
	out := make([]string, len(regs))
	for i, r := range regs {
		out[i] = r.Name
	}
	return out
}
