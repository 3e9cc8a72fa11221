package core

// PrizePoolStats is the derived aggregate view over the registration table.
// It is recomputed in full from the current snapshot, never maintained
// incrementally.
type PrizePoolStats struct {
	Total            Money
	ParticipantCount int
	MenCount         int
	WomenCount       int
}

// ComputePrizePool aggregates a registration snapshot. Records with an
// invalid amount are excluded from Total but still counted as participants.
// Category counts are exact matches against the enumerated values.
func ComputePrizePool(regs []Registration) PrizePoolStats {
	var stats PrizePoolStats
	for _, r := range regs {
		stats.ParticipantCount++
		if r.AmountValid {
			stats.Total.Cents += r.Amount.Cents
		}
		switch r.Category {
		case CategoryMen:
			stats.MenCount++
		case CategoryWomen:
			stats.WomenCount++
		}
	}
	return stats
}

// RecentRegistrations returns the last limit records in reverse storage
// order, newest first. Fewer than limit records returns all of them, still
// reversed. A non-positive limit yields an empty slice.
func RecentRegistrations(regs []Registration, limit int) []Registration {
	if limit <= 0 || len(regs) == 0 {
		return []Registration{}
	}
	start := len(regs) - limit
	if start < 0 {
		start = 0
	}
	tail := regs[start:]
	out := make([]Registration, len(tail))
	for i, r := range tail {
		out[len(tail)-1-i] = r
	}
	return out
}
