// Package registry is the registration pipeline: the append-with-retry write
// path and the cached read/aggregate path behind the prize-pool view.
package registry

import (
	"context"
	"log/slog"
	"time"

	"climbreg/internal/cache"
	"climbreg/internal/core"
	"climbreg/internal/retry"
	ports "climbreg/internal/sheets"
)

// Options tunes the pipeline; zero values fall back to the defaults
// (5 attempts / 1s initial backoff, 60s snapshot TTL).
type Options struct {
	Retry    retry.Config
	CacheTTL time.Duration
}

const defaultCacheTTL = 60 * time.Second

// Service exposes the four pipeline operations plus the two invalidation
// hooks. The registration snapshot and the prize-pool stats are cached in
// two independent entries so one can be cleared without forcing the other
// to refetch.
type Service struct {
	writer ports.RegistrationWriter
	reader ports.RegistrationReader
	retry  retry.Config

	regs  *cache.Entry[[]core.Registration]
	stats *cache.Entry[core.PrizePoolStats]
}

func NewService(writer ports.RegistrationWriter, reader ports.RegistrationReader, opts Options) *Service {
	if opts.Retry.MaxAttempts == 0 && opts.Retry.InitialDelay == 0 {
		opts.Retry = retry.DefaultConfig()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	return &Service{
		writer: writer,
		reader: reader,
		retry:  opts.Retry,
		regs:   cache.New[[]core.Registration](opts.CacheTTL),
		stats:  cache.New[core.PrizePoolStats](opts.CacheTTL),
	}
}

// Append writes one registration as the new last row of the table, through
// the retry wrapper. The timestamp is set here, at write time. On success
// both caches are invalidated so the next read reflects the new record; on
// retry exhaustion the failure is logged and reported as false; it never
// propagates past this boundary.
func (s *Service) Append(ctx context.Context, r core.Registration) bool {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	r.AmountValid = true

	ref, err := retry.DoValue(ctx, s.retry, func() (string, error) {
		return s.writer.Append(ctx, r)
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to append registration",
			"name", r.Name,
			"category", r.Category.String(),
			"amount_cents", r.Amount.Cents,
			"error", err)
		return false
	}

	s.InvalidateRegistrations()
	s.InvalidateStats()

	slog.InfoContext(ctx, "Registration appended",
		"name", r.Name,
		"category", r.Category.String(),
		"amount_cents", r.Amount.Cents,
		"row_ref", ref)
	return true
}

// All returns the current registration snapshot, fetching through the retry
// wrapper on cache miss or expiry. A fetch failure after retries degrades to
// an empty table; the read path never surfaces an error to the display.
func (s *Service) All(ctx context.Context) []core.Registration {
	regs, err := s.snapshot(ctx)
	if err != nil {
		return []core.Registration{}
	}
	return regs
}

// PrizePool returns the aggregate stats, cached with the same TTL discipline
// as the snapshot but independently invalidatable. An empty snapshot yields
// all-zero stats. Stats derived from a failed fetch are not cached, so a
// recovered store is picked up on the next call.
func (s *Service) PrizePool(ctx context.Context) core.PrizePoolStats {
	if stats, ok := s.stats.Get(); ok {
		return stats
	}

	regs, err := s.snapshot(ctx)
	if err != nil {
		return core.PrizePoolStats{}
	}

	stats := core.ComputePrizePool(regs)
	s.stats.Set(stats)

	slog.InfoContext(ctx, "Prize pool stats computed",
		"total_cents", stats.Total.Cents,
		"participants", stats.ParticipantCount)
	return stats
}

// Recent returns the last limit registrations newest-first. It is never
// cached on its own: it always derives from the snapshot, so it follows the
// snapshot's TTL and invalidation.
func (s *Service) Recent(ctx context.Context, limit int) []core.Registration {
	regs, err := s.snapshot(ctx)
	if err != nil {
		return []core.Registration{}
	}
	return core.RecentRegistrations(regs, limit)
}

// InvalidateRegistrations clears the snapshot cache. Called by the writer
// after a successful append and by the manual refresh action.
func (s *Service) InvalidateRegistrations() {
	s.regs.Invalidate()
}

// InvalidateStats clears the prize-pool cache.
func (s *Service) InvalidateStats() {
	s.stats.Invalidate()
}

// snapshot returns the cached registrations, or refetches them through the
// retry wrapper. Only successful fetches are cached.
func (s *Service) snapshot(ctx context.Context) ([]core.Registration, error) {
	if regs, ok := s.regs.Get(); ok {
		return regs, nil
	}

	regs, err := retry.DoValue(ctx, s.retry, func() ([]core.Registration, error) {
		return s.reader.All(ctx)
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch registrations", "error", err)
		return nil, err
	}
	if regs == nil {
		regs = []core.Registration{}
	}

	s.regs.Set(regs)
	slog.DebugContext(ctx, "Registration snapshot refreshed", "count", len(regs))
	return regs, nil
}
