// Package worker pushes locally-stored registrations to the spreadsheet.
// Messages arrive over AMQP; a periodic scan of the pending queue covers
// lost messages and worker downtime.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"climbreg/internal/amqp"
	"climbreg/internal/core"
	"climbreg/internal/retry"
	"climbreg/internal/sheets"
	"climbreg/internal/storage"
)

type SyncWorker struct {
	storage   *storage.SQLiteRepository
	sheet     sheets.RegistrationWriter
	retry     retry.Config
	batchSize int
	interval  time.Duration
}

func NewSyncWorker(storage *storage.SQLiteRepository, sheet sheets.RegistrationWriter, retryCfg retry.Config, batchSize int, interval time.Duration) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SyncWorker{
		storage:   storage,
		sheet:     sheet,
		retry:     retryCfg,
		batchSize: batchSize,
		interval:  interval,
	}
}

// HandleSyncMessage pushes the registration named by one AMQP message.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RegistrationSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID)

	reg, err := w.storage.Get(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get registration from storage: %w", err)
	}

	if err := w.pushToSheet(ctx, msg.ID, reg); err != nil {
		return fmt.Errorf("push registration to sheet: %w", err)
	}

	return nil
}

// ProcessPending pushes registrations the AMQP path missed. Errors on
// individual rows are recorded and do not stop the batch.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.PendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending registrations: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending registrations", "count", len(pending))

	for _, p := range pending {
		if err := w.pushToSheet(ctx, p.ID, p.Registration); err != nil {
			slog.ErrorContext(ctx, "Failed to sync registration", "id", p.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck drains rows left pending from a previous run. It uses a
// larger batch than the periodic scan.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.PendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending registrations for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending registrations found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending registrations on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		if err := w.pushToSheet(ctx, p.ID, p.Registration); err != nil {
			slog.ErrorContext(ctx, "Failed to sync registration during startup",
				"id", p.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

// RunPeriodicScan loops ProcessPending on the configured interval until ctx
// is cancelled.
func (w *SyncWorker) RunPeriodicScan(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic pending scan failed", "error", err)
			}
		}
	}
}

func (w *SyncWorker) pushToSheet(ctx context.Context, id int64, reg core.Registration) error {
	ref, err := retry.DoValue(ctx, w.retry, func() (string, error) {
		return w.sheet.Append(ctx, reg)
	})
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		// The push itself worked; the row will be retried and the sheet
		// may end up with a duplicate, which is preferable to a loss.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Synced registration to sheet",
		"id", id,
		"row_ref", ref,
		"name", reg.Name,
		"amount_cents", reg.Amount.Cents)

	return nil
}
