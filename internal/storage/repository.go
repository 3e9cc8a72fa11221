// Package storage is the local sqlite mirror of the registration table. It
// backs the sqlite data backend and holds the queue of rows still waiting to
// be pushed to the spreadsheet.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"climbreg/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

// PendingRegistration is a registration queued for push to the sheet.
type PendingRegistration struct {
	ID           int64
	Registration core.Registration
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append implements sheets.RegistrationWriter against the local mirror. The
// row starts unsynced; the worker pushes it to the sheet later.
func (r *SQLiteRepository) Append(ctx context.Context, reg core.Registration) (string, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO registrations (created_at, name, email, category, amount_cents)
		 VALUES (?, ?, ?, ?, ?)`,
		reg.Timestamp.Format(time.RFC3339),
		reg.Name,
		reg.Email,
		reg.Category.String(),
		reg.Amount.Cents,
	)
	if err != nil {
		return "", fmt.Errorf("insert registration: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Registration saved to sqlite",
		"id", id,
		"name", reg.Name,
		"category", reg.Category.String(),
		"amount_cents", reg.Amount.Cents)

	return strconv.FormatInt(id, 10), nil
}

// All implements sheets.RegistrationReader: every registration in insertion
// order.
func (r *SQLiteRepository) All(ctx context.Context) ([]core.Registration, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT created_at, name, email, category, amount_cents
		 FROM registrations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query registrations: %w", err)
	}
	defer rows.Close()

	out := []core.Registration{}
	for rows.Next() {
		var createdAt, name, email, category string
		var cents int64
		if err := rows.Scan(&createdAt, &name, &email, &category, &cents); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		reg := core.Registration{
			Name:        name,
			Email:       email,
			Category:    core.Category(category),
			Amount:      core.Money{Cents: cents},
			AmountValid: true,
		}
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			reg.Timestamp = ts
		}
		out = append(out, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}
	return out, nil
}

// Get returns one registration by local id.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (core.Registration, error) {
	var createdAt, name, email, category string
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT created_at, name, email, category, amount_cents
		 FROM registrations WHERE id = ?`, id).
		Scan(&createdAt, &name, &email, &category, &cents)
	if err != nil {
		return core.Registration{}, fmt.Errorf("get registration %d: %w", id, err)
	}
	reg := core.Registration{
		Name:        name,
		Email:       email,
		Category:    core.Category(category),
		Amount:      core.Money{Cents: cents},
		AmountValid: true,
	}
	if ts, perr := time.Parse(time.RFC3339, createdAt); perr == nil {
		reg.Timestamp = ts
	}
	return reg, nil
}

// PendingSync returns up to limit registrations not yet pushed to the sheet,
// oldest first.
func (r *SQLiteRepository) PendingSync(ctx context.Context, limit int) ([]PendingRegistration, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, created_at, name, email, category, amount_cents
		 FROM registrations WHERE synced = 0 ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending registrations: %w", err)
	}
	defer rows.Close()

	out := []PendingRegistration{}
	for rows.Next() {
		var id, cents int64
		var createdAt, name, email, category string
		if err := rows.Scan(&id, &createdAt, &name, &email, &category, &cents); err != nil {
			return nil, fmt.Errorf("scan pending registration: %w", err)
		}
		reg := core.Registration{
			Name:        name,
			Email:       email,
			Category:    core.Category(category),
			Amount:      core.Money{Cents: cents},
			AmountValid: true,
		}
		if ts, perr := time.Parse(time.RFC3339, createdAt); perr == nil {
			reg.Timestamp = ts
		}
		out = append(out, PendingRegistration{ID: id, Registration: reg})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending registrations: %w", err)
	}
	return out, nil
}

// MarkSynced records that a registration reached the sheet.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE registrations SET synced = 1, sync_error = 0 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark registration synced: %w", err)
	}
	return nil
}

// MarkSyncError flags a registration whose push kept failing. The row stays
// unsynced so a later pass can retry it.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE registrations SET sync_error = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark registration sync error: %w", err)
	}
	return nil
}
