package backend

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"climbreg/internal/amqp"
	"climbreg/internal/core"
	gsheet "climbreg/internal/sheets/google"
	"climbreg/internal/sheets/memory"
	"climbreg/internal/storage"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// AMQP is optional. Without it the worker's periodic pending scan is
	// the only sync path.
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
			amqpClient = nil
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	store := &syncingStore{repo: repo, publisher: amqpClient}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)

	return &BackendResult{
		Backend: store,
		Cleanup: func() error {
			if amqpClient != nil {
				amqpClient.Close()
			}
			return repo.Close()
		},
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := gsheet.New(ctx, config.GoogleSpreadsheetID, config.GoogleWorksheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend",
		"spreadsheet_id", config.GoogleSpreadsheetID,
		"worksheet", config.GoogleWorksheetName)

	return &BackendResult{Backend: cli}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	f.logger.Info("Initialized memory backend")
	return &BackendResult{Backend: memory.New()}, nil
}

// syncingStore writes registrations to sqlite and, when a broker is
// configured, publishes a sync message so the worker pushes the row to the
// sheet. Reads come straight from sqlite.
type syncingStore struct {
	repo      *storage.SQLiteRepository
	publisher *amqp.Client
}

func (s *syncingStore) Append(ctx context.Context, reg core.Registration) (string, error) {
	ref, err := s.repo.Append(ctx, reg)
	if err != nil {
		return "", err
	}

	if s.publisher != nil {
		if id, perr := strconv.ParseInt(ref, 10, 64); perr == nil {
			if perr := s.publisher.PublishRegistrationSync(ctx, id); perr != nil {
				// The row is already persisted; the periodic scan will
				// pick it up.
				slog.WarnContext(ctx, "Failed to publish sync message",
					"id", id,
					"error", perr)
			}
		}
	}

	return ref, nil
}

func (s *syncingStore) All(ctx context.Context) ([]core.Registration, error) {
	return s.repo.All(ctx)
}
