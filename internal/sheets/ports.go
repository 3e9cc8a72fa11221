package sheets

import (
	"context"

	"climbreg/internal/core"
)

// Ports for outbound adapters. The remote table is append-only: no record is
// ever updated or deleted through these interfaces.
type (
	RegistrationWriter interface {
		// Append adds one registration as the new last row and returns an
		// adapter-specific row reference.
		Append(ctx context.Context, r core.Registration) (rowRef string, err error)
	}

	RegistrationReader interface {
		// All returns every registration in storage (append) order.
		All(ctx context.Context) ([]core.Registration, error)
	}
)
