package google

import (
	"fmt"
	"strings"
	"time"

	"climbreg/internal/core"
)

// parseRows converts a values matrix (as returned by the Sheets API) into
// typed registrations. Row 0 is the header and is skipped; a sheet with only
// a header (or nothing) yields an empty slice. A row with a non-numeric
// amount keeps its record with AmountValid=false rather than failing the
// whole fetch.
func parseRows(values [][]interface{}) []core.Registration {
	regs := []core.Registration{}
	if len(values) <= 1 {
		return regs
	}

	for i := 1; i < len(values); i++ {
		row := values[i]
		if len(row) == 0 {
			continue
		}

		r := core.Registration{
			Name:     cell(row, 1),
			Email:    cell(row, 2),
			Category: core.Category(cell(row, 3)),
		}

		if ts, err := time.Parse(time.RFC3339, cell(row, 0)); err == nil {
			r.Timestamp = ts
		}

		if cents, err := core.ParseDecimalToCents(cell(row, 4)); err == nil {
			r.Amount = core.Money{Cents: cents}
			r.AmountValid = true
		}

		regs = append(regs, r)
	}
	return regs
}

func cell(row []interface{}, idx int) string {
	if idx < 0 || idx >= len(row) || row[idx] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[idx]))
}
