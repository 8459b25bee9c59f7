package store

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"BillSentinel/internal/model"
)

const dateLayout = "2006-01-02"

// rawObligation is an obligation row as stored: amounts as decimal strings,
// due date as a calendar-date string or empty.
type rawObligation struct {
	ID          int64
	Name        string
	TotalAmount string
	PaidAmount  string
	DueDate     string
	Category    string
}

// parseObligation normalizes a raw row into a typed obligation.
// The engine never sees anything this function rejects.
func parseObligation(raw rawObligation) (model.Obligation, error) {
	if raw.ID <= 0 {
		return model.Obligation{}, fmt.Errorf("missing obligation id (name=%q)", raw.Name)
	}

	total, err := decimal.NewFromString(raw.TotalAmount)
	if err != nil {
		return model.Obligation{}, fmt.Errorf("obligation %d: parse total amount %q: %w", raw.ID, raw.TotalAmount, err)
	}
	paid := decimal.Zero
	if raw.PaidAmount != "" {
		paid, err = decimal.NewFromString(raw.PaidAmount)
		if err != nil {
			return model.Obligation{}, fmt.Errorf("obligation %d: parse paid amount %q: %w", raw.ID, raw.PaidAmount, err)
		}
	}
	if total.Sub(paid).IsNegative() {
		return model.Obligation{}, fmt.Errorf("obligation %d: paid %s exceeds total %s", raw.ID, paid, total)
	}

	var due *time.Time
	if raw.DueDate != "" {
		d, err := time.Parse(dateLayout, raw.DueDate)
		if err != nil {
			return model.Obligation{}, fmt.Errorf("obligation %d: parse due date %q: %w", raw.ID, raw.DueDate, err)
		}
		due = &d
	}

	return model.Obligation{
		ID:          raw.ID,
		Name:        raw.Name,
		TotalAmount: total,
		PaidAmount:  paid,
		DueDate:     due,
		Category:    raw.Category,
	}, nil
}

func formatDue(due *time.Time) string {
	if due == nil {
		return ""
	}
	return due.Format(dateLayout)
}
