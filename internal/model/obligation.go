package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Obligation is an outstanding payment item to be scheduled.
// Amounts are exact decimals; DueDate is a calendar date without time-of-day
// (nil when the obligation has no due date).
type Obligation struct {
	ID          int64
	Name        string
	TotalAmount decimal.Decimal
	PaidAmount  decimal.Decimal
	DueDate     *time.Time
	Category    string
}

// Remaining returns the amount still owed.
func (o *Obligation) Remaining() decimal.Decimal {
	return o.TotalAmount.Sub(o.PaidAmount)
}

// Settled reports whether nothing is owed anymore. Settled obligations are
// never scheduling candidates.
func (o *Obligation) Settled() bool {
	return !o.Remaining().IsPositive()
}

// OverdueAsOf reports whether the due date falls on an earlier calendar date
// than today. Dates are compared by their components, so a UTC-parsed due
// date and a local-time "today" agree on what day it is.
func (o *Obligation) OverdueAsOf(today time.Time) bool {
	if o.DueDate == nil {
		return false
	}
	return civilDate(*o.DueDate).Before(civilDate(today))
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
