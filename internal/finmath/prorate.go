package finmath

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Prorate linearly apportions an amount covering [periodStart, periodEnd) to
// the overlapping part of [rangeStart, rangeEnd), counting whole days and
// rounding to cents. No overlap yields zero.
func Prorate(amount decimal.Decimal, periodStart, periodEnd, rangeStart, rangeEnd time.Time) (decimal.Decimal, error) {
	if !periodEnd.After(periodStart) {
		return decimal.Zero, errors.New("period end must be after period start")
	}
	if rangeEnd.Before(rangeStart) {
		return decimal.Zero, errors.New("range end must not be before range start")
	}

	start := laterDate(periodStart, rangeStart)
	end := earlierDate(periodEnd, rangeEnd)
	if !end.After(start) {
		return decimal.Zero, nil
	}

	overlapDays := wholeDays(start, end)
	periodDays := wholeDays(periodStart, periodEnd)
	if overlapDays >= periodDays {
		return amount, nil
	}

	return amount.
		Mul(decimal.NewFromInt(int64(overlapDays))).
		Div(decimal.NewFromInt(int64(periodDays))).
		Round(2), nil
}

// ProrateMonth apportions a monthly amount to the days from `from` through
// the end of its month. Starting on the 1st yields the full amount.
func ProrateMonth(amount decimal.Decimal, from time.Time) (decimal.Decimal, error) {
	monthStart := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, from.Location())
	nextMonth := monthStart.AddDate(0, 1, 0)
	return Prorate(amount, monthStart, nextMonth, from, nextMonth)
}

func wholeDays(a, b time.Time) int {
	return int(truncateDate(b).Sub(truncateDate(a)).Hours() / 24)
}

func truncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func laterDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
