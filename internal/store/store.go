package store

import (
	"time"

	"github.com/shopspring/decimal"

	"BillSentinel/internal/model"
)

// RunRecord summarizes one scheduling run for history.
type RunRecord struct {
	Budget          decimal.Decimal
	TotalNeeded     decimal.Decimal
	ScheduledTotal  decimal.Decimal
	RemainingBudget decimal.Decimal
	ScheduledCount  int
	DeferredCount   int
	CriticalCount   int
	OverBudget      bool
}

// Store is the obligation snapshot provider and confirmation sink.
// Implementations hand the engine well-formed obligations only; raw rows are
// normalized (and malformed ones dropped) at this boundary.
type Store interface {
	// ListOutstanding returns all obligations with a remaining amount > 0.
	ListOutstanding() ([]model.Obligation, error)
	// ListOverdue returns outstanding obligations due strictly before today.
	ListOverdue(today time.Time) ([]model.Obligation, error)
	// AddObligation inserts a single obligation and returns its id.
	AddObligation(o *model.Obligation) (int64, error)
	// AddLoan expands a loan into monthly amortized installment obligations.
	AddLoan(name, category string, principal, annualRatePct decimal.Decimal, months int, firstDue time.Time) error
	// MarkPaid settles the given obligations in full.
	MarkPaid(ids []int64) error
	// ApplyReschedules persists confirmed reschedule proposals atomically.
	ApplyReschedules(proposals []model.RescheduleProposal) error
	// RecordRun appends a scheduling run to history.
	RecordRun(rec *RunRecord) error
	Close() error
}
