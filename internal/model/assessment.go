package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriorityLevel classifies how urgently an obligation should be paid.
type PriorityLevel string

const (
	PriorityCritical PriorityLevel = "critical"
	PriorityHigh     PriorityLevel = "high"
	PriorityMedium   PriorityLevel = "medium"
	PriorityLow      PriorityLevel = "low"
)

// PriorityAssessment is the classifier's verdict for one obligation.
// It is computed fresh on every scheduling request and never persisted.
type PriorityAssessment struct {
	Obligation  Obligation
	Score       float64
	Level       PriorityLevel
	Overdue     bool
	OverdueDays int
	Reason      string
}

// SchedulingResult is the output of one classify-and-allocate run.
// ScheduledItems and DeferredItems partition the candidate set;
// CriticalItems is an overlay view across both partitions.
type SchedulingResult struct {
	Budget          decimal.Decimal
	TotalNeeded     decimal.Decimal
	IsOverBudget    bool
	ScheduledItems  []PriorityAssessment
	CriticalItems   []PriorityAssessment
	DeferredItems   []PriorityAssessment
	ScheduledTotal  decimal.Decimal
	RemainingBudget decimal.Decimal
}

// RescheduleProposal is a proposed new due date for an overdue obligation.
// Proposals carry no side effects until the caller confirms them.
type RescheduleProposal struct {
	ObligationID int64
	Name         string
	Amount       decimal.Decimal
	ProposedDate time.Time
}
