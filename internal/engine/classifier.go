package engine

import (
	"fmt"
	"time"

	"BillSentinel/internal/model"
)

// dateOnly maps a timestamp to its calendar date at UTC midnight. Anchoring
// in UTC keeps day arithmetic exact across mixed zones and DST transitions.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns whole calendar days from a to b (positive when b is later).
func daysBetween(a, b time.Time) int {
	return int(dateOnly(b).Sub(dateOnly(a)).Hours() / 24)
}

// Classify scores one obligation against today's date.
// Deterministic for a given (obligation, today) pair; no side effects.
// The caller guarantees remaining amount > 0.
func Classify(o model.Obligation, today time.Time, p Policy, categories model.CategoryTable) model.PriorityAssessment {
	var (
		overdueDays int
		daysUntil   int
		hasDue      = o.DueDate != nil
	)
	if hasDue {
		signed := daysBetween(*o.DueDate, today)
		if signed > 0 {
			overdueDays = signed
		} else {
			daysUntil = -signed
		}
	}

	// Overdue severity: uncapped, one weight per day late. An obligation
	// due exactly today is not overdue but earns the full proximity score,
	// so it still outranks anything due in the future.
	overdueScore := float64(overdueDays) * p.OverduePerDay

	var proximityScore float64
	if hasDue {
		proximity := p.UpcomingHorizonDays - daysUntil
		if overdueDays > 0 {
			proximity = p.UpcomingHorizonDays
		}
		if proximity < 0 {
			proximity = 0
		}
		proximityScore = float64(proximity) * p.UpcomingPerDay
	}

	// Amount magnitude surfaces large exposures. The float conversion is
	// for ranking only; money stays decimal everywhere else.
	remaining, _ := o.Remaining().Float64()
	amountScore := remaining / p.AmountUnit

	lateFee := categories.HasLateFee(o.Category)
	var feeScore float64
	if lateFee {
		feeScore = p.LateFeeBonus
	}

	score := overdueScore + proximityScore + amountScore + feeScore
	level := mapLevel(score, overdueDays, daysUntil, hasDue, p)

	return model.PriorityAssessment{
		Obligation:  o,
		Score:       score,
		Level:       level,
		Overdue:     overdueDays > 0,
		OverdueDays: overdueDays,
		Reason:      buildReason(overdueDays, daysUntil, hasDue, proximityScore, amountScore, lateFee, p),
	}
}

// mapLevel maps a score and overdue state to a priority level.
// Any overdue obligation is at least high; past the grace window it is critical.
func mapLevel(score float64, overdueDays, daysUntil int, hasDue bool, p Policy) model.PriorityLevel {
	switch {
	case overdueDays > p.GraceDays || score >= p.CriticalScore:
		return model.PriorityCritical
	case overdueDays > 0 || score >= p.HighScore:
		return model.PriorityHigh
	case (hasDue && daysUntil <= p.SoonDays) || score >= p.MediumScore:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

// buildReason describes the dominant scoring factor. Presentation text only.
func buildReason(overdueDays, daysUntil int, hasDue bool, proximityScore, amountScore float64, lateFee bool, p Policy) string {
	var reason string
	switch {
	case overdueDays > 0:
		reason = fmt.Sprintf("逾期 %d 天", overdueDays)
	case amountScore > proximityScore:
		reason = "金額較大"
	case hasDue && daysUntil <= p.SoonDays:
		reason = "即將到期"
	case hasDue:
		reason = fmt.Sprintf("%d 天後到期", daysUntil)
	default:
		reason = "無到期日"
	}
	if lateFee {
		reason += "（有滯納金）"
	}
	return reason
}
