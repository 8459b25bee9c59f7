package engine

import (
	"log"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"BillSentinel/internal/model"
)

// ClassifyAndAllocate scores the given obligations and greedily assigns them
// to the budget in priority order. Malformed records (missing id, negative
// remaining amount) are skipped with a warning; settled obligations are not
// candidates. Degenerate inputs (empty list, zero or negative budget) produce
// well-defined degenerate results, never an error.
func ClassifyAndAllocate(obligations []model.Obligation, budget decimal.Decimal, today time.Time, p Policy, categories model.CategoryTable) *model.SchedulingResult {
	candidates := make([]model.PriorityAssessment, 0, len(obligations))
	for _, o := range obligations {
		if o.ID <= 0 {
			log.Printf("[WARN] skipping obligation without id: %q", o.Name)
			continue
		}
		if o.Remaining().IsNegative() {
			log.Printf("[WARN] skipping obligation %d (%s): paid exceeds total", o.ID, o.Name)
			continue
		}
		if o.Settled() {
			continue
		}
		candidates = append(candidates, Classify(o, today, p, categories))
	}
	return Allocate(candidates, budget)
}

// Allocate partitions assessed candidates into scheduled and deferred sets
// against the budget ceiling.
//
// The walk is intentionally greedy: candidates are taken in priority order
// and a candidate that does not fit is deferred without backtracking, even
// if a smaller later one would still have fit after it. Optimal subset-sum
// packing is a non-goal.
func Allocate(candidates []model.PriorityAssessment, budget decimal.Decimal) *model.SchedulingResult {
	sorted := make([]model.PriorityAssessment, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if c := a.Obligation.Remaining().Cmp(b.Obligation.Remaining()); c != 0 {
			return c > 0
		}
		return a.Obligation.ID < b.Obligation.ID
	})

	result := &model.SchedulingResult{
		Budget:         budget,
		ScheduledItems: []model.PriorityAssessment{},
		CriticalItems:  []model.PriorityAssessment{},
		DeferredItems:  []model.PriorityAssessment{},
	}

	totalNeeded := decimal.Zero
	for _, c := range sorted {
		totalNeeded = totalNeeded.Add(c.Obligation.Remaining())
	}
	result.TotalNeeded = totalNeeded
	result.IsOverBudget = totalNeeded.GreaterThan(budget)

	running := decimal.Zero
	rejected := false
	for _, c := range sorted {
		rem := c.Obligation.Remaining()
		// Once a candidate is rejected, everything after it is deferred
		// too: the walk never skips ahead to fit a smaller item past a
		// larger one that was turned down.
		if !rejected && running.Add(rem).LessThanOrEqual(budget) {
			result.ScheduledItems = append(result.ScheduledItems, c)
			running = running.Add(rem)
		} else {
			rejected = true
			result.DeferredItems = append(result.DeferredItems, c)
		}
		if c.Level == model.PriorityCritical {
			result.CriticalItems = append(result.CriticalItems, c)
		}
	}
	result.ScheduledTotal = running
	result.RemainingBudget = budget.Sub(running)

	return result
}
