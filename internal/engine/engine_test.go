package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"BillSentinel/internal/model"
)

var testToday = time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

// obl builds a test obligation due dueOffset days from testToday
// (negative = overdue). hasDue=false leaves the due date unset.
func obl(id int64, remaining int64, dueOffset int, hasDue bool) model.Obligation {
	o := model.Obligation{
		ID:          id,
		Name:        "bill",
		TotalAmount: decimal.NewFromInt(remaining),
		PaidAmount:  decimal.Zero,
	}
	if hasDue {
		due := testToday.AddDate(0, 0, dueOffset)
		o.DueDate = &due
	}
	return o
}

func amt(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestScenario_OverdueFitsUpcomingDeferred(t *testing.T) {
	obligations := []model.Obligation{
		obl(1, 5000, -10, true),
		obl(2, 3000, 5, true),
	}
	result := ClassifyAndAllocate(obligations, amt(5000), testToday, DefaultPolicy(), nil)

	if len(result.ScheduledItems) != 1 || result.ScheduledItems[0].Obligation.ID != 1 {
		t.Fatalf("expected only item 1 scheduled, got %+v", result.ScheduledItems)
	}
	if len(result.DeferredItems) != 1 || result.DeferredItems[0].Obligation.ID != 2 {
		t.Fatalf("expected item 2 deferred, got %+v", result.DeferredItems)
	}
	if !result.ScheduledTotal.Equal(amt(5000)) {
		t.Errorf("expected scheduled total 5000, got %s", result.ScheduledTotal)
	}
	if !result.RemainingBudget.IsZero() {
		t.Errorf("expected remaining budget 0, got %s", result.RemainingBudget)
	}
	if !result.IsOverBudget {
		t.Error("expected over-budget flag with 8000 needed against 5000")
	}
}

func TestScenario_ZeroBudgetDefersEverything(t *testing.T) {
	obligations := []model.Obligation{obl(1, 10000, -3, true)}
	result := ClassifyAndAllocate(obligations, decimal.Zero, testToday, DefaultPolicy(), nil)

	if len(result.ScheduledItems) != 0 {
		t.Errorf("expected empty scheduled items, got %d", len(result.ScheduledItems))
	}
	if len(result.DeferredItems) != 1 {
		t.Errorf("expected 1 deferred item, got %d", len(result.DeferredItems))
	}
	if !result.IsOverBudget {
		t.Error("expected over-budget flag")
	}
	if !result.TotalNeeded.Equal(amt(10000)) {
		t.Errorf("expected total needed 10000, got %s", result.TotalNeeded)
	}
}

func TestScenario_EmptyObligations(t *testing.T) {
	result := ClassifyAndAllocate(nil, amt(5000), testToday, DefaultPolicy(), nil)

	if len(result.ScheduledItems) != 0 || len(result.DeferredItems) != 0 {
		t.Fatalf("expected empty partitions, got %d/%d", len(result.ScheduledItems), len(result.DeferredItems))
	}
	if !result.TotalNeeded.IsZero() {
		t.Errorf("expected total needed 0, got %s", result.TotalNeeded)
	}
	if result.IsOverBudget {
		t.Error("unexpected over-budget flag for empty list")
	}
	if !result.RemainingBudget.Equal(amt(5000)) {
		t.Errorf("expected remaining budget 5000, got %s", result.RemainingBudget)
	}
}

func TestClassify_DueTodayOutranksFutureDue(t *testing.T) {
	p := DefaultPolicy()
	dueToday := Classify(obl(1, 2000, 0, true), testToday, p, nil)
	dueLater := Classify(obl(2, 2000, 30, true), testToday, p, nil)

	if dueToday.Overdue {
		t.Error("an obligation due exactly today must not be overdue")
	}
	if dueToday.OverdueDays != 0 {
		t.Errorf("expected 0 overdue days, got %d", dueToday.OverdueDays)
	}
	if dueToday.Score <= dueLater.Score {
		t.Errorf("due-today score %.2f should exceed due-in-30-days score %.2f", dueToday.Score, dueLater.Score)
	}
}

func TestClassify_CalendarDatesAcrossZones(t *testing.T) {
	p := DefaultPolicy()
	due := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	o := model.Obligation{
		ID:          1,
		Name:        "bill",
		TotalAmount: amt(1000),
		PaidAmount:  decimal.Zero,
		DueDate:     &due,
	}

	// A UTC-parsed due date of yesterday must count as overdue even when
	// "today" carries an eastern zone offset.
	morning := time.Date(2026, 8, 31, 9, 0, 0, 0, time.FixedZone("UTC+8", 8*3600))
	got := Classify(o, morning, p, nil)
	if !got.Overdue || got.OverdueDays != 1 {
		t.Fatalf("due 2026-08-30 must be 1 day overdue on 2026-08-31 UTC+8, got overdue=%v days=%d", got.Overdue, got.OverdueDays)
	}

	proposals := ProposeReschedule([]model.Obligation{o}, morning, 7)
	if len(proposals) != 1 {
		t.Fatalf("expected a reschedule proposal for the overdue item, got %d", len(proposals))
	}
	if got := proposals[0].ProposedDate.Format("2006-01-02"); got != "2026-09-07" {
		t.Errorf("expected proposed date 2026-09-07, got %s", got)
	}

	// Late evening in a western zone is still the due date itself.
	evening := time.Date(2026, 8, 30, 23, 0, 0, 0, time.FixedZone("UTC-5", -5*3600))
	got = Classify(o, evening, p, nil)
	if got.Overdue || got.OverdueDays != 0 {
		t.Errorf("due 2026-08-30 must not be overdue on 2026-08-30 UTC-5, got overdue=%v days=%d", got.Overdue, got.OverdueDays)
	}
}

func TestClassify_OverdueDominance(t *testing.T) {
	p := DefaultPolicy()
	moreOverdue := Classify(obl(1, 4000, -9, true), testToday, p, nil)
	lessOverdue := Classify(obl(2, 4000, -2, true), testToday, p, nil)

	if moreOverdue.Score < lessOverdue.Score {
		t.Errorf("9 days overdue (%.2f) scored below 2 days overdue (%.2f)", moreOverdue.Score, lessOverdue.Score)
	}
}

func TestClassify_Levels(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		name  string
		o     model.Obligation
		level model.PriorityLevel
	}{
		{"overdue past grace window", obl(1, 1000, -10, true), model.PriorityCritical},
		{"huge remaining amount", obl(2, 200000, 20, true), model.PriorityCritical},
		{"slightly overdue", obl(3, 500, -2, true), model.PriorityHigh},
		{"due in a few days", obl(4, 500, 3, true), model.PriorityMedium},
		{"far future small bill", obl(5, 500, 60, true), model.PriorityLow},
		{"no due date small bill", obl(6, 500, 0, false), model.PriorityLow},
	}
	for _, tt := range tests {
		got := Classify(tt.o, testToday, p, nil).Level
		if got != tt.level {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.level, got)
		}
	}
}

func TestClassify_LateFeeCategoryBonus(t *testing.T) {
	p := DefaultPolicy()
	categories := model.CategoryTable{
		"信用卡": {Name: "信用卡", LateFee: true},
	}

	withFee := obl(1, 1000, 5, true)
	withFee.Category = "信用卡"
	without := obl(2, 1000, 5, true)
	without.Category = "水電"

	a := Classify(withFee, testToday, p, categories)
	b := Classify(without, testToday, p, categories)
	if a.Score-b.Score != p.LateFeeBonus {
		t.Errorf("expected late-fee bonus %.0f, got score gap %.2f", p.LateFeeBonus, a.Score-b.Score)
	}
}

func TestClassify_ReasonText(t *testing.T) {
	p := DefaultPolicy()

	overdue := Classify(obl(1, 1000, -6, true), testToday, p, nil)
	if overdue.Reason != "逾期 6 天" {
		t.Errorf("expected 逾期 6 天, got %q", overdue.Reason)
	}

	large := Classify(obl(2, 500000, 25, true), testToday, p, nil)
	if large.Reason != "金額較大" {
		t.Errorf("expected 金額較大, got %q", large.Reason)
	}

	soon := Classify(obl(3, 800, 2, true), testToday, p, nil)
	if soon.Reason != "即將到期" {
		t.Errorf("expected 即將到期, got %q", soon.Reason)
	}
}

func TestAllocate_Conservation(t *testing.T) {
	obligations := []model.Obligation{
		obl(1, 1200, -4, true),
		obl(2, 800, 0, true),
		obl(3, 15000, 10, true),
		obl(4, 300, 0, false),
		obl(5, 2500, -20, true),
	}
	for _, budget := range []int64{-100, 0, 1000, 4000, 20000, 100000} {
		result := ClassifyAndAllocate(obligations, amt(budget), testToday, DefaultPolicy(), nil)
		if got := len(result.ScheduledItems) + len(result.DeferredItems); got != len(obligations) {
			t.Errorf("budget %d: partitions hold %d items, want %d", budget, got, len(obligations))
		}
		seen := map[int64]bool{}
		for _, item := range result.ScheduledItems {
			seen[item.Obligation.ID] = true
		}
		for _, item := range result.DeferredItems {
			if seen[item.Obligation.ID] {
				t.Errorf("budget %d: obligation %d in both partitions", budget, item.Obligation.ID)
			}
		}
	}
}

func TestAllocate_BudgetRespected(t *testing.T) {
	obligations := []model.Obligation{
		obl(1, 900, -1, true),
		obl(2, 700, 3, true),
		obl(3, 600, 15, true),
	}
	for _, budget := range []int64{-500, 0, 599, 600, 1500, 2200, 9000} {
		b := amt(budget)
		result := ClassifyAndAllocate(obligations, b, testToday, DefaultPolicy(), nil)
		if budget < 0 {
			if len(result.ScheduledItems) != 0 {
				t.Errorf("budget %d: expected nothing scheduled", budget)
			}
		} else if result.ScheduledTotal.GreaterThan(b) {
			t.Errorf("budget %d: scheduled total %s exceeds budget", budget, result.ScheduledTotal)
		}
		sum := decimal.Zero
		for _, item := range result.ScheduledItems {
			sum = sum.Add(item.Obligation.Remaining())
		}
		if !sum.Equal(result.ScheduledTotal) {
			t.Errorf("budget %d: scheduled total %s != item sum %s", budget, result.ScheduledTotal, sum)
		}
	}
}

func TestAllocate_Deterministic(t *testing.T) {
	obligations := []model.Obligation{
		obl(3, 1000, -5, true),
		obl(1, 1000, -5, true),
		obl(2, 1000, -5, true),
	}
	first := ClassifyAndAllocate(obligations, amt(2000), testToday, DefaultPolicy(), nil)
	second := ClassifyAndAllocate(obligations, amt(2000), testToday, DefaultPolicy(), nil)

	if len(first.ScheduledItems) != len(second.ScheduledItems) {
		t.Fatal("scheduled item counts differ between identical runs")
	}
	for i := range first.ScheduledItems {
		if first.ScheduledItems[i].Obligation.ID != second.ScheduledItems[i].Obligation.ID {
			t.Errorf("position %d: id %d vs %d", i, first.ScheduledItems[i].Obligation.ID, second.ScheduledItems[i].Obligation.ID)
		}
	}
	if !first.ScheduledTotal.Equal(second.ScheduledTotal) {
		t.Errorf("totals differ: %s vs %s", first.ScheduledTotal, second.ScheduledTotal)
	}
}

func TestAllocate_IdentityTieBreakAscending(t *testing.T) {
	// Identical scores and amounts: order must fall back to id ascending.
	obligations := []model.Obligation{
		obl(9, 1000, -5, true),
		obl(2, 1000, -5, true),
		obl(5, 1000, -5, true),
	}
	result := ClassifyAndAllocate(obligations, amt(3000), testToday, DefaultPolicy(), nil)
	want := []int64{2, 5, 9}
	for i, item := range result.ScheduledItems {
		if item.Obligation.ID != want[i] {
			t.Errorf("position %d: expected id %d, got %d", i, want[i], item.Obligation.ID)
		}
	}
}

func TestAllocate_BudgetMonotonicity(t *testing.T) {
	obligations := []model.Obligation{
		obl(1, 6000, -12, true),
		obl(2, 5500, -6, true),
		obl(3, 5000, -1, true),
		obl(4, 4000, 2, true),
	}
	prevTotal := decimal.NewFromInt(-1)
	prevScheduled := map[int64]bool{}
	for _, budget := range []int64{0, 3000, 6000, 9000, 12000, 16500, 25000} {
		result := ClassifyAndAllocate(obligations, amt(budget), testToday, DefaultPolicy(), nil)
		if result.ScheduledTotal.LessThan(prevTotal) {
			t.Errorf("budget %d: scheduled total %s decreased from %s", budget, result.ScheduledTotal, prevTotal)
		}
		scheduled := map[int64]bool{}
		for _, item := range result.ScheduledItems {
			scheduled[item.Obligation.ID] = true
		}
		for id := range prevScheduled {
			if !scheduled[id] {
				t.Errorf("budget %d: obligation %d fell out of the scheduled set", budget, id)
			}
		}
		prevTotal = result.ScheduledTotal
		prevScheduled = scheduled
	}
}

func TestAllocate_NoSkipAheadAfterRejection(t *testing.T) {
	// Highest-priority item doesn't fit; the smaller one after it would,
	// but the walk must not skip ahead past a rejection.
	obligations := []model.Obligation{
		obl(1, 8000, -10, true),
		obl(2, 1000, -1, true),
	}
	result := ClassifyAndAllocate(obligations, amt(5000), testToday, DefaultPolicy(), nil)

	if len(result.ScheduledItems) != 0 {
		t.Fatalf("expected nothing scheduled, got %+v", result.ScheduledItems)
	}
	if len(result.DeferredItems) != 2 {
		t.Fatalf("expected both items deferred, got %d", len(result.DeferredItems))
	}
}

func TestAllocate_CriticalOverlayCoversBothPartitions(t *testing.T) {
	obligations := []model.Obligation{
		obl(1, 4000, -20, true), // critical, fits
		obl(2, 4000, -15, true), // critical, deferred
	}
	result := ClassifyAndAllocate(obligations, amt(4000), testToday, DefaultPolicy(), nil)

	if len(result.ScheduledItems) != 1 || len(result.DeferredItems) != 1 {
		t.Fatalf("expected 1 scheduled / 1 deferred, got %d/%d", len(result.ScheduledItems), len(result.DeferredItems))
	}
	if len(result.CriticalItems) != 2 {
		t.Errorf("expected critical overlay to include both items, got %d", len(result.CriticalItems))
	}
}

func TestClassifyAndAllocate_SkipsMalformedAndSettled(t *testing.T) {
	settled := obl(3, 1000, -5, true)
	settled.PaidAmount = settled.TotalAmount

	overpaid := obl(4, 1000, -5, true)
	overpaid.PaidAmount = amt(1500)

	obligations := []model.Obligation{
		obl(0, 1000, -5, true), // missing id
		settled,
		overpaid,
		obl(7, 2000, -5, true),
	}
	result := ClassifyAndAllocate(obligations, amt(10000), testToday, DefaultPolicy(), nil)

	if got := len(result.ScheduledItems) + len(result.DeferredItems); got != 1 {
		t.Fatalf("expected 1 candidate to survive, got %d", got)
	}
	if result.ScheduledItems[0].Obligation.ID != 7 {
		t.Errorf("expected obligation 7, got %d", result.ScheduledItems[0].Obligation.ID)
	}
}

func TestProposeReschedule(t *testing.T) {
	obligations := []model.Obligation{
		obl(1, 3000, -8, true),
		obl(2, 500, 3, true),  // not overdue
		obl(3, 900, 0, false), // no due date
	}
	proposals := ProposeReschedule(obligations, testToday, 7)

	if len(proposals) != 1 {
		t.Fatalf("expected 1 proposal, got %d", len(proposals))
	}
	p := proposals[0]
	if p.ObligationID != 1 {
		t.Errorf("expected obligation 1, got %d", p.ObligationID)
	}
	wantDate := testToday.AddDate(0, 0, 7)
	if !p.ProposedDate.Equal(wantDate) {
		t.Errorf("expected proposed date %s, got %s", wantDate, p.ProposedDate)
	}
	if !p.Amount.Equal(amt(3000)) {
		t.Errorf("expected amount preserved at 3000, got %s", p.Amount)
	}

	// Inputs unchanged, repeated calls identical.
	if !obligations[0].DueDate.Equal(testToday.AddDate(0, 0, -8)) {
		t.Error("proposal mutated the input obligation")
	}
	again := ProposeReschedule(obligations, testToday, 7)
	if len(again) != 1 || !again[0].ProposedDate.Equal(p.ProposedDate) {
		t.Error("repeated proposal call not idempotent")
	}
}
