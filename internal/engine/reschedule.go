package engine

import (
	"time"

	"BillSentinel/internal/model"
)

// ProposeReschedule proposes a new due date of today plus graceDays for every
// overdue obligation, preserving the owed amount. It performs no writes and
// does not mutate its inputs; the caller confirms proposals before anything
// is persisted. Calling it repeatedly before confirmation is harmless.
func ProposeReschedule(obligations []model.Obligation, today time.Time, graceDays int) []model.RescheduleProposal {
	newDate := dateOnly(today).AddDate(0, 0, graceDays)

	proposals := []model.RescheduleProposal{}
	for _, o := range obligations {
		if o.ID <= 0 || o.Settled() || !o.OverdueAsOf(today) {
			continue
		}
		proposals = append(proposals, model.RescheduleProposal{
			ObligationID: o.ID,
			Name:         o.Name,
			Amount:       o.Remaining(),
			ProposedDate: newDate,
		})
	}
	return proposals
}
