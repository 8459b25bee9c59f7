package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"BillSentinel/internal/finmath"
	"BillSentinel/internal/model"
)

// MemoryStore is an in-memory Store used in tests and as a fallback when
// SQLite cannot be opened. Nothing survives a restart.
type MemoryStore struct {
	mu          sync.Mutex
	nextID      int64
	obligations map[int64]model.Obligation
	Runs        []RunRecord
	Rescheduled int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, obligations: make(map[int64]model.Obligation)}
}

func (m *MemoryStore) ListOutstanding() ([]model.Obligation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Obligation
	for id := int64(1); id < m.nextID; id++ {
		o, ok := m.obligations[id]
		if !ok || o.Settled() {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (m *MemoryStore) ListOverdue(today time.Time) ([]model.Obligation, error) {
	outstanding, err := m.ListOutstanding()
	if err != nil {
		return nil, err
	}
	var overdue []model.Obligation
	for _, o := range outstanding {
		if o.OverdueAsOf(today) {
			overdue = append(overdue, o)
		}
	}
	return overdue, nil
}

func (m *MemoryStore) AddObligation(o *model.Obligation) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *o
	stored.ID = m.nextID
	m.nextID++
	m.obligations[stored.ID] = stored
	return stored.ID, nil
}

func (m *MemoryStore) AddLoan(name, category string, principal, annualRatePct decimal.Decimal, months int, firstDue time.Time) error {
	payment, err := finmath.AmortizedPayment(principal, annualRatePct, months)
	if err != nil {
		return fmt.Errorf("amortize loan %q: %w", name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := 0; i < months; i++ {
		due := firstDue.AddDate(0, i, 0)
		m.obligations[m.nextID] = model.Obligation{
			ID:          m.nextID,
			Name:        fmt.Sprintf("%s 第%d期", name, i+1),
			TotalAmount: payment,
			PaidAmount:  decimal.Zero,
			DueDate:     &due,
			Category:    category,
		}
		m.nextID++
	}
	return nil
}

func (m *MemoryStore) MarkPaid(ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		o, ok := m.obligations[id]
		if !ok {
			continue
		}
		o.PaidAmount = o.TotalAmount
		m.obligations[id] = o
	}
	return nil
}

func (m *MemoryStore) ApplyReschedules(proposals []model.RescheduleProposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range proposals {
		o, ok := m.obligations[p.ObligationID]
		if !ok {
			return fmt.Errorf("unknown obligation %d", p.ObligationID)
		}
		due := p.ProposedDate
		o.DueDate = &due
		m.obligations[p.ObligationID] = o
		m.Rescheduled++
	}
	return nil
}

func (m *MemoryStore) RecordRun(rec *RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Runs = append(m.Runs, *rec)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
