package budget

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"BillSentinel/internal/finmath"
	"BillSentinel/internal/model"
)

// Manager tracks the monthly payment budget with concurrency safety.
// The balance carries over: unspent budget accumulates month to month.
type Manager struct {
	mu       sync.Mutex
	state    *model.BudgetState
	filePath string
}

// NewManager creates a Manager, loading or initializing state from disk.
// A fresh state starts with the monthly budget prorated over the remaining
// days of the current month.
func NewManager(filePath string, monthlyBudget decimal.Decimal, now time.Time) (*Manager, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}

	if state.MonthlyBudget.IsZero() {
		initial, err := finmath.ProrateMonth(monthlyBudget, now)
		if err != nil {
			return nil, fmt.Errorf("prorate initial budget: %w", err)
		}
		state.MonthlyBudget = monthlyBudget
		state.Balance = initial
		state.LastReplenishAt = now
	}

	m := &Manager{state: state, filePath: filePath}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// GetState returns a copy of the current budget state.
func (m *Manager) GetState() model.BudgetState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.state
}

// Available returns the spendable balance for scheduling.
func (m *Manager) Available() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Balance
}

// Commit deducts the amount of a confirmed payment run from the balance.
// The deduction is capped at the available balance.
func (m *Manager) Commit(amount decimal.Decimal) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()

	if amount.GreaterThan(m.state.Balance) {
		amount = m.state.Balance
	}
	m.state.Balance = m.state.Balance.Sub(amount)

	if err := m.save(); err != nil {
		log.Printf("[ERROR] failed to save budget state: %v", err)
	}
	return amount
}

// MonthlyReplenish adds the monthly budget to the carry-over balance.
func (m *Manager) MonthlyReplenish(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.Balance = m.state.Balance.Add(m.state.MonthlyBudget)
	m.state.LastReplenishAt = now

	if err := m.save(); err != nil {
		log.Printf("[ERROR] failed to save budget state after replenish: %v", err)
	}
}

func (m *Manager) save() error {
	return SaveState(m.filePath, m.state)
}
