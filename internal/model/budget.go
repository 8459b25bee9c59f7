package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetState tracks the monthly payment budget and its running balance.
type BudgetState struct {
	MonthlyBudget   decimal.Decimal `json:"monthly_budget"`
	Balance         decimal.Decimal `json:"balance"`
	LastReplenishAt time.Time       `json:"last_replenish_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
