package finmath

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// AmortizedPayment computes the fixed monthly annuity payment for a loan of
// the given principal at an annual percentage rate over the given number of
// months, rounded to cents. A zero rate degrades to straight division.
func AmortizedPayment(principal, annualRatePct decimal.Decimal, months int) (decimal.Decimal, error) {
	if months <= 0 {
		return decimal.Zero, errors.New("months must be positive")
	}
	if principal.IsNegative() {
		return decimal.Zero, errors.New("principal must not be negative")
	}
	if annualRatePct.IsNegative() {
		return decimal.Zero, errors.New("rate must not be negative")
	}
	if annualRatePct.IsZero() {
		return principal.Div(decimal.NewFromInt(int64(months))).Round(2), nil
	}

	// Annuity factor is computed in float64 (decimal has no Pow for
	// fractional bases); the result is rounded back to cents.
	rate, _ := annualRatePct.Float64()
	monthly := rate / 100 / 12
	growth := math.Pow(1+monthly, float64(months))
	factor := monthly * growth / (growth - 1)

	p, _ := principal.Float64()
	return decimal.NewFromFloat(p * factor).Round(2), nil
}

// TotalInterest returns the interest paid over the life of an amortized loan.
func TotalInterest(principal, annualRatePct decimal.Decimal, months int) (decimal.Decimal, error) {
	payment, err := AmortizedPayment(principal, annualRatePct, months)
	if err != nil {
		return decimal.Zero, err
	}
	return payment.Mul(decimal.NewFromInt(int64(months))).Sub(principal), nil
}
