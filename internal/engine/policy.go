package engine

// Policy holds the tunable scoring weights and level thresholds.
// The exact coefficients are operator policy, not a contract; the defaults
// below are a starting point meant to be adjusted in config.
type Policy struct {
	OverduePerDay       float64 // score per day overdue, uncapped
	UpcomingPerDay      float64 // score per day of due-date proximity
	UpcomingHorizonDays int     // obligations due beyond this earn no proximity score
	AmountUnit          float64 // remaining-amount currency units per score point
	LateFeeBonus        float64 // fixed bonus for categories that charge late fees
	GraceDays           int     // overdue beyond this many days becomes critical
	CriticalScore       float64
	HighScore           float64
	MediumScore         float64
	SoonDays            int // due within this many days is at least medium
}

// DefaultPolicy returns the baseline scoring policy.
func DefaultPolicy() Policy {
	return Policy{
		OverduePerDay:       10,
		UpcomingPerDay:      1,
		UpcomingHorizonDays: 30,
		AmountUnit:          1000,
		LateFeeBonus:        15,
		GraceDays:           7,
		CriticalScore:       100,
		HighScore:           60,
		MediumScore:         30,
		SoonDays:            7,
	}
}
