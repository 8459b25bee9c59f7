package model

// CategoryInfo describes scheduling-relevant traits of a payment category.
type CategoryInfo struct {
	Name    string
	LateFee bool // category charges a late fee or penalty when overdue
}

// CategoryTable is an injected per-call lookup of category traits.
// Passing it explicitly keeps the engine free of module-level state.
type CategoryTable map[string]CategoryInfo

// HasLateFee reports whether the named category carries a late-fee penalty.
// Unknown categories carry none.
func (t CategoryTable) HasLateFee(name string) bool {
	if t == nil {
		return false
	}
	return t[name].LateFee
}
