package risk

// Limits guards new lots against cash floors.
type Limits struct {
	MinCash *float64 // nil disables the floor
}

// AllowLong reports whether opening a long that leaves cashAfter in the account is permitted.
func (l Limits) AllowLong(cashAfter float64) bool {
	if l.MinCash == nil {
		return true
	}
	return cashAfter >= *l.MinCash
}
