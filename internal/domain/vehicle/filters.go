package vehicle

import "strings"

// Filters narrows a vehicle listing. Empty strings and nil bounds do not filter.
type Filters struct {
	Category      string
	Transmission  string
	MinPrice      *float64
	MaxPrice      *float64
	OnlyAvailable bool
}

func (f Filters) Match(v *Vehicle) bool {
	if v == nil {
		return false
	}
	if f.OnlyAvailable && !v.Available {
		return false
	}
	if f.Category != "" && !strings.EqualFold(v.Category, f.Category) {
		return false
	}
	if f.Transmission != "" && !strings.EqualFold(v.Transmission, f.Transmission) {
		return false
	}
	if f.MinPrice != nil && v.PricePerDay < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && v.PricePerDay > *f.MaxPrice {
		return false
	}
	return true
}
