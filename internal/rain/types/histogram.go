package types

import "github.com/shopspring/decimal"

var (
	bound10  = decimal.NewFromInt(10)
	bound25  = decimal.NewFromInt(25)
	bound50  = decimal.NewFromInt(50)
	bound100 = decimal.NewFromInt(100)
)

// Histogram counts daily rain values per intensity bucket. Each key is the
// bucket's exclusive upper bound, except "0" (exactly zero) and "1000"
// (100 and above).
type Histogram struct {
	Zero     int `json:"0"`
	Under10  int `json:"10"`
	Under25  int `json:"25"`
	Under50  int `json:"50"`
	Under100 int `json:"100"`
	Over100  int `json:"1000"`
}

// Add counts rain in its bucket. Negative values fall in no bucket and
// Add reports false.
func (h *Histogram) Add(rain Millimetres) bool {
	r := rain.Decimal
	switch {
	case r.IsNegative():
		return false
	case r.IsZero():
		h.Zero++
	case r.LessThan(bound10):
		h.Under10++
	case r.LessThan(bound25):
		h.Under25++
	case r.LessThan(bound50):
		h.Under50++
	case r.LessThan(bound100):
		h.Under100++
	default:
		h.Over100++
	}
	return true
}

func (h Histogram) Total() int {
	return h.Zero + h.Under10 + h.Under25 + h.Under50 + h.Under100 + h.Over100
}
