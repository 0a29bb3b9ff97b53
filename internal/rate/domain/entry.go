package domain

import (
	"github.com/shopspring/decimal"

	period "github.com/nholding/rate-calendar/internal/period/domain"
)

// Entry is a validated rate record: a closed date period and a non-negative
// rate. Period may still grow while the merge stage runs; after that it is
// stable.
//
// Source is the record the entry was built from. Merges do not replace it,
// so a conflict found later can always cite what the user sent.
type Entry struct {
	Period period.Period
	Rate   decimal.Decimal
	Source RawRecord
}

// SameRate compares rates by value, so 5, 5.0 and 5.00 are equal.
func (e *Entry) SameRate(o *Entry) bool {
	return e.Rate.Equal(o.Rate)
}
