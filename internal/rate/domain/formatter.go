package domain

import (
	"github.com/nholding/rate-calendar/internal/crc24"
)

// RatePlaces is the number of decimal places a rate is rendered with.
const RatePlaces = 2

// FormattedEntry is the display form of a resolved entry and the element
// type of the "data" array.
type FormattedEntry struct {
	PeriodStart string `json:"periodStart"`
	PeriodEnd   string `json:"periodEnd"`
	Rate        string `json:"rate"`
	ColorCode   string `json:"colorCode"`
}

// Format renders an entry: calendar dates, a two-decimal rate (rounded half
// away from zero, no grouping separators), and a color code hashed from that
// rate string. Equal rate strings always produce equal color codes.
func Format(e *Entry) FormattedEntry {
	rate := e.Rate.StringFixed(RatePlaces)
	return FormattedEntry{
		PeriodStart: e.Period.StartDate(),
		PeriodEnd:   e.Period.EndDate(),
		Rate:        rate,
		ColorCode:   crc24.ColorCode(rate),
	}
}

// FormatAll formats entries in order.
func FormatAll(entries []*Entry) []FormattedEntry {
	out := make([]FormattedEntry, len(entries))
	for i, e := range entries {
		out[i] = Format(e)
	}
	return out
}

// Record converts a formatted entry back into the raw shape a client
// submits, so a calendar can be edited and sent again.
func (f FormattedEntry) Record() RawRecord {
	rec, _ := RecordFromFields(map[string]any{
		FieldPeriodStart: f.PeriodStart,
		FieldPeriodEnd:   f.PeriodEnd,
		FieldRate:        f.Rate,
	})
	return rec
}
