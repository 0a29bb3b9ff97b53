package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	// Embedded zone database so the fixed calendar zone resolves on minimal
	// container images.
	_ "time/tzdata"
)

// DefaultZone is the time zone every rate calendar is expressed in unless the
// deployment overrides it.
const DefaultZone = "America/Denver"

// ErrInvalidDate is returned by Parse when a value matches none of the
// accepted layouts.
var ErrInvalidDate = errors.New("invalid date")

// localLayouts are read as written in the calendar zone.
var localLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-1-2",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"2006/1/2",
}

// zonedLayouts carry their own offset. The offset only validates the value;
// the calendar date is the one written.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

// LoadZone resolves a time zone name, falling back to DefaultZone for an
// empty name.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", name, err)
	}
	return loc, nil
}

// MustLoadZone is LoadZone for zone names known at compile time.
func MustLoadZone(name string) *time.Location {
	loc, err := LoadZone(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// Parse reads a date in loc and returns midnight of that calendar day. A time
// of day, when present, is validated and then dropped: periods are whole
// days.
//
// Accepted forms:
//
//	2021-01-05, 2021-1-5
//	2021-01-05 13:30[:00]
//	2021-01-05T13:30[:00]
//	2021-01-05T13:30:00-07:00   (RFC 3339, date as written)
//	01/05/2021, 1/5/2021        (month/day/year)
//	2021/01/05, 2021/1/5
func Parse(value string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return calendarDay(t, loc), nil
		}
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return calendarDay(t, loc), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// calendarDay is midnight in loc of the date t shows in its own location.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
