package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	period "github.com/nholding/rate-calendar/internal/period/domain"
)

// numericLiteral accepts what a user would type as a number: optional
// surrounding whitespace, optional sign, digits with an optional fraction
// (".5" and "5." included) and an optional exponent.
var numericLiteral = regexp.MustCompile(`^\s*([+-]?)(\d*)(?:\.(\d*))?(?:[eE]([+-]?\d+))?\s*$`)

// maxRateExponent bounds exponents to the range of a float64 literal. Larger
// exponents overflow and are invalid; smaller ones underflow to zero.
const maxRateExponent = 308

// Validate turns one raw record into an Entry, or reports every reason it
// cannot. Date and rate rules are checked independently so a record that is
// wrong on both counts gets both messages.
//
// Rules:
//  1. neither periodStart nor periodEnd → MissingDatePeriod
//  2. a supplied boundary that does not parse → InvalidDate
//     (one boundary only → point period; reversed boundaries are swapped)
//  3. no rate → MissingRate
//  4. rate not a numeric literal → InvalidRate
//  5. rate below zero → NegativeRate
func Validate(rec RawRecord, loc *time.Location) (*Entry, *RecordError) {
	var reasons []Reason

	p, reason := validatePeriod(rec, loc)
	if reason != "" {
		reasons = append(reasons, reason)
	}

	rate, reason := validateRate(rec)
	if reason != "" {
		reasons = append(reasons, reason)
	}

	if len(reasons) > 0 {
		return nil, &RecordError{Reasons: reasons, Record: rec}
	}

	return &Entry{Period: p, Rate: rate, Source: rec}, nil
}

// ValidateAll validates every record of the batch in order. It never stops
// early: all valid entries and all record errors are returned.
func ValidateAll(records []RawRecord, loc *time.Location) ([]*Entry, []*RecordError) {
	entries := make([]*Entry, 0, len(records))
	var failures []*RecordError

	for _, rec := range records {
		entry, failure := Validate(rec, loc)
		if failure != nil {
			failures = append(failures, failure)
			continue
		}
		entries = append(entries, entry)
	}

	return entries, failures
}

func validatePeriod(rec RawRecord, loc *time.Location) (period.Period, Reason) {
	startField, hasStart := rec.Lookup(FieldPeriodStart)
	endField, hasEnd := rec.Lookup(FieldPeriodEnd)

	switch {
	case !hasStart && !hasEnd:
		return period.Period{}, ReasonMissingDatePeriod
	case !hasStart:
		end, ok := parseDate(endField, loc)
		if !ok {
			return period.Period{}, ReasonInvalidDate
		}
		return period.Point(end), ""
	case !hasEnd:
		start, ok := parseDate(startField, loc)
		if !ok {
			return period.Period{}, ReasonInvalidDate
		}
		return period.Point(start), ""
	}

	start, okStart := parseDate(startField, loc)
	end, okEnd := parseDate(endField, loc)
	if !okStart || !okEnd {
		return period.Period{}, ReasonInvalidDate
	}
	return period.New(start, end), ""
}

func parseDate(v FieldValue, loc *time.Location) (time.Time, bool) {
	if !v.Literal {
		return time.Time{}, false
	}
	t, err := period.Parse(v.Text, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func validateRate(rec RawRecord) (decimal.Decimal, Reason) {
	v, ok := rec.Lookup(FieldRate)
	if !ok {
		return decimal.Decimal{}, ReasonMissingRate
	}
	if !v.Literal {
		return decimal.Decimal{}, ReasonInvalidRate
	}

	rate, ok := parseRate(v.Text)
	if !ok {
		return decimal.Decimal{}, ReasonInvalidRate
	}
	if rate.IsNegative() {
		return decimal.Decimal{}, ReasonNegativeRate
	}
	return rate, ""
}

// parseRate normalizes a numeric literal into the canonical form decimal
// understands ("-.5e2" → "-0.5e2") and parses it exactly.
func parseRate(s string) (decimal.Decimal, bool) {
	m := numericLiteral.FindStringSubmatch(s)
	if m == nil {
		return decimal.Decimal{}, false
	}
	sign, whole, frac, exp := m[1], m[2], m[3], m[4]
	if whole == "" && frac == "" {
		return decimal.Decimal{}, false
	}

	var b strings.Builder
	if sign == "-" {
		b.WriteByte('-')
	}
	if whole == "" {
		whole = "0"
	}
	b.WriteString(whole)
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	if exp != "" {
		e, err := strconv.Atoi(exp)
		switch {
		case strings.HasPrefix(exp, "-") && (err != nil || e < -maxRateExponent):
			return decimal.Zero, true
		case err != nil || e > maxRateExponent:
			return decimal.Decimal{}, false
		}
		b.WriteByte('e')
		b.WriteString(strings.TrimPrefix(exp, "+"))
	}

	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
