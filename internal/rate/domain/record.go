package domain

import (
	"bytes"
	"encoding/json"
)

// Field names the engine reads from a raw record. Every other field is kept
// untouched for diagnostics.
const (
	FieldPeriodStart = "periodStart"
	FieldPeriodEnd   = "periodEnd"
	FieldRate        = "rate"
)

// RawRecord is one element of a submitted batch, exactly as it arrived.
//
// The record keeps two views of the same input:
//   - raw: the compacted original JSON, echoed back in error responses so a
//     user can find and fix the offending row
//   - fields: the top-level members, for the typed accessors below
//
// A RawRecord is never modified after construction.
type RawRecord struct {
	raw    json.RawMessage
	fields map[string]json.RawMessage
}

// FieldValue is the textual content of one record member.
//
// Literal is true for JSON strings and numbers. Objects, arrays and true
// are present but carry no usable literal; Text then holds their raw JSON.
type FieldValue struct {
	Text    string
	Literal bool
}

// NewRawRecord wraps one batch element. Elements that are not JSON objects
// are kept for diagnostics but expose no fields.
func NewRawRecord(raw json.RawMessage) RawRecord {
	var compacted bytes.Buffer
	if err := json.Compact(&compacted, raw); err == nil {
		raw = compacted.Bytes()
	}

	rec := RawRecord{raw: raw}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err == nil {
			rec.fields = fields
		}
	}

	return rec
}

// RecordFromFields builds a RawRecord from plain values, marshalling them
// the same way a client would. Used by the CLI round-trip and tests.
func RecordFromFields(fields map[string]any) (RawRecord, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return RawRecord{}, err
	}
	return NewRawRecord(raw), nil
}

// Lookup returns the member called name. ok is false when the member is
// missing or empty: null, "", or false.
func (r RawRecord) Lookup(name string) (FieldValue, bool) {
	v, found := r.fields[name]
	if !found {
		return FieldValue{}, false
	}

	v = bytes.TrimSpace(v)
	switch {
	case len(v) == 0, bytes.Equal(v, []byte("null")), bytes.Equal(v, []byte("false")):
		return FieldValue{}, false
	case v[0] == '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return FieldValue{Text: string(v)}, true
		}
		if s == "" {
			return FieldValue{}, false
		}
		return FieldValue{Text: s, Literal: true}, true
	case v[0] == '-' || (v[0] >= '0' && v[0] <= '9'):
		return FieldValue{Text: string(v), Literal: true}, true
	default:
		return FieldValue{Text: string(v)}, true
	}
}

// JSON returns the original record as compact JSON text.
func (r RawRecord) JSON() string {
	if len(r.raw) == 0 {
		return "null"
	}
	return string(r.raw)
}

// MarshalJSON writes the record back exactly as it was received.
func (r RawRecord) MarshalJSON() ([]byte, error) {
	if len(r.raw) == 0 {
		return []byte("null"), nil
	}
	return r.raw, nil
}
