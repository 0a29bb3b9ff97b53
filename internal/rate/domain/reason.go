package domain

import (
	"strings"
)

// Reason classifies why a batch, or one record of it, was rejected.
type Reason string

const (
	ReasonInvalidBatchEncoding Reason = "InvalidBatchEncoding"
	ReasonMissingDatePeriod    Reason = "MissingDatePeriod"
	ReasonInvalidDate          Reason = "InvalidDate"
	ReasonMissingRate          Reason = "MissingRate"
	ReasonInvalidRate          Reason = "InvalidRate"
	ReasonNegativeRate         Reason = "NegativeRate"
	ReasonOverlapConflict      Reason = "OverlapConflict"
)

var reasonMessages = map[Reason]string{
	ReasonInvalidBatchEncoding: "Invalid JSON string.",
	ReasonMissingDatePeriod:    "Missing date period.",
	ReasonInvalidDate:          "Invalid date.",
	ReasonMissingRate:          "Missing rate.",
	ReasonInvalidRate:          "Invalid rate.",
	ReasonNegativeRate:         "Negative rate.",
	ReasonOverlapConflict:      "Data found with overlapping dates but different rates.",
}

// Message is the user-facing sentence for the reason.
func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return string(r)
}

// RecordError collects every reason a single record failed validation.
// Date and rate problems are reported together.
type RecordError struct {
	Reasons []Reason
	Record  RawRecord
}

func (e *RecordError) Error() string {
	return joinMessages(e.Reasons)
}

// Has reports whether reason is among the record's failures.
func (e *RecordError) Has(reason Reason) bool {
	for _, r := range e.Reasons {
		if r == reason {
			return true
		}
	}
	return false
}

// BatchError returns the wire form of the failure.
func (e *RecordError) BatchError() BatchError {
	return BatchError{
		Reasons: e.Reasons,
		Msg:     joinMessages(e.Reasons),
		Data:    e.Record.JSON(),
	}
}

// Conflict is a pair of overlapping entries that disagree on rate. It cites
// the raw input of both sides.
type Conflict struct {
	First  RawRecord
	Second RawRecord
}

// BatchError returns the wire form of the conflict: both raw records,
// comma-joined into one data string.
func (c Conflict) BatchError() BatchError {
	return BatchError{
		Reasons: []Reason{ReasonOverlapConflict},
		Msg:     ReasonOverlapConflict.Message(),
		Data:    c.First.JSON() + "," + c.Second.JSON(),
	}
}

// BatchError is one element of the "errors" array of a failed result.
// Data is empty only for a batch that could not be decoded at all.
type BatchError struct {
	Reasons []Reason `json:"-"`
	Msg     string   `json:"msg"`
	Data    string   `json:"data,omitempty"`
}

func joinMessages(reasons []Reason) string {
	msgs := make([]string, len(reasons))
	for i, r := range reasons {
		msgs[i] = r.Message()
	}
	return strings.Join(msgs, " ")
}
