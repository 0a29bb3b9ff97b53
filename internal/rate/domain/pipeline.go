package domain

import (
	"encoding/json"
	"time"

	period "github.com/nholding/rate-calendar/internal/period/domain"
)

// Stage is a step of the batch state machine:
//
//	Validating → Sorting → Merging → Formatting → Succeeded
//	     ↓                    ↓
//	   Failed               Failed
type Stage string

const (
	StageDecoding   Stage = "decoding"
	StageValidating Stage = "validating"
	StageSorting    Stage = "sorting"
	StageMerging    Stage = "merging"
	StageFormatting Stage = "formatting"
	StageSucceeded  Stage = "succeeded"
)

// Stats describes what happened to a batch, for logs and metrics.
type Stats struct {
	Records   int // records received
	Valid     int // records that passed validation
	Merged    int // entries folded into another entry
	Conflicts int // conflict errors reported
	Entries   int // entries in the final calendar

	// Unresolved lists same-rate overlaps left in a successful calendar.
	Unresolved []string
}

// Result is the outcome of one batch. Exactly one of Data and Errors is
// meaningful: a failed batch never carries data and a successful one never
// carries errors.
type Result struct {
	Data   []FormattedEntry
	Errors []BatchError

	// Stage is StageSucceeded, or the stage that rejected the batch.
	Stage Stage
	Stats Stats
}

// Succeeded reports whether the batch produced a calendar.
func (r Result) Succeeded() bool {
	return len(r.Errors) == 0
}

// Reasons counts the failure reasons carried by the result.
func (r Result) Reasons() map[Reason]int {
	counts := make(map[Reason]int)
	for _, e := range r.Errors {
		for _, reason := range e.Reasons {
			counts[reason]++
		}
	}
	return counts
}

// MarshalJSON renders the response contract:
//
//	{"data":[...]}   on success (an empty batch gives "data":[])
//	{"errors":[...]} on failure
func (r Result) MarshalJSON() ([]byte, error) {
	if !r.Succeeded() {
		return json.Marshal(struct {
			Errors []BatchError `json:"errors"`
		}{r.Errors})
	}

	data := r.Data
	if data == nil {
		data = []FormattedEntry{}
	}
	return json.Marshal(struct {
		Data []FormattedEntry `json:"data"`
	}{data})
}

// Pipeline runs batches through validation, sorting, merging and formatting.
// It holds no state between batches and is safe for concurrent use.
type Pipeline struct {
	loc *time.Location
}

// NewPipeline returns a pipeline that reads and renders dates in loc.
// A nil loc selects period.DefaultZone.
func NewPipeline(loc *time.Location) *Pipeline {
	if loc == nil {
		loc = period.MustLoadZone(period.DefaultZone)
	}
	return &Pipeline{loc: loc}
}

// Location is the fixed zone of every calendar the pipeline produces.
func (p *Pipeline) Location() *time.Location {
	return p.loc
}

// ProcessBody decodes a request body and processes it. A body that cannot
// be decoded yields the single top-level error with no data attachment.
func (p *Pipeline) ProcessBody(body []byte) Result {
	records, err := DecodeBatch(body)
	if err != nil {
		return Result{
			Errors: []BatchError{{
				Reasons: []Reason{ReasonInvalidBatchEncoding},
				Msg:     ReasonInvalidBatchEncoding.Message(),
			}},
			Stage: StageDecoding,
		}
	}
	return p.Process(records)
}

// Process runs one decoded batch. There is no partial success: one invalid
// record, or one conflict, fails the whole batch.
func (p *Pipeline) Process(records []RawRecord) Result {
	stats := Stats{Records: len(records)}

	entries, failures := ValidateAll(records, p.loc)
	stats.Valid = len(entries)
	if len(failures) > 0 {
		errs := make([]BatchError, len(failures))
		for i, f := range failures {
			errs[i] = f.BatchError()
		}
		return Result{Errors: errs, Stage: StageValidating, Stats: stats}
	}

	SortChronologically(entries)

	resolved, conflicts := Resolve(entries)
	stats.Merged = len(entries) - len(resolved)
	stats.Conflicts = len(conflicts)
	if len(conflicts) > 0 {
		errs := make([]BatchError, len(conflicts))
		for i, c := range conflicts {
			errs[i] = c.BatchError()
		}
		return Result{Errors: errs, Stage: StageMerging, Stats: stats}
	}

	stats.Entries = len(resolved)
	stats.Unresolved = SameRateOverlaps(resolved)
	return Result{Data: FormatAll(resolved), Stage: StageSucceeded, Stats: stats}
}
