package audit

import (
	"encoding/json"
	"fmt"

	rate "github.com/nholding/rate-calendar/internal/rate/domain"
)

// Batch is the audit document of one processed batch. It is written to the
// archive and the ledger after the response is built and is never read back
// as pipeline input.
type Batch struct {
	ID        string    `json:"batchId"`
	AuditInfo AuditInfo `json:"audit"`
	Outcome   string    `json:"outcome"`
	Stage     string    `json:"stage"`
	ETag      string    `json:"etag"`

	Records int `json:"records"`
	Entries int `json:"entries"`
	Errors  int `json:"errors"`

	// Request is the body as received. It may not be valid JSON.
	Request string `json:"request"`
	// Response is the JSON answered to the client.
	Response json.RawMessage `json:"response"`

	Result rate.Result `json:"-"`
}

// Outcome values.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

// NewBatch assembles the audit document of a finished batch.
func NewBatch(id string, info AuditInfo, request, response []byte, etag string, res rate.Result) *Batch {
	outcome := OutcomeSucceeded
	if !res.Succeeded() {
		outcome = OutcomeFailed
	}

	return &Batch{
		ID:        id,
		AuditInfo: info,
		Outcome:   outcome,
		Stage:     string(res.Stage),
		ETag:      etag,
		Records:   res.Stats.Records,
		Entries:   len(res.Data),
		Errors:    len(res.Errors),
		Request:   string(request),
		Response:  json.RawMessage(response),
		Result:    res,
	}
}

// Document renders the batch as the JSON stored by the archive.
func (b *Batch) Document() ([]byte, error) {
	doc, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("marshal batch %s: %w", b.ID, err)
	}
	return doc, nil
}
