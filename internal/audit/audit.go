package audit

import (
	"time"
)

// AuditInfo records who submitted a batch and when it was handled.
type AuditInfo struct {
	ReceivedBy  string    `json:"received_by"`
	ReceivedAt  time.Time `json:"received_at"`
	CompletedAt time.Time `json:"completed_at,omitzero"`
}

// NewAuditInfo returns an AuditInfo stamped with the current time.
func NewAuditInfo(receivedBy string) *AuditInfo {
	return NewAuditInfoAt(receivedBy, time.Now())
}

// NewAuditInfoAt returns an AuditInfo stamped with at (stored in UTC).
// An empty submitter is recorded as "anonymous".
func NewAuditInfoAt(receivedBy string, at time.Time) *AuditInfo {
	var r string
	if receivedBy != "" {
		r = receivedBy
	} else {
		r = "anonymous"
	}

	return &AuditInfo{
		ReceivedBy: r,
		ReceivedAt: at.UTC(),
	}
}

// Complete marks the batch as handled.
func (a *AuditInfo) Complete(at time.Time) {
	a.CompletedAt = at.UTC()
}

// Elapsed is the time between receipt and completion, zero while the batch
// is still open.
func (a *AuditInfo) Elapsed() time.Duration {
	if a.CompletedAt.IsZero() {
		return 0
	}
	return a.CompletedAt.Sub(a.ReceivedAt)
}
