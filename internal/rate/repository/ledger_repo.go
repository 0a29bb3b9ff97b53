package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nholding/rate-calendar/internal/audit"
)

// Schema creates the ledger tables. Entries are stored only for successful
// batches.
const Schema = `
CREATE TABLE IF NOT EXISTS rate_calendar_batches (
	batch_id     TEXT PRIMARY KEY,
	received_by  TEXT NOT NULL,
	received_at  TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ,
	outcome      TEXT NOT NULL,
	stage        TEXT NOT NULL,
	records      INTEGER NOT NULL,
	entries      INTEGER NOT NULL,
	errors       INTEGER NOT NULL,
	etag         TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rate_calendar_entries (
	batch_id     TEXT NOT NULL REFERENCES rate_calendar_batches (batch_id),
	position     INTEGER NOT NULL,
	period_start DATE NOT NULL,
	period_end   DATE NOT NULL,
	rate         NUMERIC NOT NULL,
	color_code   TEXT NOT NULL,
	PRIMARY KEY (batch_id, position)
);
`

const (
	insertBatchSQL = `
		INSERT INTO rate_calendar_batches (
			batch_id, received_by, received_at, completed_at, outcome, stage,
			records, entries, errors, etag
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`

	insertEntrySQL = `
		INSERT INTO rate_calendar_entries (
			batch_id, position, period_start, period_end, rate, color_code
		) VALUES ($1,$2,$3,$4,$5,$6)
	`

	findBatchSQL = `
		SELECT batch_id, received_by, received_at, completed_at, outcome, stage,
			records, entries, errors, etag
		FROM rate_calendar_batches WHERE batch_id=$1
	`
)

// SQLLedger records every batch in PostgreSQL.
type SQLLedger struct {
	db      *sql.DB
	timeout time.Duration
}

// NewSQLLedger returns a ledger on db. A zero timeout leaves the caller's
// deadline in charge.
func NewSQLLedger(db *sql.DB, timeout time.Duration) *SQLLedger {
	return &SQLLedger{db: db, timeout: timeout}
}

// EnsureSchema creates the ledger tables when missing.
func (l *SQLLedger) EnsureSchema(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create ledger schema: %w", err)
	}
	return nil
}

// batchRow is the argument list of insertBatchSQL.
func batchRow(b *audit.Batch) []any {
	var completed sql.NullTime
	if !b.AuditInfo.CompletedAt.IsZero() {
		completed = sql.NullTime{Time: b.AuditInfo.CompletedAt, Valid: true}
	}

	return []any{
		b.ID,
		b.AuditInfo.ReceivedBy,
		b.AuditInfo.ReceivedAt,
		completed,
		b.Outcome,
		b.Stage,
		b.Records,
		b.Entries,
		b.Errors,
		b.ETag,
	}
}

// entryRows are the argument lists of insertEntrySQL, one per calendar entry.
func entryRows(b *audit.Batch) [][]any {
	rows := make([][]any, 0, len(b.Result.Data))
	for i, e := range b.Result.Data {
		rows = append(rows, []any{b.ID, i, e.PeriodStart, e.PeriodEnd, e.Rate, e.ColorCode})
	}
	return rows
}

// Record inserts the batch and its calendar in one transaction.
// It fails if a batch with the same ID was already recorded.
//
// Example:
//
//	ctx := context.TODO()
//	err := ledger.Record(ctx, batch)
func (l *SQLLedger) Record(ctx context.Context, b *audit.Batch) error {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, insertBatchSQL, batchRow(b)...); err != nil {
		return fmt.Errorf("failed to insert batch %s: %w", b.ID, err)
	}

	rows := entryRows(b)
	if len(rows) > 0 {
		stmt, err := tx.PrepareContext(ctx, insertEntrySQL)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, row := range rows {
			if _, err := stmt.ExecContext(ctx, row...); err != nil {
				return fmt.Errorf("failed to insert entry %v of batch %s: %w", row[1], b.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// FindBatch retrieves a recorded batch by ID. The request, response and
// calendar are not stored in the ledger and come back empty.
func (l *SQLLedger) FindBatch(ctx context.Context, id string) (*audit.Batch, error) {
	row := l.db.QueryRowContext(ctx, findBatchSQL, id)

	var b audit.Batch
	var completed sql.NullTime
	err := row.Scan(
		&b.ID,
		&b.AuditInfo.ReceivedBy,
		&b.AuditInfo.ReceivedAt,
		&completed,
		&b.Outcome,
		&b.Stage,
		&b.Records,
		&b.Entries,
		&b.Errors,
		&b.ETag,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to scan batch: %w", err)
	}

	if completed.Valid {
		b.AuditInfo.CompletedAt = completed.Time
	}
	return &b, nil
}
