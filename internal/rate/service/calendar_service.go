package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/nholding/rate-calendar/internal/audit"
	"github.com/nholding/rate-calendar/internal/metrics"
	rate "github.com/nholding/rate-calendar/internal/rate/domain"
	"github.com/nholding/rate-calendar/internal/utils"
)

var tracer = otel.Tracer("rate-calendar/service")

// Sink names used in logs and metrics.
const (
	SinkArchive = "archive"
	SinkLedger  = "ledger"
)

// ErrNilContext is returned when Submit is called without a context.
var ErrNilContext = errors.New("nil context")

// Archiver stores the full audit document of a batch.
type Archiver interface {
	Archive(ctx context.Context, b *audit.Batch) error
}

// Ledger records a batch summary and its calendar.
type Ledger interface {
	Record(ctx context.Context, b *audit.Batch) error
}

// Submission is a processed batch, ready to be answered.
type Submission struct {
	BatchID string
	Audit   *audit.AuditInfo
	Result  rate.Result

	// Body is the JSON response. ETag is its fingerprint.
	Body []byte
	ETag string

	Duration time.Duration
}

// CalendarService runs request bodies through the pipeline and hands each
// finished batch to the audit sinks. It is safe for concurrent use.
type CalendarService struct {
	pipeline *rate.Pipeline
	logger   *slog.Logger
	archiver Archiver
	ledger   Ledger
	metrics  *metrics.Collectors
	now      func() time.Time
}

// Option configures a CalendarService.
type Option func(*CalendarService)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *CalendarService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithArchiver enables the archive sink.
func WithArchiver(a Archiver) Option {
	return func(s *CalendarService) { s.archiver = a }
}

// WithLedger enables the ledger sink.
func WithLedger(l Ledger) Option {
	return func(s *CalendarService) { s.ledger = l }
}

// WithMetrics records every batch on c.
func WithMetrics(c *metrics.Collectors) Option {
	return func(s *CalendarService) { s.metrics = c }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *CalendarService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewCalendarService returns a service on pipeline. A nil pipeline uses the
// default time zone.
func NewCalendarService(pipeline *rate.Pipeline, opts ...Option) *CalendarService {
	if pipeline == nil {
		pipeline = rate.NewPipeline(nil)
	}

	s := &CalendarService{
		pipeline: pipeline,
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pipeline returns the pipeline the service runs.
func (s *CalendarService) Pipeline() *rate.Pipeline {
	return s.pipeline
}

// Submit processes one request body.
//
// PURPOSE:
//
//	Turns a raw body into the response JSON. Domain failures (invalid
//	records, conflicts, bad encoding) are part of the Submission, not
//	errors: the returned error is non-nil only when no response could be
//	built at all.
//
// HOW IT WORKS:
//
//  1. Stamp the batch with a ULID and an AuditInfo
//  2. Run the pipeline and marshal the result
//  3. Fingerprint the body for the ETag
//  4. Record metrics and log one line
//  5. Write the audit document to every enabled sink
//
// Sink failures are logged and counted and never change the response.
func (s *CalendarService) Submit(ctx context.Context, body []byte, receivedBy string) (*Submission, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	received := s.now()
	info := audit.NewAuditInfoAt(receivedBy, received)
	batchID := utils.GenerateBatchID(received)

	ctx, span := tracer.Start(ctx, "CalendarService.Submit",
		trace.WithAttributes(
			attribute.String("batch.id", batchID),
			attribute.Int("request.bytes", len(body)),
		),
	)
	defer span.End()

	res := s.pipeline.ProcessBody(body)

	out, err := json.Marshal(res)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("marshal response of batch %s: %w", batchID, err)
	}
	etag := utils.GenerateFingerprint(utils.FingerprintVersion, out)

	info.Complete(s.now())
	elapsed := info.Elapsed()

	outcome := metrics.Outcome(res)
	span.SetAttributes(
		attribute.String("batch.outcome", outcome),
		attribute.String("batch.stage", string(res.Stage)),
		attribute.Int("batch.records", res.Stats.Records),
		attribute.Int("batch.entries", len(res.Data)),
		attribute.Int("batch.errors", len(res.Errors)),
	)
	span.SetStatus(codes.Ok, "")

	s.metrics.ObserveBatch(res, elapsed)
	s.logger.Info("batch processed",
		slog.String("batch_id", batchID),
		slog.String("received_by", info.ReceivedBy),
		slog.Int("records", res.Stats.Records),
		slog.String("outcome", outcome),
		slog.String("stage", string(res.Stage)),
		slog.Int("entries", len(res.Data)),
		slog.Int("errors", len(res.Errors)),
		slog.Int("merged", res.Stats.Merged),
		slog.Duration("duration", elapsed),
	)
	if len(res.Stats.Unresolved) > 0 {
		s.logger.Warn("calendar kept overlapping entries with the same rate",
			slog.String("batch_id", batchID),
			slog.Any("overlaps", res.Stats.Unresolved),
		)
	}

	// The client may be gone by now; the audit trail is still written.
	s.writeAudit(context.WithoutCancel(ctx), audit.NewBatch(batchID, *info, body, out, etag, res))

	return &Submission{
		BatchID:  batchID,
		Audit:    info,
		Result:   res,
		Body:     out,
		ETag:     etag,
		Duration: elapsed,
	}, nil
}

// writeAudit hands the batch to every enabled sink concurrently and waits
// for them.
func (s *CalendarService) writeAudit(ctx context.Context, b *audit.Batch) {
	var g errgroup.Group

	if s.archiver != nil {
		g.Go(func() error {
			s.sinkResult(SinkArchive, b.ID, s.archiver.Archive(ctx, b))
			return nil
		})
	}
	if s.ledger != nil {
		g.Go(func() error {
			s.sinkResult(SinkLedger, b.ID, s.ledger.Record(ctx, b))
			return nil
		})
	}

	_ = g.Wait()
}

func (s *CalendarService) sinkResult(sink, batchID string, err error) {
	if err == nil {
		return
	}
	s.metrics.SinkFailed(sink)
	s.logger.Warn("audit sink failed",
		slog.String("sink", sink),
		slog.String("batch_id", batchID),
		slog.String("error", err.Error()),
	)
}
