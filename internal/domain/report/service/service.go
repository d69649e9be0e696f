// Package service orchestrates a batch of report files: read, extract,
// persist and audit, one document at a time.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/extract"
	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/parser"
	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/pipeline"
	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/record"
	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/repository"
	"github.com/FACorreiaa/chroma-ingest/pkg/metrics"
)

// ErrEmptyExtraction indicates a document yielded no text lines (image-only PDF)
var ErrEmptyExtraction = errors.New("no text extracted from document")

// Outcome is the final state of one document
type Outcome string

const (
	OutcomeInserted  Outcome = "inserted"
	OutcomeExtracted Outcome = "extracted"
	OutcomeNoRows    Outcome = "no_rows"
	OutcomeEmpty     Outcome = "empty"
	OutcomeFailed    Outcome = "failed"
)

// AuditLog receives every committed row
type AuditLog interface {
	Record(rows []record.Row) error
}

// TestCodeStore remembers the last assay test code
type TestCodeStore interface {
	SaveTestCode(code string) error
}

// DocumentResult is the outcome of one file
type DocumentResult struct {
	Name      string
	Outcome   Outcome
	Rows      []record.Row
	Inserted  int
	Issues    []pipeline.Issue
	Detection *extract.Detection
	Err       error
}

// BatchResult aggregates a batch
type BatchResult struct {
	ID        uuid.UUID
	Mode      pipeline.Mode
	Documents []DocumentResult
}

// Rows returns every extracted row of the batch in document order.
func (b *BatchResult) Rows() []record.Row {
	var out []record.Row
	for _, d := range b.Documents {
		out = append(out, d.Rows...)
	}
	return out
}

// Inserted returns the number of committed rows.
func (b *BatchResult) Inserted() int {
	n := 0
	for _, d := range b.Documents {
		n += d.Inserted
	}
	return n
}

// Failed returns the documents that did not complete. Empty documents are
// skipped, not failed.
func (b *BatchResult) Failed() []DocumentResult {
	var out []DocumentResult
	for _, d := range b.Documents {
		if d.Outcome == OutcomeFailed {
			out = append(out, d)
		}
	}
	return out
}

// IngestService turns report files into persisted rows
type IngestService struct {
	source  parser.Source
	repo    repository.ResultRepository // nil means extract only
	audit   AuditLog
	codes   TestCodeStore
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewIngestService creates a new ingest service
func NewIngestService(source parser.Source, repo repository.ResultRepository, logger *slog.Logger) *IngestService {
	return &IngestService{
		source: source,
		repo:   repo,
		logger: logger,
		tracer: otel.Tracer("github.com/FACorreiaa/chroma-ingest/internal/domain/report/service"),
	}
}

// WithAuditLog records committed rows to a, failures are logged only.
func (s *IngestService) WithAuditLog(a AuditLog) *IngestService {
	s.audit = a
	return s
}

// WithTestCodeStore persists the assay test code before each assay batch
// that is not a dry run.
func (s *IngestService) WithTestCodeStore(c TestCodeStore) *IngestService {
	s.codes = c
	return s
}

// WithMetrics counts documents, rows and issues.
func (s *IngestService) WithMetrics(m *metrics.Metrics) *IngestService {
	s.metrics = m
	return s
}

// ProcessBatch validates req and processes docs in order. A failing document
// never stops the batch; its error is kept on its DocumentResult.
func (s *IngestService) ProcessBatch(ctx context.Context, req Request, docs []parser.Document) (*BatchResult, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	profile, err := pipeline.ProfileFor(req.Mode)
	if err != nil {
		return nil, err
	}

	if !req.Mode.IsDissolution() && !req.DryRun && req.TestCode != "" && s.codes != nil {
		if err := s.codes.SaveTestCode(req.TestCode); err != nil {
			s.logger.Warn("failed to save test code", "error", err)
		}
	}

	batch := &BatchResult{ID: uuid.New(), Mode: req.Mode}
	logger := s.logger.With(slog.String("batch_id", batch.ID.String()), slog.String("mode", string(req.Mode)))
	logger.Info("batch started", slog.Int("documents", len(docs)))

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return batch, fmt.Errorf("batch interrupted: %w", err)
		}
		res := s.processDocument(ctx, logger, profile, req, doc)
		batch.Documents = append(batch.Documents, res)
	}

	logger.Info("batch finished",
		slog.Int("documents", len(batch.Documents)),
		slog.Int("rows_inserted", batch.Inserted()),
		slog.Int("failed", len(batch.Failed())),
	)
	return batch, nil
}

func (s *IngestService) processDocument(ctx context.Context, logger *slog.Logger, profile pipeline.Profile, req Request, doc parser.Document) (res DocumentResult) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "ingest.document", trace.WithAttributes(
		attribute.String("file", doc.Name),
		attribute.String("mode", string(req.Mode)),
	))
	logger = logger.With(slog.String("file", doc.Name))
	res.Name = doc.Name

	defer func() {
		span.SetAttributes(
			attribute.String("outcome", string(res.Outcome)),
			attribute.Int("rows", len(res.Rows)),
		)
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, res.Err.Error())
		}
		span.End()
		s.observe(req.Mode, profile.Sink, res, time.Since(start))
	}()

	pages, err := s.source.Pages(ctx, doc)
	if err != nil {
		res.Outcome, res.Err = OutcomeFailed, err
		logger.Error("failed to read document", "error", err)
		return res
	}

	lines := extract.Normalize(pages)
	if len(lines) == 0 {
		res.Outcome, res.Err = OutcomeEmpty, ErrEmptyExtraction
		logger.Warn("no text extracted, image-only pdf?")
		return res
	}

	out := profile.Run(lines, req.pipelineRequest())
	res.Rows, res.Issues, res.Detection = out.Rows, out.Issues, out.Detection
	for _, is := range out.Issues {
		logger.Warn("extraction issue",
			slog.String("kind", string(is.Kind)),
			slog.String("compound", is.Compound),
			slog.String("detail", is.Message),
		)
	}
	if out.Detection != nil {
		logger.Info("standard type detected",
			slog.String("type", string(out.Detection.Type)),
			slog.String("source", string(out.Detection.Source)),
		)
	}

	if len(out.Rows) == 0 {
		res.Outcome = OutcomeNoRows
		logger.Warn("document produced no rows", slog.Int("blocks", out.Blocks))
		return res
	}
	if req.DryRun || s.repo == nil {
		res.Outcome = OutcomeExtracted
		logger.Info("document extracted", slog.Int("rows", len(out.Rows)))
		return res
	}

	n, err := s.repo.InsertDocument(ctx, repository.Document{
		ID:          uuid.New(),
		FileName:    doc.Name,
		Sink:        profile.Sink,
		ContentHash: doc.Hash(),
	}, out.Rows)
	if err != nil {
		res.Outcome, res.Err = OutcomeFailed, err
		logger.Error("failed to persist document", "error", err)
		return res
	}
	res.Outcome, res.Inserted = OutcomeInserted, n

	if s.audit != nil {
		if err := s.audit.Record(out.Rows); err != nil {
			logger.Warn("failed to write audit log", "error", err)
		}
	}
	logger.Info("document inserted", slog.Int("rows", n), slog.String("sink", profile.Sink.String()))
	return res
}

func (s *IngestService) observe(mode pipeline.Mode, sink record.Sink, res DocumentResult, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.Documents.WithLabelValues(string(mode), string(res.Outcome)).Inc()
	s.metrics.Duration.WithLabelValues(string(mode)).Observe(elapsed.Seconds())
	if res.Inserted > 0 {
		s.metrics.RowsInserted.WithLabelValues(sink.String()).Add(float64(res.Inserted))
	}
	for _, is := range res.Issues {
		s.metrics.Issues.WithLabelValues(string(is.Kind)).Inc()
	}
}
