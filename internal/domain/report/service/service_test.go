package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/parser"
	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/pipeline"
	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/record"
	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/repository"
	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/stage"
	"github.com/FACorreiaa/chroma-ingest/pkg/metrics"
)

// MockSource returns canned pages per document name
type MockSource struct {
	pages map[string][]string
	errs  map[string]error
}

func (m *MockSource) Pages(ctx context.Context, doc parser.Document) ([]string, error) {
	if err := m.errs[doc.Name]; err != nil {
		return nil, err
	}
	return m.pages[doc.Name], nil
}

// MockRepository records inserted documents
type MockRepository struct {
	docs []repository.Document
	rows [][]record.Row
	errs map[string]error
}

func (m *MockRepository) InsertDocument(ctx context.Context, doc repository.Document, rows []record.Row) (int, error) {
	if err := m.errs[doc.FileName]; err != nil {
		return 0, err
	}
	m.docs = append(m.docs, doc)
	m.rows = append(m.rows, rows)
	return len(rows), nil
}

type MockAudit struct {
	rows int
	err  error
}

func (m *MockAudit) Record(rows []record.Row) error {
	m.rows += len(rows)
	return m.err
}

type MockCodes struct {
	saved []string
}

func (m *MockCodes) SaveTestCode(code string) error {
	m.saved = append(m.saved, code)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const singleReport = "Acquired by\n: Admin\nTitle\nPeakA\nPeakB\nRet. Time\n4.52\n6.10\nArea\n10234.1\nN/A\n"

func assayRequest() Request {
	return Request{Mode: pipeline.AssaySingle, MachineID: "LC-01", UID: "U-1", UserID: "analyst", TestCode: "10005"}
}

func TestIngestService_ProcessBatch(t *testing.T) {
	src := &MockSource{
		pages: map[string][]string{
			"good.pdf":  {singleReport},
			"image.pdf": {"   \n\n"},
			"fail.pdf":  {singleReport},
			"empty.pdf": {"Header only\n"},
		},
		errs: map[string]error{"broken.pdf": errors.New("pdf reader: malformed xref")},
	}
	repo := &MockRepository{errs: map[string]error{"fail.pdf": errors.New("connection reset")}}
	audit := &MockAudit{}
	codes := &MockCodes{}
	m := metrics.New()

	svc := NewIngestService(src, repo, testLogger()).
		WithAuditLog(audit).
		WithTestCodeStore(codes).
		WithMetrics(m)

	docs := []parser.Document{
		{Name: "broken.pdf"},
		{Name: "good.pdf", Data: []byte("a")},
		{Name: "image.pdf"},
		{Name: "fail.pdf"},
		{Name: "empty.pdf"},
	}

	batch, err := svc.ProcessBatch(context.Background(), assayRequest(), docs)
	require.NoError(t, err)
	require.Len(t, batch.Documents, 5)

	outcomes := make([]Outcome, 0, len(batch.Documents))
	for _, d := range batch.Documents {
		outcomes = append(outcomes, d.Outcome)
	}
	assert.Equal(t, []Outcome{OutcomeFailed, OutcomeInserted, OutcomeEmpty, OutcomeFailed, OutcomeNoRows}, outcomes)

	assert.ErrorIs(t, batch.Documents[2].Err, ErrEmptyExtraction)
	assert.Len(t, batch.Failed(), 2, "the image-only document is skipped, not failed")

	good := batch.Documents[1]
	assert.Equal(t, 1, good.Inserted, "row with N/A area is dropped in single mode")
	require.Len(t, good.Issues, 1)
	assert.Equal(t, pipeline.IssueNumericCoercion, good.Issues[0].Kind)

	require.Len(t, repo.docs, 1)
	assert.Equal(t, "good.pdf", repo.docs[0].FileName)
	assert.Equal(t, record.SinkAssaySingle, repo.docs[0].Sink)
	assert.Equal(t, parser.Document{Data: []byte("a")}.Hash(), repo.docs[0].ContentHash)

	assert.Equal(t, 1, audit.rows, "only committed rows are audited")
	assert.Equal(t, []string{"10005"}, codes.saved)
	assert.Equal(t, 1, batch.Inserted())
	assert.Len(t, batch.Rows(), 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Documents.WithLabelValues("assay_single", "inserted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Documents.WithLabelValues("assay_single", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RowsInserted.WithLabelValues("assay_single")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Issues.WithLabelValues("numeric_coercion")))
}

func TestIngestService_DryRunSkipsPersistence(t *testing.T) {
	src := &MockSource{pages: map[string][]string{"good.pdf": {singleReport}}}
	repo := &MockRepository{}
	audit := &MockAudit{}

	codes := &MockCodes{}

	req := assayRequest()
	req.DryRun = true
	batch, err := NewIngestService(src, repo, testLogger()).WithAuditLog(audit).WithTestCodeStore(codes).
		ProcessBatch(context.Background(), req, []parser.Document{{Name: "good.pdf"}})

	require.NoError(t, err)
	assert.Equal(t, OutcomeExtracted, batch.Documents[0].Outcome)
	assert.Len(t, batch.Rows(), 1)
	assert.Empty(t, repo.docs)
	assert.Zero(t, audit.rows)
	assert.Empty(t, codes.saved, "dry runs leave the machine file untouched")
}

func TestIngestService_ImageOnlyPDFIsEmpty(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "scan.pdf"))
	require.NoError(t, err)
	repo := &MockRepository{}
	m := metrics.New()

	batch, err := NewIngestService(parser.Auto{}, repo, testLogger()).WithMetrics(m).
		ProcessBatch(context.Background(), assayRequest(), []parser.Document{{Name: "scan.pdf", Data: data}})
	require.NoError(t, err)

	require.Len(t, batch.Documents, 1)
	assert.Equal(t, OutcomeEmpty, batch.Documents[0].Outcome)
	assert.ErrorIs(t, batch.Documents[0].Err, ErrEmptyExtraction)
	assert.Empty(t, batch.Failed())
	assert.Empty(t, repo.docs)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Documents.WithLabelValues("assay_single", "empty")))
	assert.Zero(t, testutil.ToFloat64(m.Documents.WithLabelValues("assay_single", "failed")))
}

func TestIngestService_AuditFailureDoesNotFailDocument(t *testing.T) {
	src := &MockSource{pages: map[string][]string{"good.pdf": {singleReport}}}
	svc := NewIngestService(src, &MockRepository{}, testLogger()).WithAuditLog(&MockAudit{err: errors.New("disk full")})

	batch, err := svc.ProcessBatch(context.Background(), assayRequest(), []parser.Document{{Name: "good.pdf"}})

	require.NoError(t, err)
	assert.Equal(t, OutcomeInserted, batch.Documents[0].Outcome)
	assert.NoError(t, batch.Documents[0].Err)
}

func TestIngestService_ValidationBlocksBatch(t *testing.T) {
	src := &MockSource{}
	repo := &MockRepository{}
	codes := &MockCodes{}

	req := assayRequest()
	req.UserID = ""
	_, err := NewIngestService(src, repo, testLogger()).WithTestCodeStore(codes).
		ProcessBatch(context.Background(), req, []parser.Document{{Name: "x.pdf"}})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"user_id"}, verr.Missing)
	assert.Empty(t, codes.saved, "nothing is written before validation passes")
}

func TestIngestService_Dissolution(t *testing.T) {
	report := "Compound Name: Caffeine\nTitle\nV1\nAverage\nRet. Time\n1.0\n1.1\nArea\n10\nx\nHeight\n100\n105\n"
	src := &MockSource{pages: map[string][]string{"d.pdf": {report}}}
	repo := &MockRepository{}
	codes := &MockCodes{}

	req := Request{
		Mode:          pipeline.DissolutionNonStandard,
		UID:           "U-9",
		UserID:        "analyst",
		TestCode:      "10010",
		ComponentType: "single",
		Release:       stage.Delayed,
		Stage:         "v2",
		Medium:        "Buffer",
	}
	batch, err := NewIngestService(src, repo, testLogger()).WithTestCodeStore(codes).
		ProcessBatch(context.Background(), req, []parser.Document{{Name: "d.pdf"}})
	require.NoError(t, err)

	require.Len(t, repo.rows, 1)
	require.Len(t, repo.rows[0], 1, "Average row filtered")
	row := repo.rows[0][0].(record.DissolutionRow)
	assert.Equal(t, "V2", row.Stage)
	assert.Equal(t, "V2", row.VesselID)
	assert.Equal(t, "delayed", row.ProcessType)
	assert.Equal(t, "Buffer", row.MediumName)
	assert.Equal(t, record.SinkDissolution, repo.docs[0].Sink)
	assert.Empty(t, codes.saved, "dissolution runs do not overwrite the assay test code")
	assert.Nil(t, batch.Documents[0].Detection)
}

func TestIngestService_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch, err := NewIngestService(&MockSource{}, &MockRepository{}, testLogger()).
		ProcessBatch(ctx, assayRequest(), []parser.Document{{Name: "a.pdf"}})

	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, batch)
	assert.Empty(t, batch.Documents)
}
