// Package repository persists extracted rows, one transaction per document.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/record"
)

// ErrMixedSinks indicates a document produced rows for more than one table
var ErrMixedSinks = errors.New("rows target more than one sink")

// Document describes the source file of a batch of rows
type Document struct {
	ID          uuid.UUID
	FileName    string
	Sink        record.Sink
	ContentHash string
}

// ResultRepository stores the rows of one document atomically
type ResultRepository interface {
	InsertDocument(ctx context.Context, doc Document, rows []record.Row) (int, error)
}

// TxBeginner is satisfied by *pgxpool.Pool and pgxmock pools
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresResultRepository implements ResultRepository using PostgreSQL
type PostgresResultRepository struct {
	db      TxBeginner
	logger  *slog.Logger
	queries map[record.Sink]string
}

// NewPostgresResultRepository creates a repository over db.
func NewPostgresResultRepository(db TxBeginner, logger *slog.Logger) *PostgresResultRepository {
	queries := make(map[record.Sink]string)
	for _, s := range []record.Sink{record.SinkAssaySingle, record.SinkAssayMulti, record.SinkDissolution} {
		queries[s] = insertQuery(s)
	}
	return &PostgresResultRepository{db: db, logger: logger, queries: queries}
}

const insertDocumentQuery = `
	INSERT INTO ingest_documents (id, file_name, sink, content_hash, row_count)
	VALUES ($1, $2, $3, $4, $5)`

// InsertDocument writes the document ledger entry and every row inside one
// transaction. Nothing is visible unless all rows succeed.
func (r *PostgresResultRepository) InsertDocument(ctx context.Context, doc Document, rows []record.Row) (int, error) {
	if err := doc.Sink.Validate(); err != nil {
		return 0, err
	}
	for _, row := range rows {
		if row.Sink() != doc.Sink {
			return 0, fmt.Errorf("%w: %s and %s", ErrMixedSinks, doc.Sink, row.Sink())
		}
	}
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}

	start := time.Now()
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, insertDocumentQuery,
		doc.ID, doc.FileName, string(doc.Sink), doc.ContentHash, len(rows),
	); err != nil {
		return 0, fmt.Errorf("failed to insert document %s: %w", doc.FileName, err)
	}

	query := r.queries[doc.Sink]
	for i, row := range rows {
		if _, err := tx.Exec(ctx, query, row.Values()...); err != nil {
			return 0, fmt.Errorf("failed to insert row %d of %s: %w", i+1, doc.FileName, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Debug("document persisted",
		slog.String("document_id", doc.ID.String()),
		slog.String("file", doc.FileName),
		slog.String("sink", doc.Sink.String()),
		slog.Int("rows", len(rows)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return len(rows), nil
}

func insertQuery(s record.Sink) string {
	cols := s.Columns()
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pgx.Identifier{string(s)}.Sanitize(),
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
	)
}
