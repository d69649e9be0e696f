package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/audit"
	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/parser"
	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/repository"
	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/service"
	"github.com/FACorreiaa/chroma-ingest/pkg/config"
	"github.com/FACorreiaa/chroma-ingest/pkg/db"
	"github.com/FACorreiaa/chroma-ingest/pkg/metrics"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	DB      *db.DB
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Repositories
	ResultRepo repository.ResultRepository

	// Services
	Source        parser.Source
	AuditLog      *audit.Log
	IngestService *service.IngestService
}

// InitDependencies initializes all application dependencies. With persist
// false no database connection is opened and batches only extract.
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger, persist bool) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
	}

	if persist {
		if err := deps.initDatabase(ctx); err != nil {
			return nil, fmt.Errorf("failed to init database: %w", err)
		}
		deps.initRepositories()
	}

	deps.initServices()

	logger.Debug("all dependencies initialized", slog.Bool("persist", persist))
	return deps, nil
}

// initDatabase connects and applies pending migrations
func (d *Dependencies) initDatabase(ctx context.Context) error {
	database, err := db.New(ctx, db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}
	d.DB = database

	if err := d.DB.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (d *Dependencies) initRepositories() {
	d.ResultRepo = repository.NewPostgresResultRepository(d.DB.Pool, d.Logger)
}

func (d *Dependencies) initServices() {
	d.Source = parser.Auto{PDF: &parser.PDFParser{FallbackPdftotext: d.Config.Parser.PdftotextFallback}}
	d.AuditLog = audit.New(d.Config.Files.LogDir)

	d.IngestService = service.NewIngestService(d.Source, d.ResultRepo, d.Logger).
		WithAuditLog(d.AuditLog).
		WithTestCodeStore(config.MachineStore{Path: d.Config.Files.MachineFile}).
		WithMetrics(d.Metrics)
}

// Cleanup flushes metrics and closes all resources
func (d *Dependencies) Cleanup() {
	if path := d.Config.Observability.MetricsTextfile; path != "" {
		if err := d.Metrics.WriteTextfile(path); err != nil {
			d.Logger.Warn("failed to write metrics", "error", err)
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
