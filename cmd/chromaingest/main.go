package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/parser"
	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/pipeline"
	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/preview"
	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/service"
	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/stage"
	"github.com/FACorreiaa/chroma-ingest/pkg/config"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "chromaingest",
		Short: "Load chromatography result reports into PostgreSQL",
		Long: `chromaingest reads LC result reports (PDF exports or text dumps),
extracts the header fields and peak tables, and stores one row per peak.

Assay reports go to assay_single or assay_multi, dissolution reports to
dissolution_raw. Every inserted row is also appended to a per-day audit log.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().String("preview-xlsx", "", "write extracted rows to this .xlsx file")
	root.PersistentFlags().String("preview-csv", "", "write extracted rows to this .csv file")
	root.PersistentFlags().Bool("dry-run", false, "extract and preview without touching the database")
	root.PersistentFlags().Bool("log-json", false, "log as JSON")
	root.PersistentFlags().Bool("pdftotext", false, "fall back to pdftotext when the PDF reader finds no text")

	root.AddCommand(assayCmd())
	root.AddCommand(dissolutionCmd())
	root.AddCommand(configCmd())
	root.AddCommand(migrateCmd())
	return root
}

func assayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assay FILE...",
		Short: "Ingest assay reports",
		Long: `Ingest single- or multi-compound assay reports.

Example:
  chromaingest assay --mode single --uid 24-0113 --user jdoe --test-code 10003 run1.pdf run2.pdf
  chromaingest assay --mode multi --uid 24-0114 --user jdoe --dry-run --preview-xlsx out.xlsx run3.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modeFlag, _ := cmd.Flags().GetString("mode")
			uid, _ := cmd.Flags().GetString("uid")
			user, _ := cmd.Flags().GetString("user")
			testCode, _ := cmd.Flags().GetString("test-code")

			var mode pipeline.Mode
			switch modeFlag {
			case "single":
				mode = pipeline.AssaySingle
			case "multi":
				mode = pipeline.AssayMulti
			default:
				return fmt.Errorf("--mode must be single or multi, got %q", modeFlag)
			}

			return runBatch(cmd, args, func(m config.MachineConfig) service.Request {
				if testCode == "" {
					testCode = m.TestCode
				}
				return service.Request{
					Mode:      mode,
					MachineID: m.MachineID,
					UID:       uid,
					UserID:    user,
					TestCode:  testCode,
				}
			})
		},
	}

	cmd.Flags().String("mode", "single", "single or multi")
	cmd.Flags().String("uid", "", "sample id (u_id)")
	cmd.Flags().String("user", "", "analyst user id")
	cmd.Flags().String("test-code", "", "test code, defaults to the machine file and is saved back to it")
	return cmd
}

func dissolutionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dissolution FILE...",
		Short: "Ingest dissolution reports",
		Long: `Ingest dissolution reports, standard (CS/SS detected from the report)
or non-standard (component, release type and stage supplied).

Example:
  chromaingest dissolution --uid 24-0200 --user jdoe --test-code 10010 --standard std1.pdf
  chromaingest dissolution --uid 24-0201 --user jdoe --test-code 10011 \
      --component single --release delayed --stage V2 --medium "pH 6.8 buffer" v1.pdf v2.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, _ := cmd.Flags().GetString("uid")
			user, _ := cmd.Flags().GetString("user")
			testCode, _ := cmd.Flags().GetString("test-code")
			standard, _ := cmd.Flags().GetBool("standard")
			component, _ := cmd.Flags().GetString("component")
			releaseFlag, _ := cmd.Flags().GetString("release")
			stageFlag, _ := cmd.Flags().GetString("stage")
			medium, _ := cmd.Flags().GetString("medium")

			req := service.Request{
				Mode:   pipeline.DissolutionStandard,
				UID:    uid,
				UserID: user,
			}
			if !standard {
				req.Mode = pipeline.DissolutionNonStandard
				req.ComponentType = component
				req.Medium = medium

				if releaseFlag != "" {
					release, err := stage.ParseReleaseType(releaseFlag)
					if err != nil {
						return err
					}
					var sel stage.Selection
					sel.SetRelease(release)
					if stageFlag != "" {
						if err := sel.SetStage(stageFlag); err != nil {
							return fmt.Errorf("%w, choose one of %s", err, strings.Join(sel.Options(), ", "))
						}
					}
					req.Release, req.Stage = sel.Release(), sel.Stage()
				}
			}

			return runBatch(cmd, args, func(m config.MachineConfig) service.Request {
				req.MachineID = m.MachineID
				req.TestCode = testCode
				if req.TestCode == "" {
					req.TestCode = m.DissolutionTestCode()
				}
				return req
			})
		},
	}

	cmd.Flags().String("uid", "", "sample id (u_id)")
	cmd.Flags().String("user", "", "analyst user id")
	cmd.Flags().String("test-code", "", "test code ("+strings.Join(config.DissolutionTestCodes, " or ")+")")
	cmd.Flags().Bool("standard", false, "standard sample, CS/SS is detected from the report")
	cmd.Flags().String("component", "", "component type: single or multi")
	cmd.Flags().String("release", "", "release type: immediate, delayed or extended")
	cmd.Flags().String("stage", "", "stage code, defaults to the first stage of the release type")
	cmd.Flags().String("medium", "", "dissolution medium (optional)")
	return cmd
}

// runBatch loads configuration and files, runs the batch and prints a summary.
func runBatch(cmd *cobra.Command, paths []string, build func(config.MachineConfig) service.Request) error {
	ctx := cmd.Context()
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	machine, err := config.LoadMachineFile(cfg.Files.MachineFile)
	if err != nil {
		return err
	}
	req := build(machine)
	req.DryRun, _ = cmd.Flags().GetBool("dry-run")

	// validate before opening the database
	if err := service.Validate(req); err != nil {
		return err
	}

	deps, err := InitDependencies(ctx, cfg, logger, !req.DryRun)
	if err != nil {
		return err
	}
	defer deps.Cleanup()

	var docs []parser.Document
	var loadErrs []error
	for _, p := range paths {
		doc, err := parser.Load(p)
		if err != nil {
			logger.Error("failed to load file", "error", err)
			loadErrs = append(loadErrs, err)
			continue
		}
		docs = append(docs, doc)
	}

	batch, err := deps.IngestService.ProcessBatch(ctx, req, docs)
	if err != nil {
		return err
	}

	if err := writePreviews(cmd, batch); err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), batch)

	if failed := len(batch.Failed()) + len(loadErrs); failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(paths))
	}
	return nil
}

func writePreviews(cmd *cobra.Command, batch *service.BatchResult) error {
	rows := batch.Rows()
	if xlsxPath, _ := cmd.Flags().GetString("preview-xlsx"); xlsxPath != "" {
		if err := writeFile(xlsxPath, func(w io.Writer) error { return preview.WriteXLSX(w, rows) }); err != nil {
			return err
		}
	}
	if csvPath, _ := cmd.Flags().GetString("preview-csv"); csvPath != "" {
		if err := writeFile(csvPath, func(w io.Writer) error { return preview.WriteCSV(w, rows) }); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}

func printSummary(w io.Writer, batch *service.BatchResult) {
	fmt.Fprintf(w, "Batch %s (%s)\n", batch.ID, batch.Mode)
	for _, d := range batch.Documents {
		line := fmt.Sprintf("  %-40s %-10s rows=%d inserted=%d issues=%d", d.Name, d.Outcome, len(d.Rows), d.Inserted, len(d.Issues))
		if d.Detection != nil {
			line += fmt.Sprintf(" standard=%s(%s)", d.Detection.Type, d.Detection.Source)
		}
		if d.Err != nil {
			line += " error=" + d.Err.Error()
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "Inserted %d rows from %d documents.\n", batch.Inserted(), len(batch.Documents))
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or edit the machine and database files",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}
			machine, err := config.LoadMachineFile(cfg.Files.MachineFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "machine file:  %s\n", cfg.Files.MachineFile)
			fmt.Fprintf(out, "  machine_id:  %s\n", machine.MachineID)
			fmt.Fprintf(out, "  test_code:   %s\n", machine.TestCode)
			fmt.Fprintf(out, "database file: %s\n", cfg.Files.DatabaseFile)
			fmt.Fprintf(out, "  host:        %s:%d\n", cfg.Database.Host, cfg.Database.Port)
			fmt.Fprintf(out, "  user:        %s\n", cfg.Database.User)
			fmt.Fprintf(out, "  database:    %s\n", cfg.Database.Database)
			fmt.Fprintf(out, "audit log dir: %s\n", cfg.Files.LogDir)
			return nil
		},
	}

	save := &cobra.Command{
		Use:   "save",
		Short: "Write the machine file",
		RunE: func(cmd *cobra.Command, args []string) error {
			machineID, _ := cmd.Flags().GetString("machine-id")
			testCode, _ := cmd.Flags().GetString("test-code")
			if machineID == "" {
				return errors.New("--machine-id is required")
			}
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := config.SaveMachineFile(cfg.Files.MachineFile, config.MachineConfig{MachineID: machineID, TestCode: testCode}); err != nil {
				return err
			}
			logger.Info("machine file saved", slog.String("path", cfg.Files.MachineFile))
			return nil
		},
	}
	save.Flags().String("machine-id", "", "instrument id")
	save.Flags().String("test-code", "", "default test code")

	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Write the database file",
		RunE: func(cmd *cobra.Command, args []string) error {
			var c config.DatabaseConfig
			c.Host, _ = cmd.Flags().GetString("host")
			c.Port, _ = cmd.Flags().GetInt("port")
			c.User, _ = cmd.Flags().GetString("user")
			c.Password, _ = cmd.Flags().GetString("password")
			c.Database, _ = cmd.Flags().GetString("database")
			if c.Host == "" || c.User == "" || c.Database == "" {
				return errors.New("--host, --user and --database are required")
			}
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := config.SaveDatabaseFile(cfg.Files.DatabaseFile, c); err != nil {
				return err
			}
			logger.Info("database file saved", slog.String("path", cfg.Files.DatabaseFile))
			return nil
		},
	}
	dbCmd.Flags().String("host", "", "database host")
	dbCmd.Flags().Int("port", 5432, "database port")
	dbCmd.Flags().String("user", "", "database user")
	dbCmd.Flags().String("password", "", "database password")
	dbCmd.Flags().String("database", "", "database name")

	cmd.AddCommand(show, save, dbCmd)
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			deps, err := InitDependencies(cmd.Context(), cfg, logger, true)
			if err != nil {
				return err
			}
			deps.Cleanup()
			return nil
		},
	}
}

// setup loads configuration and builds the logger for a command.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if v, _ := cmd.Flags().GetBool("log-json"); v {
		cfg.Observability.LogJSON = true
	}
	if v, _ := cmd.Flags().GetBool("pdftotext"); v {
		cfg.Parser.PdftotextFallback = true
	}
	return cfg, newLogger(cfg.Observability), nil
}

func newLogger(o config.ObservabilityConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if o.LogJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
