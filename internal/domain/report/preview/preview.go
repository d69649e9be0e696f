// Package preview exports a batch of rows for review outside the database.
package preview

import (
	"errors"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/record"
)

var ErrMixedRows = errors.New("csv preview needs rows of a single sink")

var sinkOrder = []record.Sink{record.SinkAssaySingle, record.SinkAssayMulti, record.SinkDissolution}

// WriteXLSX writes one sheet per sink present in rows, header first.
// Absent values are left as empty cells.
func WriteXLSX(w io.Writer, rows []record.Row) error {
	bySink := make(map[record.Sink][]record.Row)
	for _, r := range rows {
		bySink[r.Sink()] = append(bySink[r.Sink()], r)
	}

	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	first := true
	for _, sink := range sinkOrder {
		sinkRows, ok := bySink[sink]
		if !ok {
			continue
		}
		sheet := sink.String()
		if first {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				return fmt.Errorf("failed to name sheet: %w", err)
			}
			first = false
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", sheet, err)
		}

		for i, h := range sink.Columns() {
			if err := setCell(f, sheet, i+1, 1, h); err != nil {
				return err
			}
		}
		for r, row := range sinkRows {
			for c, v := range row.Values() {
				if v == nil {
					continue
				}
				if err := setCell(f, sheet, c+1, r+2, v); err != nil {
					return err
				}
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx preview: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("failed to address cell %d,%d: %w", col, row, err)
	}
	if err := f.SetCellValue(sheet, cell, v); err != nil {
		return fmt.Errorf("failed to set %s!%s: %w", sheet, cell, err)
	}
	return nil
}

// WriteCSV marshals rows by their csv tags. All rows must share a sink.
func WriteCSV(w io.Writer, rows []record.Row) error {
	if len(rows) == 0 {
		return nil
	}

	var out any
	switch rows[0].(type) {
	case record.AssayRow:
		out = collect[record.AssayRow](rows)
	case record.MultiRow:
		out = collect[record.MultiRow](rows)
	case record.DissolutionRow:
		out = collect[record.DissolutionRow](rows)
	default:
		return fmt.Errorf("unsupported row type %T", rows[0])
	}
	if out == nil {
		return ErrMixedRows
	}

	if err := gocsv.Marshal(out, w); err != nil {
		return fmt.Errorf("failed to write csv preview: %w", err)
	}
	return nil
}

// collect returns nil when any row is not a T.
func collect[T record.Row](rows []record.Row) any {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		v, ok := r.(T)
		if !ok {
			return nil
		}
		out = append(out, v)
	}
	return out
}
