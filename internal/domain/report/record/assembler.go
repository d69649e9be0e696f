package record

import (
	"fmt"
	"strconv"
	"strings"
)

// CoercionPolicy decides what a failed numeric conversion does to its row
type CoercionPolicy int

const (
	// DropRow discards the whole row (single-compound assay).
	DropRow CoercionPolicy = iota
	// NullField stores nil for the failing field and keeps the row.
	NullField
)

func (p CoercionPolicy) String() string {
	switch p {
	case DropRow:
		return "drop_row"
	case NullField:
		return "null_field"
	default:
		return fmt.Sprintf("CoercionPolicy(%d)", int(p))
	}
}

// CoercionError records a value that could not be read as a number
type CoercionError struct {
	Ordinal int // 1-based row position within the table window
	Column  string
	Value   string
	Dropped bool
}

func (e CoercionError) Error() string {
	action := "stored as null"
	if e.Dropped {
		action = "row dropped"
	}
	return fmt.Sprintf("row %d: %s value %q is not numeric (%s)", e.Ordinal, e.Column, e.Value, action)
}

// Series are the raw column values of one table window
type Series struct {
	Titles           []string
	SampleNames      []string
	SampleIDs        []string
	RetTimes         []string
	Areas            []string
	Heights          []string
	TailingFactors   []string
	TheoreticalPlate []string
}

// Len returns the length of the series backing column, 0 for unknown columns.
func (s Series) Len(column string) int {
	switch column {
	case ColTitle:
		return len(s.Titles)
	case ColSampleName:
		return len(s.SampleNames)
	case ColSampleIDInd:
		return len(s.SampleIDs)
	case ColRetTime:
		return len(s.RetTimes)
	case ColArea:
		return len(s.Areas)
	case ColHeight:
		return len(s.Heights)
	case ColTailingFactor:
		return len(s.TailingFactors)
	case ColTheoreticalPlate:
		return len(s.TheoreticalPlate)
	}
	return 0
}

// Measurement is one assembled table entry before header stamping
type Measurement struct {
	Ordinal int
	Peak
	Height *string
}

// RowFilter reports whether an assembled entry should be discarded
type RowFilter func(m Measurement) bool

var summaryTitles = map[string]struct{}{
	"Average":            {},
	"%RSD":               {},
	"Standard Deviation": {},
	"Std. Dev.":          {},
}

// SummaryRowFilter drops the statistics rows a dissolution report appends
// under each table. Titles match case-sensitively.
func SummaryRowFilter(m Measurement) bool {
	if m.Title == nil {
		return false
	}
	_, ok := summaryTitles[*m.Title]
	return ok
}

// Assembler zips column series into positional entries
type Assembler struct {
	Policy CoercionPolicy
	// Mandatory columns decide the row count: the longest of them wins.
	Mandatory []string
	Filter    RowFilter
}

// Assemble builds one Measurement per row position. Coercion failures are
// returned alongside the kept entries and never abort the window.
func (a Assembler) Assemble(s Series) ([]Measurement, []CoercionError) {
	n := 0
	for _, col := range a.Mandatory {
		n = max(n, s.Len(col))
	}

	var (
		out  []Measurement
		errs []CoercionError
	)
	for i := 0; i < n; i++ {
		m := Measurement{
			Ordinal: i + 1,
			Peak: Peak{
				Title:       at(s.Titles, i),
				SampleName:  at(s.SampleNames, i),
				SampleIDInd: at(s.SampleIDs, i),
			},
			Height: at(s.Heights, i),
		}
		if a.Filter != nil && a.Filter(m) {
			continue
		}

		var rowErrs []CoercionError
		m.RetTime = a.number(&rowErrs, i, ColRetTime, s.RetTimes)
		m.Area = a.number(&rowErrs, i, ColArea, s.Areas)
		m.TailingFactor = a.number(&rowErrs, i, ColTailingFactor, s.TailingFactors)
		m.TheoreticalPlate = a.number(&rowErrs, i, ColTheoreticalPlate, s.TheoreticalPlate)

		errs = append(errs, rowErrs...)
		if a.Policy == DropRow && len(rowErrs) > 0 {
			continue
		}
		out = append(out, m)
	}
	return out, errs
}

func (a Assembler) number(errs *[]CoercionError, i int, column string, series []string) *float64 {
	raw := at(series, i)
	if raw == nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
	if err != nil {
		*errs = append(*errs, CoercionError{
			Ordinal: i + 1,
			Column:  column,
			Value:   *raw,
			Dropped: a.Policy == DropRow,
		})
		return nil
	}
	return &v
}

func at(series []string, i int) *string {
	if i >= len(series) {
		return nil
	}
	v := series[i]
	return &v
}
