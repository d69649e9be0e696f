package extract

import "strings"

// Column labels of the peak tables
const (
	LabelTitle                  = "Title"
	LabelRetTime                = "Ret. Time"
	LabelArea                   = "Area"
	LabelHeight                 = "Height"
	LabelTailingFactor          = "Tailing Factor"
	LabelTheoreticalPlate       = "Theoretical Plate"
	LabelTheoreticalPlateUSP    = "Theoretical Plate(USP)"
	LabelNumTheoreticalPlateUSP = "Number of Theoretical Plate(USP)"
)

// StopSet is the set of labels that terminate a column's data run.
// Membership is an exact, case-sensitive match on the whole line.
type StopSet map[string]struct{}

// NewStopSet builds a StopSet from labels.
func NewStopSet(labels ...string) StopSet {
	s := make(StopSet, len(labels))
	for _, l := range labels {
		s[l] = struct{}{}
	}
	return s
}

// Contains reports whether line is a stop-label.
func (s StopSet) Contains(line string) bool {
	_, ok := s[line]
	return ok
}

// DefaultStopLabels is the stop-label set shared by every report mode.
var DefaultStopLabels = NewStopSet(
	LabelTitle,
	LabelSampleName,
	LabelSampleID,
	LabelRetTime,
	LabelArea,
	LabelHeight,
	LabelTailingFactor,
	LabelTheoreticalPlate,
	LabelTheoreticalPlateUSP,
	LabelNumTheoreticalPlateUSP,
)

// Window is a half-open scan range [Start, End) over Lines with its stop-labels.
type Window struct {
	Lines Lines
	Start int
	End   int
	Stop  StopSet
}

// WholeDocument returns a window spanning every line.
func WholeDocument(lines Lines, stop StopSet) Window {
	return Window{Lines: lines, Start: 0, End: len(lines), Stop: stop}
}

// Column reads the values listed under the last occurrence of label inside the
// window. Later tables override earlier ones as the section of record.
// An absent label yields an empty series.
func (w Window) Column(label string) []string {
	start, end := w.bounds()
	anchor := -1
	for i := end - 1; i >= start; i-- {
		if strings.EqualFold(strings.TrimSpace(w.Lines[i]), label) {
			anchor = i
			break
		}
	}
	if anchor < 0 {
		return nil
	}

	var values []string
	for i := anchor + 1; i < end; i++ {
		line := w.Lines[i]
		if w.Stop.Contains(line) {
			break
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		if v := cleanValue(line); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// ColumnFallback returns the first non-empty series among labels, in order.
func (w Window) ColumnFallback(labels ...string) []string {
	for _, label := range labels {
		if values := w.Column(label); len(values) > 0 {
			return values
		}
	}
	return nil
}

func (w Window) bounds() (int, int) {
	start, end := w.Start, w.End
	if start < 0 {
		start = 0
	}
	if end > len(w.Lines) {
		end = len(w.Lines)
	}
	return start, end
}
