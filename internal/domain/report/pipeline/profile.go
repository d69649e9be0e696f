// Package pipeline runs the extraction stages over a normalized report and
// produces rows for one of the four processing modes.
package pipeline

import (
	"fmt"

	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/extract"
	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/record"
)

// Mode selects how a report is interpreted
type Mode string

const (
	AssaySingle            Mode = "assay_single"
	AssayMulti             Mode = "assay_multi"
	DissolutionStandard    Mode = "dissolution_standard"
	DissolutionNonStandard Mode = "dissolution_non_standard"
)

// IsDissolution reports whether m writes to the dissolution sink.
func (m Mode) IsDissolution() bool {
	return m == DissolutionStandard || m == DissolutionNonStandard
}

// Profile is the per-mode configuration of the shared pipeline
type Profile struct {
	Mode      Mode
	Sink      record.Sink
	Policy    record.CoercionPolicy
	Mandatory []string
	// PlateLabels are tried in order for the theoretical plate column.
	PlateLabels []string
	Stop        extract.StopSet
	// SplitCompounds enables the compound block splitter. When the document
	// has no compound lines, WholeDocumentFallback treats it as one block;
	// otherwise the document yields no rows.
	SplitCompounds        bool
	WholeDocumentFallback bool
	Filter                record.RowFilter
}

var (
	singleMandatory = []string{record.ColTitle, record.ColRetTime}
	multiMandatory  = []string{
		record.ColTitle, record.ColRetTime, record.ColArea, record.ColSampleIDInd, record.ColSampleName,
	}

	assayPlates       = []string{extract.LabelTheoreticalPlate, extract.LabelNumTheoreticalPlateUSP}
	dissolutionPlates = []string{
		extract.LabelTheoreticalPlate, extract.LabelTheoreticalPlateUSP, extract.LabelNumTheoreticalPlateUSP,
	}
)

var profiles = map[Mode]Profile{
	AssaySingle: {
		Mode:        AssaySingle,
		Sink:        record.SinkAssaySingle,
		Policy:      record.DropRow,
		Mandatory:   singleMandatory,
		PlateLabels: assayPlates,
		Stop:        extract.DefaultStopLabels,
	},
	AssayMulti: {
		Mode:           AssayMulti,
		Sink:           record.SinkAssayMulti,
		Policy:         record.NullField,
		Mandatory:      multiMandatory,
		PlateLabels:    assayPlates,
		Stop:           extract.DefaultStopLabels,
		SplitCompounds: true,
	},
	DissolutionStandard: {
		Mode:                  DissolutionStandard,
		Sink:                  record.SinkDissolution,
		Policy:                record.NullField,
		Mandatory:             multiMandatory,
		PlateLabels:           dissolutionPlates,
		Stop:                  extract.DefaultStopLabels,
		SplitCompounds:        true,
		WholeDocumentFallback: true,
	},
	DissolutionNonStandard: {
		Mode:                  DissolutionNonStandard,
		Sink:                  record.SinkDissolution,
		Policy:                record.NullField,
		Mandatory:             multiMandatory,
		PlateLabels:           dissolutionPlates,
		Stop:                  extract.DefaultStopLabels,
		SplitCompounds:        true,
		WholeDocumentFallback: true,
		Filter:                record.SummaryRowFilter,
	},
}

// ProfileFor returns the built-in profile of m.
func ProfileFor(m Mode) (Profile, error) {
	p, ok := profiles[m]
	if !ok {
		return Profile{}, fmt.Errorf("unknown mode %q", string(m))
	}
	return p, nil
}

// ParseMode accepts the mode names used on the command line.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if _, ok := profiles[m]; !ok {
		return "", fmt.Errorf("unknown mode %q", s)
	}
	return m, nil
}
