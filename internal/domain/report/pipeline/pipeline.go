package pipeline

import (
	"fmt"

	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/extract"
	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/record"
)

// IssueKind classifies a non-fatal extraction problem
type IssueKind string

const (
	IssueNumericCoercion   IssueKind = "numeric_coercion"
	IssueNoTableHeader     IssueKind = "no_table_header"
	IssueNoCompoundHeaders IssueKind = "no_compound_headers"
)

// Issue is reported alongside the rows; none of them stop the document
type Issue struct {
	Kind     IssueKind
	Compound string
	Message  string
	Coercion *record.CoercionError
}

// Request carries the operator inputs for one document
type Request struct {
	Mode   Mode
	Inputs record.Inputs
	// Dissolution attributes for non-standard runs. Stage doubles as the
	// vessel id.
	Dissolution record.Dissolution
}

// Result is the outcome of running one document through a profile
type Result struct {
	Header    record.Header
	Rows      []record.Row
	Issues    []Issue
	Blocks    int
	Detection *extract.Detection
}

// IssueCount returns the number of issues of kind k.
func (r Result) IssueCount(k IssueKind) int {
	n := 0
	for _, is := range r.Issues {
		if is.Kind == k {
			n++
		}
	}
	return n
}

// Run resolves the profile of req.Mode and runs it.
func Run(lines extract.Lines, req Request) (Result, error) {
	p, err := ProfileFor(req.Mode)
	if err != nil {
		return Result{}, err
	}
	return p.Run(lines, req), nil
}

// Run extracts every row of the document. It never fails; problems are
// returned as issues.
func (p Profile) Run(lines extract.Lines, req Request) Result {
	b := record.NewBuilder(req.Inputs, extract.ReadHeader(lines))
	res := Result{Header: b.Header()}

	diss := req.Dissolution
	switch p.Mode {
	case DissolutionStandard:
		d := extract.DetectStandardType(lines, req.Inputs.UID)
		res.Detection = &d
		diss = record.Dissolution{Stage: string(d.Type)}
	case DissolutionNonStandard:
		diss.VesselID = diss.Stage
	}

	asm := record.Assembler{Policy: p.Policy, Mandatory: p.Mandatory, Filter: p.Filter}

	if !p.SplitCompounds {
		res.Blocks = 1
		p.collect(&res, asm, extract.WholeDocument(lines, p.Stop), "", func(m record.Measurement) record.Row {
			return b.Assay(m)
		})
		return res
	}

	emit := func(compound string) func(record.Measurement) record.Row {
		if p.Sink == record.SinkDissolution {
			return func(m record.Measurement) record.Row { return b.Dissolution(compound, m, diss) }
		}
		return func(m record.Measurement) record.Row { return b.Multi(compound, m) }
	}

	blocks := extract.SplitCompounds(lines)
	if len(blocks) == 0 {
		if !p.WholeDocumentFallback {
			res.Issues = append(res.Issues, Issue{
				Kind:    IssueNoCompoundHeaders,
				Message: "no compound name lines found",
			})
			return res
		}
		res.Blocks = 1
		compound := lines.CompoundName()
		p.collect(&res, asm, extract.WholeDocument(lines, p.Stop), compound, emit(compound))
		return res
	}

	res.Blocks = len(blocks)
	for _, blk := range blocks {
		w, ok := blk.TableWindow(lines, p.Stop)
		if !ok {
			res.Issues = append(res.Issues, Issue{
				Kind:     IssueNoTableHeader,
				Compound: blk.CompoundName,
				Message:  fmt.Sprintf("no %s label in block starting at line %d", extract.LabelTitle, blk.Start),
			})
			continue
		}
		p.collect(&res, asm, w, blk.CompoundName, emit(blk.CompoundName))
	}
	return res
}

func (p Profile) collect(res *Result, asm record.Assembler, w extract.Window, compound string, build func(record.Measurement) record.Row) {
	series := record.Series{
		Titles:           w.Column(extract.LabelTitle),
		SampleNames:      w.Column(extract.LabelSampleName),
		SampleIDs:        w.Column(extract.LabelSampleID),
		RetTimes:         w.Column(extract.LabelRetTime),
		Areas:            w.Column(extract.LabelArea),
		TailingFactors:   w.Column(extract.LabelTailingFactor),
		TheoreticalPlate: w.ColumnFallback(p.PlateLabels...),
	}
	if p.Sink == record.SinkDissolution {
		series.Heights = w.Column(extract.LabelHeight)
	}

	measurements, errs := asm.Assemble(series)
	for i := range errs {
		ce := errs[i]
		res.Issues = append(res.Issues, Issue{
			Kind:     IssueNumericCoercion,
			Compound: compound,
			Message:  ce.Error(),
			Coercion: &ce,
		})
	}
	for _, m := range measurements {
		res.Rows = append(res.Rows, build(m))
	}
}
