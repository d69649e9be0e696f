package record

import "github.com/FACorreiaa/chroma-ingest/internal/domain/report/extract"

// Inputs are the operator-supplied values carried on every row
type Inputs struct {
	MachineID string
	UID       string
	UserID    string
	TestCode  string
}

// Dissolution holds the per-run dissolution attributes. For standard runs
// Stage carries the detected CS/SS type and VesselID stays empty.
type Dissolution struct {
	ComponentType string
	ProcessType   string
	MediumName    string
	Stage         string
	VesselID      string
}

// Builder fills the document-level fields once and stamps them on each row
type Builder struct {
	header Header
}

// NewBuilder merges operator inputs with the fields read from the report.
func NewBuilder(in Inputs, fields extract.HeaderFields) *Builder {
	return &Builder{header: Header{
		MachineID:        in.MachineID,
		UID:              in.UID,
		UserID:           in.UserID,
		TestCode:         in.TestCode,
		AcquiredBy:       fields.AcquiredBy,
		SampleNameHeader: fields.SampleName,
		SampleID:         fields.SampleID,
		Tray:             fields.Tray,
		Vial:             fields.Vial,
		InjectionVolume:  fields.InjectionVolume,
		DataFile:         fields.DataFile,
		MethodFile:       fields.MethodFile,
		BatchFile:        fields.BatchFile,
		ReportFormatFile: fields.ReportFormatFile,
		DateAcquired:     fields.DateAcquired,
		DateProcessed:    fields.DateProcessed,
	}}
}

// Header returns a copy of the document header.
func (b *Builder) Header() Header { return b.header }

// Assay builds a single-compound assay row.
func (b *Builder) Assay(m Measurement) AssayRow {
	return AssayRow{Header: b.header, Peak: m.Peak}
}

// Multi builds a multi-compound assay row tagged with compound.
func (b *Builder) Multi(compound string, m Measurement) MultiRow {
	return MultiRow{Header: b.header, CompoundName: compound, Peak: m.Peak}
}

// Dissolution builds a dissolution row carrying the raw height and d.
func (b *Builder) Dissolution(compound string, m Measurement, d Dissolution) DissolutionRow {
	return DissolutionRow{
		Header:        b.header,
		CompoundName:  compound,
		Peak:          m.Peak,
		Height:        m.Height,
		ComponentType: d.ComponentType,
		ProcessType:   d.ProcessType,
		MediumName:    d.MediumName,
		Stage:         d.Stage,
		VesselID:      d.VesselID,
	}
}
