package record

// Header is the per-document metadata repeated on every row.
// Operator inputs come first, then the values read from the report header.
type Header struct {
	MachineID        string  `csv:"machine_id"`
	UID              string  `csv:"u_id"`
	UserID           string  `csv:"user_id"`
	TestCode         string  `csv:"test_code"`
	AcquiredBy       string  `csv:"acquired_by"`
	SampleNameHeader string  `csv:"sample_name_header"`
	SampleID         string  `csv:"sample_id"`
	Tray             int     `csv:"tray"`
	Vial             int     `csv:"vial"`
	InjectionVolume  float64 `csv:"injection_volume"`
	DataFile         string  `csv:"data_file"`
	MethodFile       string  `csv:"method_file"`
	BatchFile        string  `csv:"batch_file"`
	ReportFormatFile string  `csv:"report_format_file"`
	DateAcquired     string  `csv:"date_acquired"`
	DateProcessed    string  `csv:"date_processed"`
}

// Peak holds one positional table entry. nil means the series had no value at
// this position, or (multi-compound and dissolution) the value was not numeric.
type Peak struct {
	Title            *string  `csv:"title"`
	SampleName       *string  `csv:"sample_name"`
	SampleIDInd      *string  `csv:"sample_id_ind"`
	RetTime          *float64 `csv:"ret_time"`
	Area             *float64 `csv:"area"`
	TailingFactor    *float64 `csv:"tailing_factor"`
	TheoreticalPlate *float64 `csv:"theoretical_plate"`
}

// Row is one output record. The concrete types are AssayRow, MultiRow and
// DissolutionRow.
type Row interface {
	Sink() Sink
	// Values returns one value per Sink().Columns() entry, nil for absent fields.
	Values() []any
}

// AssayRow is a single-compound assay result
type AssayRow struct {
	Header
	Peak
}

// MultiRow is a multi-compound assay result
type MultiRow struct {
	Header
	CompoundName string `csv:"compound_name"`
	Peak
}

// DissolutionRow is a dissolution result, standard or non-standard
type DissolutionRow struct {
	Header
	CompoundName string `csv:"compound_name"`
	Peak
	Height        *string `csv:"height"`
	ComponentType string  `csv:"component_type"`
	ProcessType   string  `csv:"process_type"`
	MediumName    string  `csv:"medium_name"`
	Stage         string  `csv:"stage"`
	VesselID      string  `csv:"vessel_id"`
}

func (AssayRow) Sink() Sink       { return SinkAssaySingle }
func (MultiRow) Sink() Sink       { return SinkAssayMulti }
func (DissolutionRow) Sink() Sink { return SinkDissolution }

func (r AssayRow) Values() []any {
	return concatValues(r.Header.values(), r.Peak.values())
}

func (r MultiRow) Values() []any {
	return concatValues(r.Header.values(), []any{r.CompoundName}, r.Peak.values())
}

func (r DissolutionRow) Values() []any {
	return concatValues(
		r.Header.values(),
		[]any{r.CompoundName},
		r.Peak.values(),
		[]any{str(r.Height), r.ComponentType, r.ProcessType, r.MediumName, r.Stage, r.VesselID},
	)
}

func (h Header) values() []any {
	return []any{
		h.MachineID, h.UID, h.UserID, h.TestCode, h.AcquiredBy, h.SampleNameHeader,
		h.SampleID, h.Tray, h.Vial, h.InjectionVolume, h.DataFile, h.MethodFile,
		h.BatchFile, h.ReportFormatFile, h.DateAcquired, h.DateProcessed,
	}
}

func (p Peak) values() []any {
	return []any{
		str(p.Title), str(p.SampleName), str(p.SampleIDInd),
		num(p.RetTime), num(p.Area), num(p.TailingFactor), num(p.TheoreticalPlate),
	}
}

func concatValues(parts ...[]any) []any {
	var out []any
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// str and num unwrap optional fields so absent values reach the sink as a
// plain nil rather than a typed nil pointer.
func str(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func num(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
