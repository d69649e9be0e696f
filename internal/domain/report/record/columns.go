// Package record turns extracted report values into typed rows for the three
// result sinks: single-compound assay, multi-compound assay and dissolution.
package record

import "fmt"

// Column names shared by every sink
const (
	ColMachineID        = "machine_id"
	ColUID              = "u_id"
	ColUserID           = "user_id"
	ColTestCode         = "test_code"
	ColAcquiredBy       = "acquired_by"
	ColSampleNameHeader = "sample_name_header"
	ColSampleID         = "sample_id"
	ColTray             = "tray"
	ColVial             = "vial"
	ColInjectionVolume  = "injection_volume"
	ColDataFile         = "data_file"
	ColMethodFile       = "method_file"
	ColBatchFile        = "batch_file"
	ColReportFormatFile = "report_format_file"
	ColDateAcquired     = "date_acquired"
	ColDateProcessed    = "date_processed"
	ColCompoundName     = "compound_name"
	ColTitle            = "title"
	ColSampleName       = "sample_name"
	ColSampleIDInd      = "sample_id_ind"
	ColRetTime          = "ret_time"
	ColArea             = "area"
	ColTailingFactor    = "tailing_factor"
	ColTheoreticalPlate = "theoretical_plate"
	ColHeight           = "height"
	ColComponentType    = "component_type"
	ColProcessType      = "process_type"
	ColMediumName       = "medium_name"
	ColStage            = "stage"
	ColVesselID         = "vessel_id"
)

// Sink identifies a result table and its fixed column list
type Sink string

const (
	SinkAssaySingle Sink = "assay_single"
	SinkAssayMulti  Sink = "assay_multi"
	SinkDissolution Sink = "dissolution_raw"
)

var headerColumns = []string{
	ColMachineID, ColUID, ColUserID, ColTestCode, ColAcquiredBy, ColSampleNameHeader,
	ColSampleID, ColTray, ColVial, ColInjectionVolume, ColDataFile, ColMethodFile,
	ColBatchFile, ColReportFormatFile, ColDateAcquired, ColDateProcessed,
}

var peakColumns = []string{
	ColTitle, ColSampleName, ColSampleIDInd, ColRetTime, ColArea, ColTailingFactor, ColTheoreticalPlate,
}

var dissolutionColumns = []string{
	ColHeight, ColComponentType, ColProcessType, ColMediumName, ColStage, ColVesselID,
}

var sinkColumns = map[Sink][]string{
	SinkAssaySingle: concat(headerColumns, peakColumns),
	SinkAssayMulti:  concat(headerColumns, []string{ColCompoundName}, peakColumns),
	SinkDissolution: concat(headerColumns, []string{ColCompoundName}, peakColumns, dissolutionColumns),
}

// Columns returns the ordered insert column list of the sink.
// The returned slice is a copy.
func (s Sink) Columns() []string {
	cols, ok := sinkColumns[s]
	if !ok {
		return nil
	}
	return append([]string(nil), cols...)
}

// Validate reports whether s is a known sink.
func (s Sink) Validate() error {
	if _, ok := sinkColumns[s]; !ok {
		return fmt.Errorf("unknown sink %q", string(s))
	}
	return nil
}

func (s Sink) String() string { return string(s) }

func concat(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
