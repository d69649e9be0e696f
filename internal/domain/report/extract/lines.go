// Package extract locates labeled values and columnar sections in the plain-text
// line dumps produced from chromatography report PDFs.
// The reports carry no fixed schema: every value is found by scanning for a label
// line and reading what follows it.
package extract

import (
	"strconv"
	"strings"
)

// Lines is an ordered, 0-indexed sequence of non-empty trimmed lines in reading order.
type Lines []string

// Normalize flattens per-page text into Lines, dropping blank lines.
// An empty result means no text was extracted (image-only pages).
func Normalize(pages []string) Lines {
	lines := make(Lines, 0, 256)
	for _, page := range pages {
		for _, raw := range strings.Split(page, "\n") {
			line := strings.TrimSpace(raw)
			if line == "" {
				continue
			}
			lines = append(lines, line)
		}
	}
	return lines
}

// Header labels as printed by the instrument software
const (
	LabelAcquiredBy       = "Acquired by"
	LabelSampleName       = "Sample Name"
	LabelSampleID         = "Sample ID"
	LabelTray             = "Tray#"
	LabelVial             = "Vial#"
	LabelInjectionVolume  = "Injection Volume"
	LabelDataFile         = "Data File"
	LabelMethodFile       = "Method File"
	LabelBatchFile        = "Batch File"
	LabelReportFormatFile = "Report Format File"
	LabelDateAcquired     = "Date Acquired"
	LabelDateProcessed    = "Date Processed"
)

// Lookup returns the line following the first line exactly equal to label,
// with the leading ": " separator removed. Missing labels yield "".
func (l Lines) Lookup(label string) string {
	for i, line := range l {
		if line != label {
			continue
		}
		if i+1 >= len(l) {
			return ""
		}
		return cleanValue(l[i+1])
	}
	return ""
}

// LookupInt resolves label as an integer, 0 when absent or unparsable.
func (l Lines) LookupInt(label string) int {
	n, err := strconv.Atoi(l.Lookup(label))
	if err != nil {
		return 0
	}
	return n
}

// LookupFloat resolves label as a float, 0 when absent or unparsable.
func (l Lines) LookupFloat(label string) float64 {
	f, err := strconv.ParseFloat(l.Lookup(label), 64)
	if err != nil {
		return 0
	}
	return f
}

// CompoundName returns the document-level compound name: the text after the
// first ':' of the first line mentioning "Compound Name".
func (l Lines) CompoundName() string {
	for _, line := range l {
		if !strings.Contains(line, "Compound Name") {
			continue
		}
		_, name, found := strings.Cut(line, ":")
		if !found {
			return ""
		}
		return strings.TrimSpace(name)
	}
	return ""
}

// HeaderFields holds the scalar metadata printed once per report
type HeaderFields struct {
	AcquiredBy       string
	SampleName       string
	SampleID         string
	Tray             int
	Vial             int
	InjectionVolume  float64
	DataFile         string
	MethodFile       string
	BatchFile        string
	ReportFormatFile string
	DateAcquired     string
	DateProcessed    string
}

// ReadHeader resolves every document-level header field.
func ReadHeader(l Lines) HeaderFields {
	return HeaderFields{
		AcquiredBy:       l.Lookup(LabelAcquiredBy),
		SampleName:       l.Lookup(LabelSampleName),
		SampleID:         l.Lookup(LabelSampleID),
		Tray:             l.LookupInt(LabelTray),
		Vial:             l.LookupInt(LabelVial),
		InjectionVolume:  l.LookupFloat(LabelInjectionVolume),
		DataFile:         l.Lookup(LabelDataFile),
		MethodFile:       l.Lookup(LabelMethodFile),
		BatchFile:        l.Lookup(LabelBatchFile),
		ReportFormatFile: l.Lookup(LabelReportFormatFile),
		DateAcquired:     l.Lookup(LabelDateAcquired),
		DateProcessed:    l.Lookup(LabelDateProcessed),
	}
}

// cleanValue strips the ": " separator the report prints before values.
func cleanValue(s string) string {
	return strings.TrimSpace(strings.TrimLeft(s, ": "))
}
