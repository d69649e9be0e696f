package extract

import "strings"

// StandardType is the calibration standard variant of a dissolution report
type StandardType string

const (
	StandardCS StandardType = "CS"
	StandardSS StandardType = "SS"
)

// DetectionSource names the rule that classified a report
type DetectionSource string

const (
	SourceSampleID DetectionSource = "sample_id"
	SourceToken    DetectionSource = "token"
	SourceHint     DetectionSource = "hint"
	SourceDefault  DetectionSource = "default"
)

// Detection is the outcome of DetectStandardType
type Detection struct {
	Type   StandardType
	Source DetectionSource
}

var standardTypes = []StandardType{StandardCS, StandardSS}

// DetectStandardType classifies a standard-sample report as CS or SS.
// Rules are tried in order and CS always wins over SS within a rule:
// the value after the first "Sample ID" line, then a delimited CS/SS token on
// any line, then the operator-entered hint. Reports matching nothing are CS.
func DetectStandardType(lines Lines, hint string) Detection {
	if t, ok := fromSampleID(lines); ok {
		return Detection{Type: t, Source: SourceSampleID}
	}
	if t, ok := fromTokens(lines); ok {
		return Detection{Type: t, Source: SourceToken}
	}
	if t, ok := containsStandard(hint); ok {
		return Detection{Type: t, Source: SourceHint}
	}
	return Detection{Type: StandardCS, Source: SourceDefault}
}

func fromSampleID(lines Lines) (StandardType, bool) {
	for i, line := range lines {
		if !strings.Contains(line, LabelSampleID) || i+1 >= len(lines) {
			continue
		}
		return containsStandard(cleanValue(lines[i+1]))
	}
	return "", false
}

func fromTokens(lines Lines) (StandardType, bool) {
	for _, line := range lines {
		upper := strings.ToUpper(line)
		for _, t := range standardTypes {
			if hasToken(upper, string(t)) {
				return t, true
			}
		}
	}
	return "", false
}

func hasToken(line, token string) bool {
	return line == token ||
		strings.HasPrefix(line, token+" ") ||
		strings.HasSuffix(line, " "+token) ||
		strings.Contains(line, " "+token+" ")
}

func containsStandard(s string) (StandardType, bool) {
	upper := strings.ToUpper(s)
	for _, t := range standardTypes {
		if strings.Contains(upper, string(t)) {
			return t, true
		}
	}
	return "", false
}
