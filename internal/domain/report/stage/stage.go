// Package stage maps a dissolution release type to its stage codes and tracks
// the stage picked for a non-standard run.
package stage

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ReleaseType is the drug-release profile of a dissolution run
type ReleaseType string

const (
	Immediate ReleaseType = "immediate"
	Delayed   ReleaseType = "delayed"
	Extended  ReleaseType = "extended"
)

var ErrUnknownStage = errors.New("stage not valid for release type")

var stagesByRelease = map[ReleaseType][]string{
	Immediate: {"S1", "S2", "S3"},
	Delayed:   {"V1", "V2", "V3"},
	Extended:  {"L1", "L2", "L3"},
}

// ParseReleaseType accepts the release type case-insensitively.
func ParseReleaseType(s string) (ReleaseType, error) {
	r := ReleaseType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := stagesByRelease[r]; !ok {
		return "", fmt.Errorf("unknown release type %q", s)
	}
	return r, nil
}

// Stages returns the stage codes of r, or nil for an unknown release type.
func (r ReleaseType) Stages() []string {
	return slices.Clone(stagesByRelease[r])
}

// Selection is the release type and stage chosen for a run
type Selection struct {
	release ReleaseType
	stage   string
}

// SetRelease switches the release type and resets the stage to its first
// code. An unknown release type clears the selection.
func (s *Selection) SetRelease(r ReleaseType) {
	stages := r.Stages()
	if len(stages) == 0 {
		s.release, s.stage = "", ""
		return
	}
	s.release, s.stage = r, stages[0]
}

// SetStage picks a stage of the current release type.
func (s *Selection) SetStage(code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !slices.Contains(s.release.Stages(), code) {
		return fmt.Errorf("%w: %q (release %q)", ErrUnknownStage, code, s.release)
	}
	s.stage = code
	return nil
}

func (s Selection) Release() ReleaseType { return s.release }
func (s Selection) Stage() string        { return s.stage }
func (s Selection) Options() []string    { return s.release.Stages() }
