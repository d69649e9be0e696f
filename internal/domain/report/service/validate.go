package service

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/pipeline"
	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/record"
	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/stage"
)

// Request is what the operator fills in before a batch
type Request struct {
	Mode      pipeline.Mode
	MachineID string
	UID       string
	UserID    string
	TestCode  string

	// Non-standard dissolution only
	ComponentType string
	Release       stage.ReleaseType
	Stage         string
	Medium        string

	// DryRun extracts without persisting or auditing.
	DryRun bool
}

// ValidationError lists the operator fields that block the batch
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks the request before any file is read.
func Validate(req Request) error {
	if _, err := pipeline.ProfileFor(req.Mode); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	v := &ValidationError{}
	require := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			v.Missing = append(v.Missing, field)
		}
	}

	if req.Mode.IsDissolution() {
		require(record.ColTestCode, req.TestCode)
	}
	require(record.ColUID, req.UID)
	require(record.ColUserID, req.UserID)

	if req.Mode == pipeline.DissolutionNonStandard {
		require(record.ColComponentType, req.ComponentType)
		require("release_type", string(req.Release))
		require(record.ColStage, req.Stage)

		if req.Release != "" && req.Stage != "" {
			var sel stage.Selection
			sel.SetRelease(req.Release)
			if len(sel.Options()) == 0 {
				v.Invalid = append(v.Invalid, "release_type")
			} else if err := sel.SetStage(req.Stage); err != nil {
				v.Invalid = append(v.Invalid, record.ColStage)
			}
		}
	}

	if len(v.Missing) > 0 || len(v.Invalid) > 0 {
		return v
	}
	return nil
}

// pipelineRequest maps the operator request onto the extraction inputs.
func (r Request) pipelineRequest() pipeline.Request {
	return pipeline.Request{
		Mode: r.Mode,
		Inputs: record.Inputs{
			MachineID: r.MachineID,
			UID:       r.UID,
			UserID:    r.UserID,
			TestCode:  r.TestCode,
		},
		Dissolution: record.Dissolution{
			ComponentType: r.ComponentType,
			ProcessType:   string(r.Release),
			MediumName:    r.Medium,
			Stage:         strings.ToUpper(strings.TrimSpace(r.Stage)),
		},
	}
}
