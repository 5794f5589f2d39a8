package engine

import (
	"time"

	"github.com/adp-project/adp/internal/pipeline"
)

// StageSummary reports one executed stage.
type StageSummary struct {
	// ID is the stage's label: a declared step id, or "source",
	// "transform[0]", "sink" in legacy mode.
	ID string
	// Role is the stage's capability.
	Role pipeline.Role
	// Records is the number of records the stage emitted (for sources and
	// transforms) or consumed (for sinks).
	Records int
	// Artifact is the path or identifier a sink returned, if any.
	Artifact string
}

// RunSummary is the structured result of one pipeline execution.
type RunSummary struct {
	RunID    string
	Pipeline string
	Started  time.Time
	Duration time.Duration
	Stages   []StageSummary
}

// Artifacts returns the non-empty artifact identifiers produced by sinks,
// in execution order.
func (s *RunSummary) Artifacts() []string {
	var out []string
	for _, st := range s.Stages {
		if st.Artifact != "" {
			out = append(out, st.Artifact)
		}
	}
	return out
}
