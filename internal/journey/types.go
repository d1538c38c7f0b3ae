// Package journey chains related sessions into multi-session workflows and
// classifies the shape of each one.
package journey

import "github.com/johns/vibe-distill/internal/plandrift"

// PhaseType classifies what one session in a journey was for.
const (
	PhasePrime            = "prime"
	PhaseBrainstorm       = "brainstorm"
	PhasePlan             = "plan"
	PhaseBuild            = "build"
	PhaseReview           = "review"
	PhaseTest             = "test"
	PhaseCommit           = "commit"
	PhaseExploration      = "exploration"
	PhaseOrchestratedBld  = "orchestrated_build"
	PhaseAbort            = "abort"
	PhaseFreeform         = "freeform"
)

// Lifecycle types, derived from the set of phase types present.
const (
	LifecyclePrimePlanBuild = "prime-plan-build"
	LifecyclePrimeBuild     = "prime-build"
	LifecycleBuildOnly      = "build-only"
	LifecycleSingleSession  = "single-session"
	LifecycleAdHoc          = "ad-hoc"
)

// Phase is one session's role inside a journey.
type Phase struct {
	SessionID  string `json:"session_id"`
	Type       string `json:"type"`
	StartT     int64  `json:"start_t"`
	EndT       int64  `json:"end_t"`
	EventCount int    `json:"event_count"`
	ToolCalls  int    `json:"tool_calls"`
	Failures   int    `json:"failures"`
}

// Transition records the handoff between two consecutive phases.
type Transition struct {
	FromType string `json:"from_type"`
	ToType   string `json:"to_type"`
	T        int64  `json:"t"`
	GapMs    int64  `json:"gap_ms"`
}

// CumulativeStats sums activity across a whole journey.
type CumulativeStats struct {
	DurationMs int64 `json:"duration_ms"`
	Events     int   `json:"events"`
	ToolCalls  int   `json:"tool_calls"`
	Failures   int   `json:"failures"`
	Retries    int   `json:"retries"`
}

// Journey is an ordered chain of sessions forming one unit of work. Never
// mutated after construction.
type Journey struct {
	ID            string            `json:"id"`
	Phases        []Phase           `json:"phases"`
	Transitions   []Transition      `json:"transitions"`
	LifecycleType string            `json:"lifecycle_type"`
	Cumulative    CumulativeStats   `json:"cumulative_stats"`
	SpecRef       string            `json:"spec_ref,omitempty"`
	PlanDrift     *plandrift.Result `json:"plan_drift,omitempty"`
}
