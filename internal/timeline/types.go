// Package timeline segments a session's event stream into phases and
// decision points.
package timeline

// Decision point types. Values are wire-compatible with captured data.
const (
	DecisionTimingGap      = "timing_gap"
	DecisionToolPivot      = "tool_pivot"
	DecisionPhaseBoundary  = "phase_boundary"
	DecisionAgentSpawn     = "agent_spawn"
	DecisionTaskDelegation = "task_delegation"
	DecisionTaskCompletion = "task_completion"
)

// Timing gap classifications.
const (
	GapUserIdle      = "user_idle"
	GapSessionPause  = "session_pause"
	GapAgentThinking = "agent_thinking"
)

// DecisionPoint is one timestamped event of interest. Type discriminates
// which of the optional fields are meaningful.
type DecisionPoint struct {
	Type string `json:"type"`
	T    int64  `json:"t"`

	GapMs          int64  `json:"gap_ms,omitempty"`
	Classification string `json:"classification,omitempty"`

	FromTool     string `json:"from_tool,omitempty"`
	ToTool       string `json:"to_tool,omitempty"`
	AfterFailure bool   `json:"after_failure,omitempty"`

	PhaseName  string `json:"phase_name,omitempty"`
	PhaseIndex int    `json:"phase_index,omitempty"`

	AgentName string `json:"agent_name,omitempty"`
	AgentType string `json:"agent_type,omitempty"`
	TaskID    string `json:"task_id,omitempty"`
}

// PhaseInfo is one contiguous segment of a session. Phases never overlap and
// together cover the session's active span.
type PhaseInfo struct {
	Name        string   `json:"name"`
	StartT      int64    `json:"start_t"`
	EndT        int64    `json:"end_t"`
	ToolTypes   []string `json:"tool_types,omitempty"` // distinct tools, descending frequency
	Description string   `json:"description,omitempty"`
}
