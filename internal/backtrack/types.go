// Package backtrack pattern-matches repeated failure/retry/struggle
// sequences in a session's event stream.
package backtrack

// Backtrack types. Values are wire-compatible with captured data.
const (
	TypeFailureRetry      = "failure_retry"
	TypeIterationStruggle = "iteration_struggle"
	TypeDebuggingLoop     = "debugging_loop"
)

// Result is one detected backtrack pattern.
type Result struct {
	Type         string   `json:"type"`
	ToolName     string   `json:"tool_name"`
	Attempts     int      `json:"attempts"`
	StartT       int64    `json:"start_t"`
	EndT         int64    `json:"end_t"`
	ToolUseIDs   []string `json:"tool_use_ids"`
	FilePath     string   `json:"file_path,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
	Command      string   `json:"command,omitempty"`
}
