// Package team flattens an agent tree and folds each agent's artifacts into
// the session-level view.
package team

import (
	"github.com/johns/vibe-distill/internal/backtrack"
	"github.com/johns/vibe-distill/internal/filemap"
	"github.com/johns/vibe-distill/internal/stats"
)

// AgentNode is one agent in the session's spawn tree. Children are owned
// exclusively by their parent; nodes are never shared.
type AgentNode struct {
	SessionID     string      `json:"session_id"`
	AgentType     string      `json:"agent_type"`
	AgentName     string      `json:"agent_name,omitempty"`
	DurationMs    int64       `json:"duration_ms"`
	ToolCallCount int         `json:"tool_call_count"`
	Children      []*AgentNode `json:"children,omitempty"`

	// Optional per-agent artifacts; absent fields contribute nothing.
	Stats      *stats.Result       `json:"stats,omitempty"`
	FileMap    []filemap.Entry     `json:"file_map,omitempty"`
	EditChains []filemap.Chain     `json:"edit_chains,omitempty"`
	Backtracks []backtrack.Result  `json:"backtracks,omitempty"`
	Cost       *stats.CostEstimate `json:"cost_estimate,omitempty"`
	Reasoning  []string            `json:"reasoning,omitempty"`
}

// DisplayName is the label used when tagging an agent's contributions.
// Falls back to the agent type, never to a raw session id.
func (n *AgentNode) DisplayName() string {
	if n.AgentName != "" {
		return n.AgentName
	}
	return n.AgentType
}

// Metrics summarizes the team for the distilled session.
type Metrics struct {
	AgentCount        int   `json:"agent_count"`
	TotalAgentToolUse int   `json:"total_agent_tool_use"`
	TotalAgentTimeMs  int64 `json:"total_agent_time_ms"`
}
