// Package distill assembles one session's analysis artifacts into a single
// immutable record.
package distill

import (
	"github.com/johns/vibe-distill/internal/backtrack"
	"github.com/johns/vibe-distill/internal/diffattr"
	"github.com/johns/vibe-distill/internal/filemap"
	"github.com/johns/vibe-distill/internal/plandrift"
	"github.com/johns/vibe-distill/internal/stats"
	"github.com/johns/vibe-distill/internal/team"
	"github.com/johns/vibe-distill/internal/timeline"
)

// DistilledSession is the one-per-session output document. Built once per
// distill run, never mutated afterwards, persisted keyed by session id.
type DistilledSession struct {
	SessionID  string                   `json:"session_id"`
	Stats      stats.Result             `json:"stats"`
	Backtracks []backtrack.Result       `json:"backtracks"`
	Decisions  []timeline.DecisionPoint `json:"decisions"`
	FileMap    []filemap.Entry          `json:"file_map"`
	EditChains []filemap.Chain          `json:"edit_chains"`
	Timeline   []timeline.PhaseInfo     `json:"timeline,omitempty"`
	Summary    string                   `json:"summary"`

	TeamMetrics        *team.Metrics                  `json:"team_metrics,omitempty"`
	Agents             []*team.AgentNode              `json:"agents,omitempty"`
	PlanDrift          *plandrift.Result              `json:"plan_drift,omitempty"`
	DiffAttributions   []diffattr.FileDiffAttribution `json:"diff_attributions,omitempty"`
	CommunicationGraph []CommEdge                     `json:"communication_graph,omitempty"`
	AgentLifetimes     []AgentLifetime                `json:"agent_lifetimes,omitempty"`
	CommSequence       []Message                      `json:"comm_sequence,omitempty"`
}

// CommEdge counts messages sent along one from→to pair.
type CommEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Count int    `json:"count"`
}

// AgentLifetime is one agent's spawn→stop span. StopT is zero when the log
// never recorded a stop.
type AgentLifetime struct {
	AgentName string `json:"agent_name"`
	AgentType string `json:"agent_type,omitempty"`
	SessionID string `json:"session_id"`
	SpawnT    int64  `json:"spawn_t"`
	StopT     int64  `json:"stop_t,omitempty"`
}

// Message is one inter-agent message, in send order.
type Message struct {
	T    int64  `json:"t"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text,omitempty"`
}
