package filemap

import (
	"sort"
	"strings"

	"github.com/johns/vibe-distill/internal/backtrack"
	"github.com/johns/vibe-distill/internal/event"
)

// Step is one edit attempt against a file.
type Step struct {
	ToolUseID string `json:"tool_use_id"`
	T         int64  `json:"t"`
	Tool      string `json:"tool"` // Edit or Write
	OldString string `json:"old_string,omitempty"`
	NewString string `json:"new_string,omitempty"`
	Failed    bool   `json:"failed,omitempty"`
}

// Chain is the ordered edit history of one file, with derived totals and the
// final fate of each attempt.
type Chain struct {
	FilePath      string `json:"file_path"`
	AgentName     string `json:"agent_name,omitempty"` // set by team aggregation
	Steps         []Step `json:"steps"`
	TotalEdits    int    `json:"total_edits"`
	TotalFailures int    `json:"total_failures"`
	TotalReads    int    `json:"total_reads"`
	EffortMs      int64  `json:"effort_ms"`
	HasBacktrack  bool   `json:"has_backtrack,omitempty"`

	SurvivingEditIDs []string `json:"surviving_edit_ids,omitempty"`
	AbandonedEditIDs []string `json:"abandoned_edit_ids,omitempty"`
}

// BuildChains reconstructs per-file edit chains. Backtracks are consulted
// only for the has_backtrack flag.
func BuildChains(events []event.StoredEvent, backtracks []backtrack.Result) []Chain {
	failedIDs := collectFailedIDs(events)
	byPath := make(map[string]*Chain)
	reads := make(map[string]int)

	for _, e := range events {
		if e.Event != event.PreToolUse {
			continue
		}
		tool := e.ToolName()
		path := e.FilePath()
		if path == "" {
			continue
		}

		switch tool {
		case "Read":
			reads[path]++
		case "Edit", "Write":
			c, ok := byPath[path]
			if !ok {
				c = &Chain{FilePath: path}
				byPath[path] = c
			}
			step := Step{
				ToolUseID: e.ToolUseID(),
				T:         e.T,
				Tool:      tool,
				OldString: e.InputString("old_string"),
				NewString: e.InputString("new_string"),
				Failed:    e.ToolUseID() != "" && failedIDs[e.ToolUseID()],
			}
			if tool == "Write" {
				step.NewString = e.InputString("content")
			}
			c.Steps = append(c.Steps, step)
		}
	}

	backtrackFiles := make(map[string]bool)
	for _, b := range backtracks {
		if b.FilePath != "" {
			backtrackFiles[b.FilePath] = true
		}
	}

	out := make([]Chain, 0, len(byPath))
	for path, c := range byPath {
		c.TotalReads = reads[path]
		for _, s := range c.Steps {
			if s.Failed {
				c.TotalFailures++
			} else {
				c.TotalEdits++
			}
		}
		if len(c.Steps) > 0 {
			c.EffortMs = c.Steps[len(c.Steps)-1].T - c.Steps[0].T
		}
		c.HasBacktrack = backtrackFiles[path]
		classifyFates(c)
		out = append(out, *c)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].FilePath < out[j].FilePath })
	return out
}

// classifyFates marks each step surviving or abandoned. Failed steps are
// abandoned outright; a successful step is abandoned when a later successful
// step's old content contains what it wrote — the later edit replaced it.
// The sets are disjoint by construction.
func classifyFates(c *Chain) {
	for i, s := range c.Steps {
		if s.ToolUseID == "" {
			continue
		}
		if s.Failed {
			c.AbandonedEditIDs = append(c.AbandonedEditIDs, s.ToolUseID)
			continue
		}
		superseded := false
		for j := i + 1; j < len(c.Steps); j++ {
			later := c.Steps[j]
			if later.Failed {
				continue
			}
			if s.NewString != "" && strings.Contains(later.OldString, s.NewString) {
				superseded = true
				break
			}
		}
		if superseded {
			c.AbandonedEditIDs = append(c.AbandonedEditIDs, s.ToolUseID)
		} else {
			c.SurvivingEditIDs = append(c.SurvivingEditIDs, s.ToolUseID)
		}
	}
}
