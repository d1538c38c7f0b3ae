package timeline

import (
	"sort"

	"github.com/johns/vibe-distill/internal/event"
)

const (
	gapNoticeMs    = 30 * 1000     // gaps shorter than this are never reported
	gapKeepMs      = 60 * 1000     // sub-minute gaps are noise unless a pause
	gapPauseMs     = 5 * 60 * 1000 // session_pause threshold
	pivotLookahead = 10            // events scanned for the next tool after a failure
)

// Decisions produces the merged, time-sorted decision stream for a session:
// timing gaps, tool pivots, phase boundaries, and agent lifecycle decisions
// from the (already subtree-filtered) links.
func Decisions(events []event.StoredEvent, links []event.LinkEvent, phases []PhaseInfo) []DecisionPoint {
	var out []DecisionPoint
	out = append(out, timingGaps(events)...)
	out = append(out, toolPivots(events)...)
	out = append(out, phaseBoundaries(phases)...)
	out = append(out, agentDecisions(links)...)

	sort.SliceStable(out, func(i, j int) bool { return out[i].T < out[j].T })
	return out
}

// timingGaps reports gaps over 30s between adjacent events. A gap is
// user_idle when a UserPromptSubmit falls strictly inside it, session_pause
// when over 5 minutes, agent_thinking otherwise. Gaps under a minute are
// dropped as noise unless they classified as session_pause — pause detection
// is never suppressed.
func timingGaps(events []event.StoredEvent) []DecisionPoint {
	prompts := make([]int64, 0)
	for _, e := range events {
		if e.Event == event.UserPromptSubmit {
			prompts = append(prompts, e.T)
		}
	}

	var out []DecisionPoint
	for i := 1; i < len(events); i++ {
		gap := events[i].T - events[i-1].T
		if gap <= gapNoticeMs {
			continue
		}

		class := GapAgentThinking
		if promptInside(prompts, events[i-1].T, events[i].T) {
			class = GapUserIdle
		} else if gap > gapPauseMs {
			class = GapSessionPause
		}

		if gap < gapKeepMs && class != GapSessionPause {
			continue
		}

		out = append(out, DecisionPoint{
			Type:           DecisionTimingGap,
			T:              events[i].T,
			GapMs:          gap,
			Classification: class,
		})
	}
	return out
}

func promptInside(prompts []int64, start, end int64) bool {
	for _, p := range prompts {
		if p > start && p < end {
			return true
		}
	}
	return false
}

// toolPivots reports failures followed by a switch to a different tool.
// Same-tool retries never pivot.
func toolPivots(events []event.StoredEvent) []DecisionPoint {
	var out []DecisionPoint
	for i, e := range events {
		if e.Event != event.PostToolUseFailure {
			continue
		}
		from := e.ToolName()
		if from == "" {
			continue
		}
		for j := i + 1; j < len(events) && j <= i+pivotLookahead; j++ {
			if events[j].Event != event.PreToolUse {
				continue
			}
			to := events[j].ToolName()
			if to != "" && to != from {
				out = append(out, DecisionPoint{
					Type:         DecisionToolPivot,
					T:            events[j].T,
					FromTool:     from,
					ToTool:       to,
					AfterFailure: true,
				})
			}
			break
		}
	}
	return out
}

// phaseBoundaries emits one decision per phase transition, skipping the
// first phase.
func phaseBoundaries(phases []PhaseInfo) []DecisionPoint {
	var out []DecisionPoint
	for i := 1; i < len(phases); i++ {
		out = append(out, DecisionPoint{
			Type:       DecisionPhaseBoundary,
			T:          phases[i].StartT,
			PhaseName:  phases[i].Name,
			PhaseIndex: i,
		})
	}
	return out
}

// agentDecisions derives lifecycle decisions straight from link events.
func agentDecisions(links []event.LinkEvent) []DecisionPoint {
	var out []DecisionPoint
	for _, l := range links {
		switch l.Event {
		case event.LinkSpawn:
			out = append(out, DecisionPoint{
				Type:      DecisionAgentSpawn,
				T:         l.T,
				AgentName: l.AgentName,
				AgentType: l.AgentType,
			})
		case event.LinkTask:
			if l.Action == "assign" {
				out = append(out, DecisionPoint{
					Type:   DecisionTaskDelegation,
					T:      l.T,
					TaskID: l.TaskID,
				})
			}
		case event.LinkTaskComplete:
			out = append(out, DecisionPoint{
				Type:      DecisionTaskCompletion,
				T:         l.T,
				TaskID:    l.TaskID,
				AgentName: l.AgentName,
			})
		}
	}
	return out
}
