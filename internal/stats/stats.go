// Package stats reduces one session's event stream to counts, histograms,
// duration, and a cost estimate in a single pass.
package stats

import (
	"sort"

	"github.com/johns/vibe-distill/internal/event"
)

// Result holds the extracted statistics for one session.
type Result struct {
	SessionID   string         `json:"session_id"`
	Model       string         `json:"model,omitempty"`
	EventCounts map[string]int `json:"event_counts"`
	ToolCounts  map[string]int `json:"tool_counts"`
	ToolCalls   int            `json:"tool_calls"`
	Failures    int            `json:"failures"`
	FailureRate float64        `json:"failure_rate"`
	UniqueFiles []string       `json:"unique_files,omitempty"`

	DurationMs int64 `json:"duration_ms"` // effective, idle gaps excluded
	WallMs     int64 `json:"wall_ms"`
	IdleGapsMs int64 `json:"idle_gaps_ms"`
	EventCount int   `json:"event_count"`

	Cost *CostEstimate `json:"cost_estimate,omitempty"`
}

// Extract computes statistics from an ordered event list.
func Extract(events []event.StoredEvent) Result {
	r := Result{
		EventCounts: make(map[string]int),
		ToolCounts:  make(map[string]int),
		EventCount:  len(events),
	}

	files := make(map[string]bool)
	var usage Usage
	sawUsage := false

	for _, e := range events {
		if r.SessionID == "" && e.SID != "" {
			r.SessionID = e.SID
		}
		r.EventCounts[e.Event]++

		switch e.Event {
		case event.PreToolUse:
			r.ToolCalls++
			if name := e.ToolName(); name != "" {
				r.ToolCounts[name]++
			}
			if p := e.FilePath(); p != "" {
				files[p] = true
			}
		case event.PostToolUseFailure:
			if !e.Interrupted() {
				r.Failures++
			}
		}

		if u, ok := usageFromEvent(e); ok {
			usage.Add(u)
			sawUsage = true
		}
	}

	r.FailureRate = float64(r.Failures) / float64(maxInt(r.ToolCalls, 1))

	for p := range files {
		r.UniqueFiles = append(r.UniqueFiles, p)
	}
	sort.Strings(r.UniqueFiles)

	d := event.Duration(event.Timestamps(events))
	r.DurationMs = d.EffectiveMs
	r.WallMs = d.WallMs
	r.IdleGapsMs = d.IdleGapsMs

	r.Model = identifyModel(events)
	r.Cost = estimateCost(r.Model, usage, sawUsage, r.ToolCalls, len(events))

	return r
}

// identifyModel falls through four sources in order: the SessionStart
// context, any event's data.model, a ConfigChange's nested config, then "".
func identifyModel(events []event.StoredEvent) string {
	for _, e := range events {
		if e.Event == event.SessionStart && e.Context != nil && e.Context.Model != "" {
			return e.Context.Model
		}
	}
	for _, e := range events {
		if m, ok := e.Data["model"].(string); ok && m != "" {
			return m
		}
	}
	for _, e := range events {
		if e.Event != event.ConfigChange {
			continue
		}
		cfg, ok := e.Data["config"].(map[string]interface{})
		if !ok {
			continue
		}
		if m, ok := cfg["model"].(string); ok && m != "" {
			return m
		}
	}
	return ""
}

// usageFromEvent pulls real token usage off an event if present.
func usageFromEvent(e event.StoredEvent) (Usage, bool) {
	raw, ok := e.Data["usage"].(map[string]interface{})
	if !ok {
		return Usage{}, false
	}
	u := Usage{
		InputTokens:         intField(raw, "input_tokens"),
		OutputTokens:        intField(raw, "output_tokens"),
		CacheReadTokens:     intField(raw, "cache_read_input_tokens"),
		CacheCreationTokens: intField(raw, "cache_creation_input_tokens"),
	}
	if u == (Usage{}) {
		return Usage{}, false
	}
	return u, true
}

func intField(m map[string]interface{}, key string) int {
	if f, ok := m[key].(float64); ok {
		return int(f)
	}
	return 0
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
