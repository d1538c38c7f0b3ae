package stats

import (
	"testing"

	"github.com/johns/vibe-distill/internal/event"
)

func pre(t int64, tool, path string) event.StoredEvent {
	data := map[string]interface{}{"tool_name": tool, "tool_use_id": "id"}
	if path != "" {
		data["tool_input"] = map[string]interface{}{"file_path": path}
	}
	return event.StoredEvent{T: t, Event: event.PreToolUse, SID: "s1", Data: data}
}

func fail(t int64, tool string, interrupted bool) event.StoredEvent {
	return event.StoredEvent{T: t, Event: event.PostToolUseFailure, SID: "s1", Data: map[string]interface{}{
		"tool_name": tool, "interrupted": interrupted,
	}}
}

func TestExtract_Counts(t *testing.T) {
	events := []event.StoredEvent{
		{T: 1000, Event: event.SessionStart, SID: "s1",
			Context: &event.SessionStartContext{Model: "claude-sonnet-4-20250514"}},
		pre(2000, "Read", "/src/a.go"),
		pre(3000, "Edit", "/src/a.go"),
		fail(3500, "Edit", false),
		pre(4000, "Bash", ""),
		fail(4500, "Bash", true), // interrupt, not a failure
	}

	r := Extract(events)
	if r.ToolCalls != 3 {
		t.Errorf("tool calls = %d, want 3", r.ToolCalls)
	}
	if r.Failures != 1 {
		t.Errorf("failures = %d, want 1", r.Failures)
	}
	if r.FailureRate != 1.0/3.0 {
		t.Errorf("failure rate = %v", r.FailureRate)
	}
	if len(r.UniqueFiles) != 1 || r.UniqueFiles[0] != "/src/a.go" {
		t.Errorf("unique files = %v", r.UniqueFiles)
	}
	if r.ToolCounts["Edit"] != 1 || r.ToolCounts["Read"] != 1 {
		t.Errorf("tool counts = %v", r.ToolCounts)
	}
	if r.SessionID != "s1" {
		t.Errorf("session id = %q", r.SessionID)
	}
}

func TestExtract_FailureRateZeroCalls(t *testing.T) {
	r := Extract([]event.StoredEvent{{T: 1, Event: event.SessionStart, SID: "s"}})
	if r.FailureRate != 0 {
		t.Errorf("failure rate = %v, want 0", r.FailureRate)
	}
}

func TestExtract_Empty(t *testing.T) {
	r := Extract(nil)
	if r.ToolCalls != 0 || r.Failures != 0 || r.DurationMs != 0 || r.Cost != nil {
		t.Errorf("unexpected non-zero result: %+v", r)
	}
}

func TestIdentifyModel_Fallbacks(t *testing.T) {
	// data.model beats ConfigChange
	events := []event.StoredEvent{
		{T: 1, Event: event.ConfigChange, Data: map[string]interface{}{
			"config": map[string]interface{}{"model": "claude-haiku-4-5"},
		}},
		{T: 2, Event: event.PreToolUse, Data: map[string]interface{}{"model": "claude-opus-4-1"}},
	}
	if got := identifyModel(events); got != "claude-opus-4-1" {
		t.Errorf("model = %q, want claude-opus-4-1", got)
	}

	// ConfigChange alone
	events = events[:1]
	if got := identifyModel(events); got != "claude-haiku-4-5" {
		t.Errorf("model = %q, want claude-haiku-4-5", got)
	}

	if got := identifyModel(nil); got != "" {
		t.Errorf("model = %q, want empty", got)
	}
}

func TestEstimateCost_RealUsagePreferred(t *testing.T) {
	events := []event.StoredEvent{
		{T: 1, Event: event.SessionStart, Context: &event.SessionStartContext{Model: "claude-sonnet-4-20250514"}},
		{T: 2, Event: event.PostToolUse, Data: map[string]interface{}{
			"usage": map[string]interface{}{"input_tokens": float64(1000000), "output_tokens": float64(0)},
		}},
	}
	r := Extract(events)
	if r.Cost == nil {
		t.Fatal("expected cost estimate")
	}
	if r.Cost.IsEstimated {
		t.Error("cost should not be tagged estimated when real usage exists")
	}
	if r.Cost.USD != 3.0 {
		t.Errorf("usd = %v, want 3.0", r.Cost.USD)
	}
}

func TestEstimateCost_FallbackHeuristic(t *testing.T) {
	events := []event.StoredEvent{
		{T: 1, Event: event.SessionStart, Context: &event.SessionStartContext{Model: "claude-opus-4-1"}},
		pre(2000, "Read", ""),
	}
	r := Extract(events)
	if r.Cost == nil {
		t.Fatal("expected cost estimate")
	}
	if !r.Cost.IsEstimated {
		t.Error("cost should be tagged estimated without usage data")
	}
	if r.Cost.Usage.InputTokens == 0 || r.Cost.Usage.OutputTokens == 0 {
		t.Errorf("estimated usage should be non-zero: %+v", r.Cost.Usage)
	}
}

func TestEstimateCost_UnknownModel(t *testing.T) {
	events := []event.StoredEvent{
		{T: 1, Event: event.SessionStart, Context: &event.SessionStartContext{Model: "gpt-5"}},
		pre(2000, "Read", ""),
	}
	r := Extract(events)
	if r.Cost != nil {
		t.Errorf("unknown model should yield no estimate, got %+v", r.Cost)
	}
}

func TestExtract_EffectiveDuration(t *testing.T) {
	events := []event.StoredEvent{
		{T: 0, Event: event.SessionStart, SID: "s"},
		pre(1000, "Read", ""),
		pre(901000, "Read", ""), // 15 min gap
	}
	r := Extract(events)
	if r.WallMs != 901000 {
		t.Errorf("wall = %d", r.WallMs)
	}
	if r.IdleGapsMs != 900000 {
		t.Errorf("idle = %d", r.IdleGapsMs)
	}
	if r.DurationMs != 1000 {
		t.Errorf("effective = %d", r.DurationMs)
	}
}
