package distill

import (
	"strings"
	"testing"

	"github.com/johns/vibe-distill/internal/event"
	"github.com/johns/vibe-distill/internal/filemap"
	"github.com/johns/vibe-distill/internal/stats"
	"github.com/johns/vibe-distill/internal/team"
)

func toolEvent(t int64, kind, tool, id, path string) event.StoredEvent {
	data := map[string]interface{}{"tool_name": tool}
	if id != "" {
		data["tool_use_id"] = id
	}
	if path != "" {
		data["tool_input"] = map[string]interface{}{"file_path": path}
	}
	return event.StoredEvent{T: t, Event: kind, SID: "s1", Data: data}
}

func soloEvents() []event.StoredEvent {
	return []event.StoredEvent{
		{T: 1000, Event: event.SessionStart, SID: "s1",
			Context: &event.SessionStartContext{Model: "claude-sonnet-4-5", CWD: "/proj"}},
		toolEvent(2000, event.PreToolUse, "Read", "r1", "/proj/src/a.go"),
		toolEvent(3000, event.PreToolUse, "Edit", "e1", "/proj/src/a.go"),
		toolEvent(3500, event.PostToolUseFailure, "Edit", "e1", ""),
		toolEvent(4000, event.PreToolUse, "Edit", "e2", "/proj/src/a.go"),
	}
}

func TestDistill_Solo(t *testing.T) {
	ds := Distill(Input{SessionID: "s1", Events: soloEvents()})

	if ds.SessionID != "s1" {
		t.Errorf("session id = %q", ds.SessionID)
	}
	if ds.Stats.ToolCalls != 3 || ds.Stats.Failures != 1 {
		t.Errorf("stats = %+v", ds.Stats)
	}
	if len(ds.FileMap) != 1 || ds.FileMap[0].FilePath != "/proj/src/a.go" {
		t.Errorf("file map = %+v", ds.FileMap)
	}
	if len(ds.EditChains) != 1 || len(ds.EditChains[0].Steps) != 2 {
		t.Errorf("chains = %+v", ds.EditChains)
	}
	if ds.TeamMetrics != nil || ds.CommunicationGraph != nil {
		t.Error("solo session must carry no team artifacts")
	}
	if !strings.Contains(ds.Summary, "3 tool calls") {
		t.Errorf("summary = %q", ds.Summary)
	}
}

func TestDistill_TeamFold(t *testing.T) {
	links := []event.LinkEvent{
		{T: 1500, Event: event.LinkSpawn, ParentSID: "s1", ChildSID: "c1",
			AgentName: "builder", AgentType: "builder"},
		{T: 2000, Event: event.LinkTask, SID: "s1", TaskID: "t1", Action: "assign"},
		{T: 2500, Event: event.LinkMsgSend, SID: "s1", From: "lead", To: "builder", Text: "go"},
		{T: 9000, Event: event.LinkStop, SID: "c1"},
		// Another session's traffic must be filtered out.
		{T: 100, Event: event.LinkSpawn, ParentSID: "other", ChildSID: "x1", AgentName: "ghost"},
	}
	agents := []*team.AgentNode{{
		SessionID: "c1", AgentType: "builder", AgentName: "builder",
		ToolCallCount: 5, DurationMs: 7000,
		Stats: &stats.Result{ToolCalls: 5, Failures: 1,
			EventCounts: map[string]int{}, ToolCounts: map[string]int{"Edit": 5},
			UniqueFiles: []string{"/proj/src/b.go"}},
		FileMap:    []filemap.Entry{{FilePath: "/proj/src/b.go", Edits: 5, Source: filemap.SourceTool}},
		EditChains: []filemap.Chain{{FilePath: "/proj/src/b.go"}},
	}}

	ds := Distill(Input{SessionID: "s1", Events: soloEvents(), Links: links, Agents: agents})

	if ds.Stats.ToolCalls != 8 || ds.Stats.Failures != 2 {
		t.Errorf("merged stats = %+v", ds.Stats)
	}
	if ds.TeamMetrics == nil || ds.TeamMetrics.AgentCount != 1 || ds.TeamMetrics.TotalAgentToolUse != 5 {
		t.Errorf("team metrics = %+v", ds.TeamMetrics)
	}
	if len(ds.FileMap) != 2 {
		t.Errorf("merged file map = %+v", ds.FileMap)
	}
	if len(ds.EditChains) != 2 {
		t.Fatalf("chains = %+v", ds.EditChains)
	}
	if ds.EditChains[1].AgentName != "builder" {
		t.Errorf("agent chain tag = %q", ds.EditChains[1].AgentName)
	}
	if len(ds.CommunicationGraph) != 1 || ds.CommunicationGraph[0].Count != 1 {
		t.Errorf("comm graph = %+v", ds.CommunicationGraph)
	}
	if len(ds.AgentLifetimes) != 1 {
		t.Fatalf("lifetimes = %+v", ds.AgentLifetimes)
	}
	lt := ds.AgentLifetimes[0]
	if lt.AgentName != "builder" || lt.SpawnT != 1500 || lt.StopT != 9000 {
		t.Errorf("lifetime = %+v", lt)
	}
	if len(ds.CommSequence) != 1 || ds.CommSequence[0].Text != "go" {
		t.Errorf("sequence = %+v", ds.CommSequence)
	}
}

func TestDistill_PlanDrift(t *testing.T) {
	spec := "## Files\n- `src/a.go`\n"
	ds := Distill(Input{
		SessionID: "s1", Events: soloEvents(),
		ProjectDir: "/proj", SpecRef: "plan.md", SpecText: spec,
	})
	if ds.PlanDrift == nil {
		t.Fatal("expected plan drift")
	}
	if ds.PlanDrift.DriftScore != 0 {
		t.Errorf("drift = %+v", ds.PlanDrift)
	}
}

func TestDistill_EmptySession(t *testing.T) {
	ds := Distill(Input{SessionID: "s1"})
	if ds.Stats.ToolCalls != 0 || len(ds.FileMap) != 0 || len(ds.EditChains) != 0 {
		t.Errorf("empty distill = %+v", ds)
	}
	if ds.PlanDrift != nil {
		t.Error("no spec, no drift")
	}
}

func TestBuildCommGraph_CountsPairs(t *testing.T) {
	links := []event.LinkEvent{
		{T: 1, Event: event.LinkMsgSend, From: "a", To: "b"},
		{T: 2, Event: event.LinkMsgSend, From: "a", To: "b"},
		{T: 3, Event: event.LinkMsgSend, From: "b", To: "a"},
	}
	edges := BuildCommGraph(links)
	if len(edges) != 2 {
		t.Fatalf("edges = %+v", edges)
	}
	if edges[0].From != "a" || edges[0].Count != 2 {
		t.Errorf("edge 0 = %+v", edges[0])
	}
	if edges[1].From != "b" || edges[1].Count != 1 {
		t.Errorf("edge 1 = %+v", edges[1])
	}
}

func TestLifetimes_UnstoppedAgent(t *testing.T) {
	links := []event.LinkEvent{
		{T: 100, Event: event.LinkSpawn, ParentSID: "s1", ChildSID: "c1", AgentName: "runner"},
	}
	lts := Lifetimes(links)
	if len(lts) != 1 || lts[0].StopT != 0 {
		t.Errorf("lifetimes = %+v", lts)
	}
}

func TestSummarize(t *testing.T) {
	st := stats.Result{ToolCalls: 4, Failures: 1, UniqueFiles: []string{"a.go"}, DurationMs: 90 * 1000}
	got := summarize(st, nil, nil)
	for _, want := range []string{"4 tool calls", "(1 failed)", "1 file", "1m"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary %q missing %q", got, want)
		}
	}
}
