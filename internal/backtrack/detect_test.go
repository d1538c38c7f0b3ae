package backtrack

import (
	"fmt"
	"testing"

	"github.com/johns/vibe-distill/internal/event"
)

var idSeq int

func nextID() string {
	idSeq++
	return fmt.Sprintf("tu_%03d", idSeq)
}

func pre(t int64, tool, id, path string) event.StoredEvent {
	data := map[string]interface{}{"tool_name": tool, "tool_use_id": id}
	if path != "" {
		data["tool_input"] = map[string]interface{}{"file_path": path}
	}
	return event.StoredEvent{T: t, Event: event.PreToolUse, SID: "s", Data: data}
}

func bash(t int64, id, cmd string) event.StoredEvent {
	return event.StoredEvent{T: t, Event: event.PreToolUse, SID: "s", Data: map[string]interface{}{
		"tool_name": "Bash", "tool_use_id": id,
		"tool_input": map[string]interface{}{"command": cmd},
	}}
}

func failed(t int64, tool, id, msg string) event.StoredEvent {
	return event.StoredEvent{T: t, Event: event.PostToolUseFailure, SID: "s", Data: map[string]interface{}{
		"tool_name": tool, "tool_use_id": id, "error": msg,
	}}
}

func ok(t int64, tool, id string) event.StoredEvent {
	return event.StoredEvent{T: t, Event: event.PostToolUse, SID: "s", Data: map[string]interface{}{
		"tool_name": tool, "tool_use_id": id,
	}}
}

func ofType(kind string, rs []Result) []Result {
	var out []Result
	for _, r := range rs {
		if r.Type == kind {
			out = append(out, r)
		}
	}
	return out
}

func TestDetect_FailureRetry(t *testing.T) {
	events := []event.StoredEvent{
		pre(1000, "Edit", "a", "/f.go"),
		failed(1500, "Edit", "a", "old_string not found"),
		pre(2000, "Edit", "b", "/f.go"),
		ok(2500, "Edit", "b"),
	}
	rs := ofType(TypeFailureRetry, Detect(events))
	if len(rs) != 1 {
		t.Fatalf("expected 1 failure_retry, got %d", len(rs))
	}
	r := rs[0]
	if r.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", r.Attempts)
	}
	if r.ToolName != "Edit" {
		t.Errorf("tool = %q", r.ToolName)
	}
	if r.StartT != 1500 || r.EndT != 2000 {
		t.Errorf("span = [%d,%d]", r.StartT, r.EndT)
	}
	if r.ErrorMessage != "old_string not found" {
		t.Errorf("error = %q", r.ErrorMessage)
	}
	if len(r.ToolUseIDs) != 2 {
		t.Errorf("ids = %v", r.ToolUseIDs)
	}
}

func TestDetect_FailureThenDifferentToolIsNotRetry(t *testing.T) {
	events := []event.StoredEvent{
		pre(1000, "Edit", "a", "/f.go"),
		failed(1500, "Edit", "a", "nope"),
		pre(2000, "Read", "b", "/f.go"),
	}
	rs := ofType(TypeFailureRetry, Detect(events))
	if len(rs) != 0 {
		t.Errorf("expected 0, got %+v", rs)
	}
}

func TestDetect_FailureRetryChain(t *testing.T) {
	events := []event.StoredEvent{
		pre(1000, "Write", "a", "/f.go"),
		failed(1100, "Write", "a", "e1"),
		pre(2000, "Write", "b", "/f.go"),
		failed(2100, "Write", "b", "e2"),
		pre(3000, "Write", "c", "/f.go"),
		ok(3100, "Write", "c"),
	}
	rs := ofType(TypeFailureRetry, Detect(events))
	if len(rs) != 1 {
		t.Fatalf("expected 1 chained retry, got %d: %+v", len(rs), rs)
	}
	if rs[0].Attempts != 3 {
		t.Errorf("attempts = %d, want 3", rs[0].Attempts)
	}
	if rs[0].EndT < rs[0].StartT {
		t.Errorf("end before start: %+v", rs[0])
	}
}

func TestDetect_IterationStruggle(t *testing.T) {
	events := []event.StoredEvent{
		pre(1000, "Edit", "a", "/pkg/x.go"),
		failed(1100, "Edit", "a", "mismatch"),
		pre(2000, "Read", "r", "/pkg/x.go"),
		pre(3000, "Edit", "b", "/pkg/x.go"),
		failed(3100, "Edit", "b", "mismatch again"),
		pre(4000, "Edit", "c", "/pkg/x.go"),
		ok(4100, "Edit", "c"),
	}
	rs := ofType(TypeIterationStruggle, Detect(events))
	if len(rs) != 1 {
		t.Fatalf("expected 1 struggle, got %d", len(rs))
	}
	r := rs[0]
	if r.FilePath != "/pkg/x.go" {
		t.Errorf("file = %q", r.FilePath)
	}
	if r.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", r.Attempts)
	}
	if r.ErrorMessage != "mismatch again" {
		t.Errorf("error = %q", r.ErrorMessage)
	}
	if r.StartT != 1000 || r.EndT != 4000 {
		t.Errorf("span = [%d,%d]", r.StartT, r.EndT)
	}
}

func TestDetect_TwoEditsIsNotAStruggle(t *testing.T) {
	events := []event.StoredEvent{
		pre(1000, "Edit", "a", "/x.go"),
		failed(1100, "Edit", "a", "e"),
		pre(2000, "Edit", "b", "/x.go"),
		failed(2100, "Edit", "b", "e"),
	}
	rs := ofType(TypeIterationStruggle, Detect(events))
	if len(rs) != 0 {
		t.Errorf("expected 0 struggles for 2 attempts, got %+v", rs)
	}
}

func TestDetect_DebuggingLoop(t *testing.T) {
	events := []event.StoredEvent{
		bash(1000, "a", "go test ./internal/..."),
		failed(1100, "Bash", "a", "FAIL"),
		bash(2000, "b", "go test ./internal/stats"),
		failed(2100, "Bash", "b", "FAIL"),
		bash(3000, "c", "go test -run TestX ./internal/stats"),
		failed(3100, "Bash", "c", "FAIL: TestX"),
	}
	rs := ofType(TypeDebuggingLoop, Detect(events))
	if len(rs) != 1 {
		t.Fatalf("expected 1 loop, got %d", len(rs))
	}
	r := rs[0]
	if r.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", r.Attempts)
	}
	if r.Command != "go test -run TestX ./internal/stats" {
		t.Errorf("command = %q", r.Command)
	}
	if r.ErrorMessage != "FAIL: TestX" {
		t.Errorf("error = %q", r.ErrorMessage)
	}
	if len(r.ToolUseIDs) != 3 {
		t.Errorf("ids = %v", r.ToolUseIDs)
	}
}

func TestDetect_DissimilarCommandsNoLoop(t *testing.T) {
	events := []event.StoredEvent{
		bash(1000, "a", "go test ./..."),
		failed(1100, "Bash", "a", "FAIL"),
		bash(2000, "b", "npm test"),
		failed(2100, "Bash", "b", "FAIL"),
		bash(3000, "c", "make check"),
		failed(3100, "Bash", "c", "FAIL"),
	}
	rs := ofType(TypeDebuggingLoop, Detect(events))
	if len(rs) != 0 {
		t.Errorf("expected 0 loops, got %+v", rs)
	}
}

func TestDetect_InterruptsIgnored(t *testing.T) {
	events := []event.StoredEvent{
		pre(1000, "Edit", "a", "/f.go"),
		{T: 1100, Event: event.PostToolUseFailure, SID: "s", Data: map[string]interface{}{
			"tool_name": "Edit", "tool_use_id": "a", "interrupted": true,
		}},
		pre(2000, "Edit", "b", "/f.go"),
	}
	if rs := Detect(events); len(rs) != 0 {
		t.Errorf("interrupt should not seed a backtrack: %+v", rs)
	}
}

func TestDetect_SpanInvariant(t *testing.T) {
	events := []event.StoredEvent{
		pre(1000, "Edit", "a", "/f.go"),
		failed(1100, "Edit", "a", "e"),
		pre(2000, "Edit", "b", "/f.go"),
		failed(2100, "Edit", "b", "e"),
		pre(3000, "Edit", "c", "/f.go"),
		failed(3100, "Edit", "c", "e"),
	}
	for _, r := range Detect(events) {
		if r.EndT < r.StartT {
			t.Errorf("end_t < start_t: %+v", r)
		}
	}
}

func TestDetect_Empty(t *testing.T) {
	if rs := Detect(nil); len(rs) != 0 {
		t.Errorf("expected no results, got %+v", rs)
	}
}
