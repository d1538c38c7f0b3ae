package diffattr

import (
	"testing"

	"github.com/johns/vibe-distill/internal/filemap"
)

const sampleDiff = `diff --git a/src/a.go b/src/a.go
index 1111111..2222222 100644
--- a/src/a.go
+++ b/src/a.go
@@ -10,4 +10,4 @@ func main() {
 	keep := true
-	old := 1
+	shiny := 2
 	done()
\ No newline at end of file
`

func TestParseUnifiedDiff(t *testing.T) {
	lines := ParseUnifiedDiff(sampleDiff)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %+v", len(lines), lines)
	}
	if lines[0].Type != LineContext || lines[0].LineNumber != 10 {
		t.Errorf("line 0 = %+v", lines[0])
	}
	if lines[1].Type != LineRemove || lines[1].LineNumber != 11 {
		t.Errorf("line 1 = %+v", lines[1])
	}
	if lines[2].Type != LineAdd || lines[2].LineNumber != 11 {
		t.Errorf("line 2 = %+v", lines[2])
	}
	if lines[2].Content != "\tshiny := 2" {
		t.Errorf("add content = %q", lines[2].Content)
	}
	if lines[3].Type != LineContext || lines[3].LineNumber != 12 {
		t.Errorf("line 3 = %+v", lines[3])
	}
}

func TestParseUnifiedDiff_Empty(t *testing.T) {
	if lines := ParseUnifiedDiff(""); len(lines) != 0 {
		t.Errorf("expected no lines, got %+v", lines)
	}
}

func chainWith(path, agent string, t int64, oldStr, newStr string) filemap.Chain {
	return filemap.Chain{
		FilePath:  path,
		AgentName: agent,
		Steps: []filemap.Step{
			{ToolUseID: "id", T: t, Tool: "Edit", OldString: oldStr, NewString: newStr},
		},
	}
}

func TestAttribute_AddAndRemove(t *testing.T) {
	chains := []filemap.Chain{
		chainWith("src/a.go", "builder", 1000, "old := 1", "shiny := 2"),
	}
	idx := BuildEditIndex(chains, "")
	attr := Attribute("src/a.go", sampleDiff, idx)

	if attr.TotalAdditions != 1 || attr.TotalDeletions != 1 {
		t.Errorf("totals = +%d -%d", attr.TotalAdditions, attr.TotalDeletions)
	}
	for _, l := range attr.Lines {
		switch l.Type {
		case LineAdd:
			if l.AgentName != "builder" {
				t.Errorf("add line agent = %q, want builder", l.AgentName)
			}
		case LineRemove:
			if l.AgentName != "builder" {
				t.Errorf("remove line agent = %q, want builder", l.AgentName)
			}
		case LineContext:
			if l.AgentName != "" {
				t.Errorf("context line should not be attributed: %+v", l)
			}
		}
	}
}

func TestAttribute_LatestMatchWins(t *testing.T) {
	chains := []filemap.Chain{
		chainWith("src/a.go", "early", 1000, "", "shiny := 2"),
		chainWith("src/a.go", "late", 2000, "", "shiny := 2"),
	}
	idx := BuildEditIndex(chains, "")
	attr := Attribute("src/a.go", sampleDiff, idx)
	for _, l := range attr.Lines {
		if l.Type == LineAdd && l.AgentName != "late" {
			t.Errorf("agent = %q, want late", l.AgentName)
		}
	}
}

func TestAttribute_FailedStepsExcluded(t *testing.T) {
	chains := []filemap.Chain{{
		FilePath:  "src/a.go",
		AgentName: "builder",
		Steps: []filemap.Step{
			{ToolUseID: "id", T: 1000, Tool: "Edit", NewString: "shiny := 2", Failed: true},
		},
	}}
	idx := BuildEditIndex(chains, "")
	attr := Attribute("src/a.go", sampleDiff, idx)
	for _, l := range attr.Lines {
		if l.AgentName != "" {
			t.Errorf("failed edit content must not attribute: %+v", l)
		}
	}
}

func TestAttribute_UnmatchedLinesUnattributed(t *testing.T) {
	idx := BuildEditIndex(nil, "")
	attr := Attribute("src/a.go", sampleDiff, idx)
	for _, l := range attr.Lines {
		if l.AgentName != "" {
			t.Errorf("no chains, no attribution: %+v", l)
		}
	}
}

func TestAttributeAll_RelativizesPaths(t *testing.T) {
	chains := []filemap.Chain{
		chainWith("/proj/src/a.go", "builder", 1000, "old := 1", "shiny := 2"),
	}
	diffs := map[string]string{"src/a.go": sampleDiff}
	attrs := AttributeAll(diffs, chains, "/proj")
	if len(attrs) != 1 {
		t.Fatalf("expected 1 attribution, got %d", len(attrs))
	}
	if attrs[0].FilePath != "src/a.go" {
		t.Errorf("path = %q", attrs[0].FilePath)
	}
	found := false
	for _, l := range attrs[0].Lines {
		if l.Type == LineAdd && l.AgentName == "builder" {
			found = true
		}
	}
	if !found {
		t.Error("expected attributed add line")
	}
}

func TestCaptureDiffs_DegradesToEmpty(t *testing.T) {
	diffs := CaptureDiffs("/nonexistent-dir-for-sure", "abc123", []string{"a.go"})
	if diffs["a.go"] != "" {
		t.Errorf("expected empty diff on git failure, got %q", diffs["a.go"])
	}
}
