// Package diffattr parses unified diffs and attributes changed lines to the
// agents whose edits most plausibly produced them.
package diffattr

import (
	"strconv"
	"strings"
)

// Diff line types.
const (
	LineAdd     = "add"
	LineRemove  = "remove"
	LineContext = "context"
)

// DiffLine is one parsed line of a unified diff.
type DiffLine struct {
	Type       string `json:"type"`
	Content    string `json:"content"`
	LineNumber int    `json:"line_number,omitempty"`
	AgentName  string `json:"agent_name,omitempty"`
}

// FileDiffAttribution is the parsed, attributed diff for one file.
type FileDiffAttribution struct {
	FilePath       string     `json:"file_path"`
	Lines          []DiffLine `json:"lines"`
	TotalAdditions int        `json:"total_additions"`
	TotalDeletions int        `json:"total_deletions"`
}

// ParseUnifiedDiff turns raw unified diff text into typed lines. Old and new
// line numbers are tracked from hunk headers; file headers and
// no-newline markers are skipped.
func ParseUnifiedDiff(text string) []DiffLine {
	var lines []DiffLine
	oldLine, newLine := 0, 0

	for _, raw := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(raw, "@@"):
			oldLine, newLine = parseHunkHeader(raw)
		case strings.HasPrefix(raw, "--- ") || strings.HasPrefix(raw, "+++ "),
			strings.HasPrefix(raw, "diff "),
			strings.HasPrefix(raw, "index "),
			strings.HasPrefix(raw, "new file"),
			strings.HasPrefix(raw, "deleted file"),
			strings.HasPrefix(raw, `\ No newline`):
			// header noise
		case strings.HasPrefix(raw, "+"):
			lines = append(lines, DiffLine{Type: LineAdd, Content: raw[1:], LineNumber: newLine})
			newLine++
		case strings.HasPrefix(raw, "-"):
			lines = append(lines, DiffLine{Type: LineRemove, Content: raw[1:], LineNumber: oldLine})
			oldLine++
		case strings.HasPrefix(raw, " "):
			lines = append(lines, DiffLine{Type: LineContext, Content: raw[1:], LineNumber: newLine})
			oldLine++
			newLine++
		}
	}
	return lines
}

// parseHunkHeader reads "@@ -oldStart,len +newStart,len @@".
func parseHunkHeader(s string) (oldStart, newStart int) {
	parts := strings.Fields(s)
	for _, p := range parts {
		if strings.HasPrefix(p, "-") {
			oldStart = hunkStart(p[1:])
		} else if strings.HasPrefix(p, "+") {
			newStart = hunkStart(p[1:])
		}
	}
	return oldStart, newStart
}

func hunkStart(s string) int {
	if idx := strings.IndexByte(s, ','); idx >= 0 {
		s = s[:idx]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
