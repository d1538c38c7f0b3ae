// Package filemap tracks per-file activity and reconstructs ordered edit
// histories from a session's tool events.
package filemap

import (
	"sort"
	"strings"

	"github.com/johns/vibe-distill/internal/event"
)

// Entry sources.
const (
	SourceTool = "tool"
	SourceBash = "bash"
)

// Entry is the per-file counter record for one session.
type Entry struct {
	FilePath   string   `json:"file_path"`
	Reads      int      `json:"reads"`
	Edits      int      `json:"edits"`
	Writes     int      `json:"writes"`
	Errors     int      `json:"errors"`
	ToolUseIDs []string `json:"tool_use_ids,omitempty"`
	Source     string   `json:"source"`
}

// Build runs the two-pass file map construction: dedicated file tools first,
// then a best-effort scan of Bash commands. Paths the dedicated pass already
// registered are never overwritten by the bash pass — tool data wins.
// Entries come back sorted by path.
func Build(events []event.StoredEvent) []Entry {
	failedIDs := collectFailedIDs(events)
	byPath := make(map[string]*Entry)

	for _, e := range events {
		if e.Event != event.PreToolUse {
			continue
		}
		tool := e.ToolName()
		path := e.FilePath()
		if path == "" {
			continue
		}

		var bump func(*Entry)
		switch tool {
		case "Read", "Glob", "Grep":
			bump = func(en *Entry) { en.Reads++ }
		case "Edit":
			bump = func(en *Entry) { en.Edits++ }
		case "Write":
			bump = func(en *Entry) { en.Writes++ }
		default:
			continue
		}

		en := entryFor(byPath, path, SourceTool)
		id := e.ToolUseID()
		if id != "" {
			en.ToolUseIDs = append(en.ToolUseIDs, id)
		}
		if id != "" && failedIDs[id] {
			en.Errors++
		} else {
			bump(en)
		}
	}

	// Bash pass: register paths the dedicated pass missed.
	for _, e := range events {
		if e.Event != event.PreToolUse || e.ToolName() != "Bash" {
			continue
		}
		cmd := e.InputString("command")
		if cmd == "" {
			continue
		}
		for _, path := range bashPaths(cmd) {
			if _, exists := byPath[path]; exists {
				continue
			}
			en := entryFor(byPath, path, SourceBash)
			en.Writes++
			if id := e.ToolUseID(); id != "" {
				en.ToolUseIDs = append(en.ToolUseIDs, id)
			}
		}
	}

	out := make([]Entry, 0, len(byPath))
	for _, en := range byPath {
		out = append(out, *en)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FilePath < out[j].FilePath })
	return out
}

func entryFor(byPath map[string]*Entry, path, source string) *Entry {
	en, ok := byPath[path]
	if !ok {
		en = &Entry{FilePath: path, Source: source}
		byPath[path] = en
	}
	return en
}

// collectFailedIDs indexes tool_use_ids that ended in a non-interrupt failure.
func collectFailedIDs(events []event.StoredEvent) map[string]bool {
	failed := make(map[string]bool)
	for _, e := range events {
		if e.Event == event.PostToolUseFailure && !e.Interrupted() {
			if id := e.ToolUseID(); id != "" {
				failed[id] = true
			}
		}
	}
	return failed
}

// bashPaths extracts file paths a shell command plausibly touches. Fixed
// pattern set: mkdir, cp/mv/rm, > redirection, touch.
func bashPaths(cmd string) []string {
	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		p = strings.Trim(p, `"'`)
		if p == "" || strings.HasPrefix(p, "-") || seen[p] {
			return
		}
		seen[p] = true
		paths = append(paths, p)
	}

	fields := strings.Fields(cmd)
	for i, f := range fields {
		switch f {
		case "mkdir", "touch":
			for _, arg := range fields[i+1:] {
				if strings.HasPrefix(arg, "-") {
					continue
				}
				if isShellOperator(arg) {
					break
				}
				add(arg)
			}
		case "cp", "mv", "rm":
			for _, arg := range fields[i+1:] {
				if strings.HasPrefix(arg, "-") {
					continue
				}
				if isShellOperator(arg) {
					break
				}
				add(arg)
			}
		case ">", ">>":
			if i+1 < len(fields) {
				add(fields[i+1])
			}
		}
	}

	// Redirection glued to the target: echo x >out.txt
	for _, f := range fields {
		if len(f) > 1 && strings.HasPrefix(f, ">") && !strings.HasPrefix(f, ">>") {
			add(strings.TrimPrefix(f, ">"))
		}
		if len(f) > 2 && strings.HasPrefix(f, ">>") {
			add(strings.TrimPrefix(f, ">>"))
		}
	}

	return paths
}

func isShellOperator(s string) bool {
	switch s {
	case "&&", "||", "|", ";", ">", ">>", "<":
		return true
	}
	return false
}
