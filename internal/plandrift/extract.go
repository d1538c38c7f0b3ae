// Package plandrift extracts an expected-files list from a spec document and
// scores how far the session's actual file activity drifted from it.
package plandrift

import (
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Heading keywords that open a files section. Matched as substrings of the
// lowercased heading text.
var sectionKeywords = []string{"file", "deliverable", "relevant", "new", "modified", "create"}

// Commands commonly found in backticks and code fences that would otherwise
// pass the path test (go/cmd/main.go is a path, `go test ./...` is not).
var commandWords = map[string]bool{
	"go": true, "git": true, "npm": true, "npx": true, "node": true,
	"make": true, "cargo": true, "python": true, "python3": true, "pip": true,
	"bash": true, "sh": true, "cd": true, "ls": true, "rm": true, "cp": true,
	"mv": true, "mkdir": true, "touch": true, "cat": true, "grep": true,
	"curl": true, "docker": true, "kubectl": true, "echo": true,
}

// ExtractExpectedFiles scans a spec document for file paths the plan says
// should exist or change. Extraction is deliberately rule-based text
// matching; the rules and their order are the contract, fuzziness included.
func ExtractExpectedFiles(text string) []string {
	found := make(map[string]bool)
	add := func(p string) {
		if isPath(p) {
			found[p] = true
		}
	}

	for _, f := range frontmatterFiles(text) {
		add(f)
	}

	lines := strings.Split(text, "\n")
	inFilesSection := false
	inFence := false

	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		if strings.HasPrefix(line, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			if p := fencePath(line); p != "" {
				add(p)
			}
			continue
		}

		if strings.HasPrefix(line, "#") {
			inFilesSection = headingOpensSection(line)
			continue
		}

		if inFilesSection && isBullet(line) {
			if p := bulletPath(line); p != "" {
				add(p)
			}
		}

		for _, prefix := range []string{"Create:", "Modify:", "File:"} {
			if strings.HasPrefix(line, prefix) {
				add(strings.Trim(strings.TrimSpace(line[len(prefix):]), "`*"))
			}
		}

		if strings.HasPrefix(line, "|") {
			for _, cell := range strings.Split(line, "|") {
				add(strings.Trim(strings.TrimSpace(cell), "`*"))
			}
		}

		for _, span := range backtickSpans(line) {
			if strings.Contains(span, "/") && !commandWords[firstWord(span)] {
				add(span)
			}
		}
	}

	out := make([]string, 0, len(found))
	for p := range found {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// frontmatterFiles reads a YAML frontmatter block's files list, if the
// document opens with one.
func frontmatterFiles(text string) []string {
	if !strings.HasPrefix(text, "---\n") {
		return nil
	}
	rest := text[4:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return nil
	}
	var fm struct {
		Files []string `yaml:"files"`
	}
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return nil
	}
	return fm.Files
}

func headingOpensSection(line string) bool {
	text := strings.ToLower(strings.TrimLeft(line, "# "))
	for _, kw := range sectionKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") ||
		strings.HasPrefix(line, "+ ")
}

// bulletPath pulls a path out of a bullet item: backtick-quoted, bold, or
// the bare first token. Anything with parentheses is rejected as a likely
// function signature.
func bulletPath(line string) string {
	item := strings.TrimSpace(line[2:])
	if strings.ContainsAny(item, "()") {
		return ""
	}
	if spans := backtickSpans(item); len(spans) > 0 {
		return spans[0]
	}
	if strings.HasPrefix(item, "**") {
		if end := strings.Index(item[2:], "**"); end >= 0 {
			return item[2 : 2+end]
		}
	}
	return firstWord(item)
}

// fencePath accepts a code-fence line only when it is a bare path on its
// own: no assignments, calls, braces, comments, or leading shell commands.
func fencePath(line string) string {
	if line == "" || strings.ContainsAny(line, "=({") {
		return ""
	}
	if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
		return ""
	}
	if commandWords[firstWord(line)] {
		return ""
	}
	if len(strings.Fields(line)) != 1 {
		return ""
	}
	return strings.Trim(line, "`*")
}

func backtickSpans(line string) []string {
	var spans []string
	for {
		start := strings.IndexByte(line, '`')
		if start < 0 {
			return spans
		}
		end := strings.IndexByte(line[start+1:], '`')
		if end < 0 {
			return spans
		}
		spans = append(spans, line[start+1:start+1+end])
		line = line[start+2+end:]
	}
}

func firstWord(s string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// isPath is the final gate every candidate passes: a slash, a file
// extension, and none of the characters that mark prose or code.
func isPath(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || !strings.Contains(s, "/") {
		return false
	}
	if strings.ContainsAny(s, "() {}<>") || strings.Contains(s, "://") {
		return false
	}
	base := s[strings.LastIndexByte(s, '/')+1:]
	dot := strings.LastIndexByte(base, '.')
	if dot <= 0 || dot == len(base)-1 {
		return false
	}
	ext := base[dot+1:]
	if len(ext) > 10 {
		return false
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
