package plandrift

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/johns/vibe-distill/internal/filemap"
)

// Result compares the spec's expected files against what actually changed.
type Result struct {
	SpecRef         string   `json:"spec_ref,omitempty"`
	ExpectedFiles   []string `json:"expected_files"`
	ActualFiles     []string `json:"actual_files"`
	UnexpectedFiles []string `json:"unexpected_files"`
	MissingFiles    []string `json:"missing_files"`
	DriftScore      float64  `json:"drift_score"`
}

// Analyze runs plan-drift for one session. Trivial sessions with zero tool
// calls are skipped outright: a session that never touched the filesystem
// would otherwise always score 100% drift.
func Analyze(specRef, specText string, entries []filemap.Entry, projectDir string, toolCalls int) *Result {
	if toolCalls == 0 {
		return nil
	}
	r := Compute(specText, ActualFiles(entries, projectDir))
	r.SpecRef = specRef
	return &r
}

// Compute scores the expected set against the actual set. Drift is the
// share of expectations violated in either direction, clamped to [0,1].
func Compute(specText string, actual []string) Result {
	expected := ExtractExpectedFiles(specText)

	expectedSet := toSet(expected)
	actualSet := toSet(actual)

	var unexpected, missing []string
	for _, f := range actual {
		if !expectedSet[f] {
			unexpected = append(unexpected, f)
		}
	}
	for _, f := range expected {
		if !actualSet[f] {
			missing = append(missing, f)
		}
	}

	denom := len(expected)
	if denom < 1 {
		denom = 1
	}
	score := float64(len(unexpected)+len(missing)) / float64(denom)
	if score > 1 {
		score = 1
	}

	return Result{
		ExpectedFiles:   expected,
		ActualFiles:     actual,
		UnexpectedFiles: unexpected,
		MissingFiles:    missing,
		DriftScore:      score,
	}
}

// ActualFiles lists the files a session changed: any file map entry with
// edits or writes, normalized relative to the project directory, sorted.
func ActualFiles(entries []filemap.Entry, projectDir string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, e := range entries {
		if e.Edits == 0 && e.Writes == 0 {
			continue
		}
		p := relPath(e.FilePath, projectDir)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func relPath(path, projectDir string) string {
	if projectDir == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(projectDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, i := range items {
		set[i] = true
	}
	return set
}
