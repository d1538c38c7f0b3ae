package diffattr

import (
	"path/filepath"
	"strings"

	"github.com/johns/vibe-distill/internal/filemap"
)

// lineOrigin records which agent most recently produced a line of content.
type lineOrigin struct {
	agent string
	t     int64
}

// EditIndex maps trimmed content lines to their most recent contributor,
// per relative file path, separately for written (new) and replaced (old)
// content.
type EditIndex struct {
	newLines map[string]map[string]lineOrigin // path -> trimmed line -> origin
	oldLines map[string]map[string]lineOrigin
}

// BuildEditIndex indexes every successful Edit/Write step's content. Chains
// produced by team aggregation carry the contributing agent's name; the
// parent's own chains have none and index under "".
// When two steps contribute the same line, the chronologically latest wins —
// later edits are assumed more authoritative.
func BuildEditIndex(chains []filemap.Chain, projectDir string) *EditIndex {
	idx := &EditIndex{
		newLines: make(map[string]map[string]lineOrigin),
		oldLines: make(map[string]map[string]lineOrigin),
	}

	for _, c := range chains {
		rel := relPath(c.FilePath, projectDir)
		for _, s := range c.Steps {
			if s.Failed {
				continue
			}
			indexLines(idx.newLines, rel, s.NewString, c.AgentName, s.T)
			indexLines(idx.oldLines, rel, s.OldString, c.AgentName, s.T)
		}
	}
	return idx
}

func indexLines(m map[string]map[string]lineOrigin, path, content, agent string, t int64) {
	if content == "" {
		return
	}
	lines, ok := m[path]
	if !ok {
		lines = make(map[string]lineOrigin)
		m[path] = lines
	}
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if have, ok := lines[line]; !ok || t >= have.t {
			lines[line] = lineOrigin{agent: agent, t: t}
		}
	}
}

// Attribute parses a file's diff and tags each changed line with the agent
// whose edit content contains it. Added lines match against new-string
// content, removed lines against old-string content; unmatched lines stay
// unattributed. Identical text from two agents resolves to the later edit,
// which can misattribute — a known limit of content matching.
func Attribute(filePath, diffText string, idx *EditIndex) FileDiffAttribution {
	attr := FileDiffAttribution{
		FilePath: filePath,
		Lines:    ParseUnifiedDiff(diffText),
	}

	for i := range attr.Lines {
		l := &attr.Lines[i]
		trimmed := strings.TrimSpace(l.Content)
		switch l.Type {
		case LineAdd:
			attr.TotalAdditions++
			if o, ok := idx.newLines[filePath][trimmed]; ok {
				l.AgentName = o.agent
			}
		case LineRemove:
			attr.TotalDeletions++
			if o, ok := idx.oldLines[filePath][trimmed]; ok {
				l.AgentName = o.agent
			}
		}
	}
	return attr
}

// AttributeAll runs attribution for every file that has both a diff and an
// edit chain.
func AttributeAll(diffs map[string]string, chains []filemap.Chain, projectDir string) []FileDiffAttribution {
	idx := BuildEditIndex(chains, projectDir)

	var out []FileDiffAttribution
	for _, c := range chains {
		rel := relPath(c.FilePath, projectDir)
		text, ok := diffs[rel]
		if !ok || text == "" {
			continue
		}
		if containsFile(out, rel) {
			continue // parent and agent chains can share a path
		}
		out = append(out, Attribute(rel, text, idx))
	}
	return out
}

func containsFile(attrs []FileDiffAttribution, path string) bool {
	for _, a := range attrs {
		if a.FilePath == path {
			return true
		}
	}
	return false
}

// relPath normalizes an absolute tool path to be relative to the project.
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
