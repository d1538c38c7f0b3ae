package team

import (
	"sort"

	"github.com/johns/vibe-distill/internal/backtrack"
	"github.com/johns/vibe-distill/internal/filemap"
	"github.com/johns/vibe-distill/internal/stats"
)

// Flatten walks the agent tree parent-before-children and returns every node
// in that order. An explicit stack avoids recursion on deep trees.
func Flatten(root *AgentNode) []*AgentNode {
	if root == nil {
		return nil
	}
	var out []*AgentNode
	stack := []*AgentNode{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		// Push children reversed so the leftmost child pops first.
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return out
}

// ComputeMetrics sums up the team summary over every agent below the root.
// The root session's own numbers are not agent work and are excluded.
func ComputeMetrics(root *AgentNode) *Metrics {
	agents := Flatten(root)
	if len(agents) <= 1 {
		return nil
	}
	m := &Metrics{}
	for _, a := range agents[1:] {
		m.AgentCount++
		m.TotalAgentToolUse += a.ToolCallCount
		m.TotalAgentTimeMs += a.DurationMs
	}
	return m
}

// MergeStats folds agent stats into the parent's. Counters and histograms
// sum; the failure rate is recomputed from the merged totals rather than
// averaged. Model, cost, and duration stay the parent's own.
func MergeStats(parent stats.Result, agents []*AgentNode) stats.Result {
	merged := parent
	merged.EventCounts = copyCounts(parent.EventCounts)
	merged.ToolCounts = copyCounts(parent.ToolCounts)

	files := make(map[string]bool, len(parent.UniqueFiles))
	for _, f := range parent.UniqueFiles {
		files[f] = true
	}

	for _, a := range agents {
		if a.Stats == nil {
			continue
		}
		s := a.Stats
		for k, v := range s.EventCounts {
			merged.EventCounts[k] += v
		}
		for k, v := range s.ToolCounts {
			merged.ToolCounts[k] += v
		}
		merged.ToolCalls += s.ToolCalls
		merged.Failures += s.Failures
		merged.EventCount += s.EventCount
		for _, f := range s.UniqueFiles {
			files[f] = true
		}
	}

	merged.UniqueFiles = make([]string, 0, len(files))
	for f := range files {
		merged.UniqueFiles = append(merged.UniqueFiles, f)
	}
	sort.Strings(merged.UniqueFiles)

	calls := merged.ToolCalls
	if calls < 1 {
		calls = 1
	}
	merged.FailureRate = float64(merged.Failures) / float64(calls)
	return merged
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// MergeFileMaps combines per-agent file maps by path. Counters sum, tool use
// ids concatenate in merge order, and the first source seen for a path wins.
func MergeFileMaps(maps ...[]filemap.Entry) []filemap.Entry {
	byPath := make(map[string]*filemap.Entry)
	for _, fm := range maps {
		for _, e := range fm {
			have, ok := byPath[e.FilePath]
			if !ok {
				cp := e
				cp.ToolUseIDs = append([]string(nil), e.ToolUseIDs...)
				byPath[e.FilePath] = &cp
				continue
			}
			have.Reads += e.Reads
			have.Edits += e.Edits
			have.Writes += e.Writes
			have.Errors += e.Errors
			have.ToolUseIDs = append(have.ToolUseIDs, e.ToolUseIDs...)
		}
	}

	out := make([]filemap.Entry, 0, len(byPath))
	for _, e := range byPath {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FilePath < out[j].FilePath })
	return out
}

// CollectChains gathers every agent's edit chains, tagged with the agent's
// display name. Chains are never merged across agents: who edited what is
// the signal.
func CollectChains(parentChains []filemap.Chain, agents []*AgentNode) []filemap.Chain {
	out := append([]filemap.Chain(nil), parentChains...)
	for _, a := range agents {
		name := a.DisplayName()
		for _, c := range a.EditChains {
			c.AgentName = name
			out = append(out, c)
		}
	}
	return out
}

// MergeBacktracks concatenates backtrack lists, sorts by start time, then
// collapses near-duplicates: two results merge only when they share a type
// and file path and the smaller id set overlaps the other by at least half.
// The record with more tool use ids survives; on a tie the earlier one does.
func MergeBacktracks(lists ...[]backtrack.Result) []backtrack.Result {
	var all []backtrack.Result
	for _, l := range lists {
		all = append(all, l...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].StartT < all[j].StartT })

	var out []backtrack.Result
	for _, b := range all {
		merged := false
		for i := range out {
			if out[i].Type != b.Type || out[i].FilePath != b.FilePath {
				continue
			}
			if !idsOverlap(out[i].ToolUseIDs, b.ToolUseIDs) {
				continue
			}
			if len(b.ToolUseIDs) > len(out[i].ToolUseIDs) {
				out[i] = b
			}
			merged = true
			break
		}
		if !merged {
			out = append(out, b)
		}
	}
	return out
}

// idsOverlap reports whether at least half the smaller set appears in the
// larger one. Two empty sets never count as overlapping.
func idsOverlap(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	in := make(map[string]bool, len(large))
	for _, id := range large {
		in[id] = true
	}
	hits := 0
	for _, id := range small {
		if in[id] {
			hits++
		}
	}
	return hits*2 >= len(small)
}

// MergeCosts sums token usage and dollars across the parent and all agents.
// The merged model is the parent's when it priced out, otherwise the first
// agent's. Rounding happens once, after summation.
func MergeCosts(parent *stats.CostEstimate, agents []*AgentNode) *stats.CostEstimate {
	var total stats.CostEstimate
	seen := false

	fold := func(c *stats.CostEstimate) {
		if c == nil {
			return
		}
		if !seen {
			total.Model = c.Model
		}
		seen = true
		total.Usage.Add(c.Usage)
		total.USD += c.USD
		if c.IsEstimated {
			total.IsEstimated = true
		}
	}

	fold(parent)
	for _, a := range agents {
		fold(a.Cost)
	}
	if !seen {
		return nil
	}
	total.USD = stats.RoundUSD(total.USD)
	return &total
}
