package distill

import (
	"path/filepath"
	"strings"

	"github.com/johns/vibe-distill/internal/backtrack"
	"github.com/johns/vibe-distill/internal/diffattr"
	"github.com/johns/vibe-distill/internal/event"
	"github.com/johns/vibe-distill/internal/filemap"
	"github.com/johns/vibe-distill/internal/plandrift"
	"github.com/johns/vibe-distill/internal/stats"
	"github.com/johns/vibe-distill/internal/team"
	"github.com/johns/vibe-distill/internal/timeline"
)

// Input carries everything one distill run consumes. Links may be the whole
// project log; it is filtered to the session's subtree here. Agents, when
// present, arrive already populated with their own artifacts by the caller
// that resolved the spawn links.
type Input struct {
	SessionID   string
	Events      []event.StoredEvent
	Links       []event.LinkEvent
	Agents      []*team.AgentNode
	ProjectDir  string
	StartCommit string
	SpecRef     string
	SpecText    string
}

// Distill runs the full pipeline for one session: per-session extraction,
// team folding, diff attribution, and optional plan drift, producing the
// immutable session record.
func Distill(in Input) *DistilledSession {
	links := event.FilterLinks(in.Links, in.SessionID)

	st := stats.Extract(in.Events)
	if st.SessionID == "" {
		st.SessionID = in.SessionID
	}
	phases := timeline.Phases(in.Events, links)
	decisions := timeline.Decisions(in.Events, links, phases)
	backtracks := backtrack.Detect(in.Events)
	fileMap := filemap.Build(in.Events)
	chains := filemap.BuildChains(in.Events, backtracks)

	ds := &DistilledSession{
		SessionID: in.SessionID,
		Decisions: decisions,
		Timeline:  phases,
	}

	if len(in.Agents) > 0 {
		root := &team.AgentNode{SessionID: in.SessionID, Children: in.Agents}
		agents := team.Flatten(root)[1:]

		st = team.MergeStats(st, agents)
		st.Cost = team.MergeCosts(st.Cost, agents)

		fileMaps := [][]filemap.Entry{fileMap}
		backtrackLists := [][]backtrack.Result{backtracks}
		for _, a := range agents {
			fileMaps = append(fileMaps, a.FileMap)
			backtrackLists = append(backtrackLists, a.Backtracks)
		}
		fileMap = team.MergeFileMaps(fileMaps...)
		backtracks = team.MergeBacktracks(backtrackLists...)
		chains = team.CollectChains(chains, agents)

		ds.TeamMetrics = team.ComputeMetrics(root)
		ds.Agents = in.Agents
	}

	ds.Stats = st
	ds.Backtracks = backtracks
	ds.FileMap = fileMap
	ds.EditChains = chains
	ds.Summary = summarize(st, phases, backtracks)

	if in.ProjectDir != "" && len(chains) > 0 {
		files := changedFiles(chains, in.ProjectDir)
		diffs := diffattr.CaptureDiffs(in.ProjectDir, in.StartCommit, files)
		ds.DiffAttributions = diffattr.AttributeAll(diffs, chains, in.ProjectDir)
	}

	if in.SpecText != "" {
		ds.PlanDrift = plandrift.Analyze(in.SpecRef, in.SpecText, fileMap, in.ProjectDir, st.ToolCalls)
	}

	if len(links) > 0 {
		ds.CommunicationGraph = BuildCommGraph(links)
		ds.AgentLifetimes = Lifetimes(links)
		ds.CommSequence = Messages(links)
	}

	return ds
}

// changedFiles lists the distinct chain paths, relative to the project.
func changedFiles(chains []filemap.Chain, projectDir string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range chains {
		p := c.FilePath
		if filepath.IsAbs(p) {
			if rel, err := filepath.Rel(projectDir, p); err == nil && !strings.HasPrefix(rel, "..") {
				p = rel
			}
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
