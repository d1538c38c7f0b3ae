package timeline

import (
	"sort"

	"github.com/johns/vibe-distill/internal/event"
)

const (
	phaseHardBreakMs = 5 * 60 * 1000 // gap that always opens a new phase
	phaseSoftBreakMs = 2 * 60 * 1000 // gap that opens one if the dominant tool shifted
	phaseWindow      = 10            // events on each side of a candidate boundary
)

// Phases segments a session. When any task link exists the team
// task-lifecycle model applies; otherwise the solo gap/dominant-tool
// heuristic does.
func Phases(events []event.StoredEvent, links []event.LinkEvent) []PhaseInfo {
	if len(events) == 0 {
		return nil
	}
	for _, l := range links {
		if l.Event == event.LinkTask {
			return teamPhases(events, links)
		}
	}
	return soloPhases(events)
}

// soloPhases splits at hard gaps (>5min) and at soft gaps (>2min) where the
// dominant tool in the trailing window differs from the leading window.
func soloPhases(events []event.StoredEvent) []PhaseInfo {
	var phases []PhaseInfo
	segStart := 0

	for i := 1; i < len(events); i++ {
		gap := events[i].T - events[i-1].T
		boundary := gap > phaseHardBreakMs
		if !boundary && gap > phaseSoftBreakMs {
			before := dominantTool(events, i-phaseWindow, i)
			after := dominantTool(events, i, i+phaseWindow)
			boundary = before != "" && after != "" && before != after
		}
		if boundary {
			phases = append(phases, makePhase(events[segStart:i]))
			segStart = i
		}
	}
	phases = append(phases, makePhase(events[segStart:]))
	return phases
}

// makePhase names a segment from its dominant tool and collects its tool
// frequency ordering.
func makePhase(seg []event.StoredEvent) PhaseInfo {
	p := PhaseInfo{
		StartT: seg[0].T,
		EndT:   seg[len(seg)-1].T,
	}

	counts := make(map[string]int)
	order := make(map[string]int)
	hasFailure := false
	for i, e := range seg {
		switch e.Event {
		case event.PreToolUse:
			name := e.ToolName()
			if name == "" {
				continue
			}
			if _, seen := counts[name]; !seen {
				order[name] = i
			}
			counts[name]++
		case event.PostToolUseFailure:
			hasFailure = true
		}
	}

	for name := range counts {
		p.ToolTypes = append(p.ToolTypes, name)
	}
	sort.Slice(p.ToolTypes, func(i, j int) bool {
		a, b := p.ToolTypes[i], p.ToolTypes[j]
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}
		return order[a] < order[b]
	})

	dominant := ""
	if len(p.ToolTypes) > 0 {
		dominant = p.ToolTypes[0]
	}
	p.Name = phaseName(dominant, hasFailure)
	return p
}

// phaseName maps a dominant tool to a human phase label.
func phaseName(tool string, hasFailure bool) string {
	switch tool {
	case "Read", "Glob", "Grep":
		return "File Exploration"
	case "Edit", "Write":
		return "Code Modification"
	case "WebSearch", "WebFetch":
		return "Research"
	case "Bash":
		if hasFailure {
			return "Debugging"
		}
	}
	return "General"
}

// dominantTool returns the most frequent tool among PreToolUse events in
// [lo, hi), clamped to the slice. Ties keep the earlier-seen tool.
func dominantTool(events []event.StoredEvent, lo, hi int) string {
	if lo < 0 {
		lo = 0
	}
	if hi > len(events) {
		hi = len(events)
	}
	counts := make(map[string]int)
	order := make(map[string]int)
	for i := lo; i < hi; i++ {
		if events[i].Event != event.PreToolUse {
			continue
		}
		name := events[i].ToolName()
		if name == "" {
			continue
		}
		if _, seen := counts[name]; !seen {
			order[name] = i
		}
		counts[name]++
	}

	best := ""
	for name, c := range counts {
		if best == "" || c > counts[best] || (c == counts[best] && order[name] < order[best]) {
			best = name
		}
	}
	return best
}

// teamPhases applies the task-lifecycle model: Planning until the first task
// assignment, Build until the first validator spawn, Validation to session
// end if a validator spawned. Boundaries are clamped into the session span
// because assignments and spawns can, in captured data, precede their
// nominal phase start.
func teamPhases(events []event.StoredEvent, links []event.LinkEvent) []PhaseInfo {
	sessionStart := events[0].T
	sessionEnd := events[len(events)-1].T

	var firstAssign, validatorSpawn int64 = -1, -1
	for _, l := range links {
		if l.Event == event.LinkTask && l.Action == "assign" && (firstAssign < 0 || l.T < firstAssign) {
			firstAssign = l.T
		}
		if l.Event == event.LinkSpawn && l.AgentType == "validator" && (validatorSpawn < 0 || l.T < validatorSpawn) {
			validatorSpawn = l.T
		}
	}

	clamp := func(t int64) int64 {
		if t < sessionStart {
			return sessionStart
		}
		if t > sessionEnd {
			return sessionEnd
		}
		return t
	}

	var phases []PhaseInfo
	buildStart := sessionStart
	if firstAssign >= 0 {
		planEnd := clamp(firstAssign)
		if planEnd > sessionStart {
			phases = append(phases, PhaseInfo{Name: "Planning", StartT: sessionStart, EndT: planEnd})
		}
		buildStart = planEnd
	}

	buildEnd := sessionEnd
	if validatorSpawn >= 0 {
		buildEnd = clamp(validatorSpawn)
	}
	if buildEnd < buildStart {
		buildEnd = buildStart
	}
	phases = append(phases, PhaseInfo{Name: "Build", StartT: buildStart, EndT: buildEnd})

	if validatorSpawn >= 0 {
		valEnd := sessionEnd
		if valEnd < buildEnd {
			valEnd = buildEnd
		}
		phases = append(phases, PhaseInfo{Name: "Validation", StartT: buildEnd, EndT: valEnd})
	}

	return phases
}
