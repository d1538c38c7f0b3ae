package distill

import (
	"fmt"
	"strings"

	"github.com/johns/vibe-distill/internal/backtrack"
	"github.com/johns/vibe-distill/internal/stats"
	"github.com/johns/vibe-distill/internal/timeline"
)

// summarize builds the one-line human summary: phase shape first, then the
// headline counts.
func summarize(st stats.Result, phases []timeline.PhaseInfo, backtracks []backtrack.Result) string {
	var parts []string

	if names := phaseNames(phases); len(names) > 0 {
		parts = append(parts, strings.Join(names, ", "))
	}

	calls := fmt.Sprintf("%d tool calls", st.ToolCalls)
	if st.Failures > 0 {
		calls += fmt.Sprintf(" (%d failed)", st.Failures)
	}
	parts = append(parts, calls)

	if n := len(st.UniqueFiles); n == 1 {
		parts = append(parts, "1 file")
	} else if n > 1 {
		parts = append(parts, fmt.Sprintf("%d files", n))
	}

	if n := len(backtracks); n == 1 {
		parts = append(parts, "1 backtrack")
	} else if n > 1 {
		parts = append(parts, fmt.Sprintf("%d backtracks", n))
	}

	if st.DurationMs > 0 {
		parts = append(parts, humanDuration(st.DurationMs))
	}

	return strings.Join(parts, "; ")
}

// phaseNames lists phase names in order, collapsing consecutive repeats.
func phaseNames(phases []timeline.PhaseInfo) []string {
	var names []string
	for _, p := range phases {
		if len(names) > 0 && names[len(names)-1] == p.Name {
			continue
		}
		names = append(names, p.Name)
	}
	return names
}

func humanDuration(ms int64) string {
	sec := ms / 1000
	switch {
	case sec < 60:
		return fmt.Sprintf("%ds", sec)
	case sec < 3600:
		return fmt.Sprintf("%dm", sec/60)
	default:
		return fmt.Sprintf("%dh%dm", sec/3600, (sec%3600)/60)
	}
}
