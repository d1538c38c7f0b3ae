package journey

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/johns/vibe-distill/internal/event"
)

// Sessions chain when the follow-up starts this soon after its predecessor.
const chainGapMs = 5000

// Abort detection bounds.
const (
	abortMaxEvents = 5
	abortMaxWallMs = 2 * 60 * 1000
)

// Session is the per-session summary the composer works from.
type Session struct {
	ID          string
	Source      string // SessionStart source: startup, clear, compact, resume
	CWD         string
	StartT      int64
	EndT        int64
	DurationMs  int64 // effective, idle gaps excluded
	EventCount  int
	ToolCalls   int
	Failures    int
	FirstPrompt string
	ReadCalls   int
	WriteCalls  int
	TaskCreates int
}

// SessionFromEvents reduces an event list to the summary the composer needs.
func SessionFromEvents(events []event.StoredEvent) Session {
	var s Session
	for _, e := range events {
		if s.ID == "" && e.SID != "" {
			s.ID = e.SID
		}
		if e.Event == event.SessionStart && e.Context != nil {
			if s.Source == "" {
				s.Source = e.Context.Source
			}
			if s.CWD == "" {
				s.CWD = e.Context.CWD
			}
		}
		if e.Event == event.UserPromptSubmit && s.FirstPrompt == "" {
			if p, ok := e.Data["prompt"].(string); ok {
				s.FirstPrompt = p
			}
		}
		if e.Event == event.PreToolUse {
			s.ToolCalls++
			switch e.ToolName() {
			case "Read", "Glob", "Grep":
				s.ReadCalls++
			case "Edit", "Write":
				s.WriteCalls++
			case "TaskCreate":
				s.TaskCreates++
			}
		}
		if e.Event == event.PostToolUseFailure && !e.Interrupted() {
			s.Failures++
		}
	}
	s.EventCount = len(events)

	ts := event.Timestamps(events)
	if len(ts) > 0 {
		sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })
		s.StartT = ts[0]
		s.EndT = ts[len(ts)-1]
	}
	s.DurationMs = event.Duration(ts).EffectiveMs
	return s
}

// Compose chains sessions into journeys and classifies each. Sessions are
// processed in start-time order; the input slice is not modified.
func Compose(sessions []Session) []Journey {
	ordered := append([]Session(nil), sessions...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].StartT < ordered[j].StartT })

	var chains [][]Session
	for _, s := range ordered {
		if n := len(chains); n > 0 && continuesChain(chains[n-1][len(chains[n-1])-1], s) {
			chains[n-1] = append(chains[n-1], s)
			continue
		}
		chains = append(chains, []Session{s})
	}

	journeys := make([]Journey, 0, len(chains))
	for _, chain := range chains {
		journeys = append(journeys, buildJourney(chain))
	}
	return journeys
}

// continuesChain reports whether s belongs to the chain ending in prev: the
// session was started by a clear or compact, picks up within the gap
// threshold, and runs in the same working directory.
func continuesChain(prev, s Session) bool {
	if s.Source != "clear" && s.Source != "compact" {
		return false
	}
	if s.StartT-prev.EndT > chainGapMs {
		return false
	}
	return s.CWD == prev.CWD
}

func buildJourney(chain []Session) Journey {
	j := Journey{ID: uuid.NewString()}

	for _, s := range chain {
		j.Phases = append(j.Phases, Phase{
			SessionID:  s.ID,
			Type:       ClassifyPhase(s),
			StartT:     s.StartT,
			EndT:       s.EndT,
			EventCount: s.EventCount,
			ToolCalls:  s.ToolCalls,
			Failures:   s.Failures,
		})
		j.Cumulative.DurationMs += s.DurationMs
		j.Cumulative.Events += s.EventCount
		j.Cumulative.ToolCalls += s.ToolCalls
		j.Cumulative.Failures += s.Failures
	}

	for i := 1; i < len(j.Phases); i++ {
		prev, cur := j.Phases[i-1], j.Phases[i]
		j.Transitions = append(j.Transitions, Transition{
			FromType: prev.Type,
			ToType:   cur.Type,
			T:        cur.StartT,
			GapMs:    cur.StartT - prev.EndT,
		})
	}

	for _, p := range j.Phases {
		if p.Type == PhaseAbort {
			j.Cumulative.Retries++
		}
	}

	j.LifecycleType = lifecycleType(j.Phases)
	return j
}

// slashPhases maps explicit slash commands in the opening prompt to a
// phase type.
var slashPhases = map[string]string{
	"/prime":      PhasePrime,
	"/brainstorm": PhaseBrainstorm,
	"/plan":       PhasePlan,
	"/build":      PhaseBuild,
	"/implement":  PhaseBuild,
	"/review":     PhaseReview,
	"/test":       PhaseTest,
	"/commit":     PhaseCommit,
}

// ClassifyPhase decides what a session was for. Signals apply in priority
// order; the first one that fires wins.
func ClassifyPhase(s Session) string {
	if cmd := firstSlashCommand(s.FirstPrompt); cmd != "" {
		if t, ok := slashPhases[cmd]; ok {
			return t
		}
	}
	if s.ReadCalls > 0 && float64(s.ReadCalls) > 3.0*float64(s.WriteCalls) {
		return PhaseExploration
	}
	if s.TaskCreates > 3 {
		return PhaseOrchestratedBld
	}
	if s.EventCount < abortMaxEvents && s.EndT-s.StartT < abortMaxWallMs {
		return PhaseAbort
	}
	return PhaseFreeform
}

func firstSlashCommand(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if !strings.HasPrefix(prompt, "/") {
		return ""
	}
	return strings.ToLower(firstField(prompt))
}

func firstField(s string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// lifecycleType derives the journey's shape from the set of phase types
// present, not their order.
func lifecycleType(phases []Phase) string {
	set := make(map[string]bool)
	for _, p := range phases {
		set[p.Type] = true
	}
	switch {
	case set[PhasePrime] && set[PhasePlan] && set[PhaseBuild]:
		return LifecyclePrimePlanBuild
	case set[PhasePrime] && set[PhaseBuild]:
		return LifecyclePrimeBuild
	case len(set) == 1 && set[PhaseBuild]:
		return LifecycleBuildOnly
	case len(set) == 1:
		return LifecycleSingleSession
	default:
		return LifecycleAdHoc
	}
}
