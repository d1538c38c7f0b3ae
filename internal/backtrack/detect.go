package backtrack

import (
	"sort"
	"strings"

	"github.com/johns/vibe-distill/internal/event"
)

const (
	struggleMinAttempts = 3 // edits to one file before it counts as a struggle
	struggleMinFailures = 2
	loopMinFailures     = 3 // similar failing Bash runs before it counts as a loop
)

// Detect scans a session's events for failure/retry/struggle patterns.
// Results are ordered by start time.
func Detect(events []event.StoredEvent) []Result {
	attempts := collectAttempts(events)

	var out []Result
	out = append(out, failureRetries(events)...)
	out = append(out, iterationStruggles(attempts)...)
	out = append(out, debuggingLoops(attempts)...)

	sort.SliceStable(out, func(i, j int) bool { return out[i].StartT < out[j].StartT })
	return out
}

// attempt is one tool invocation paired with its outcome.
type attempt struct {
	t        int64
	tool     string
	id       string
	filePath string
	command  string
	failed   bool
	errText  string
}

// collectAttempts pairs each PreToolUse with its failure, matching by
// tool_use_id when present and by adjacency otherwise.
func collectAttempts(events []event.StoredEvent) []attempt {
	var attempts []attempt
	byID := make(map[string]int)

	for _, e := range events {
		switch e.Event {
		case event.PreToolUse:
			a := attempt{
				t:        e.T,
				tool:     e.ToolName(),
				id:       e.ToolUseID(),
				filePath: e.FilePath(),
				command:  e.InputString("command"),
			}
			attempts = append(attempts, a)
			if a.id != "" {
				byID[a.id] = len(attempts) - 1
			}
		case event.PostToolUseFailure:
			if e.Interrupted() {
				continue
			}
			idx := -1
			if id := e.ToolUseID(); id != "" {
				if i, ok := byID[id]; ok {
					idx = i
				}
			}
			if idx < 0 && len(attempts) > 0 {
				idx = len(attempts) - 1
			}
			if idx >= 0 {
				attempts[idx].failed = true
				attempts[idx].errText = e.ErrorText()
			}
		}
	}
	return attempts
}

// failureRetries finds a failure immediately retried with the same tool,
// extending through consecutive failure/retry pairs.
func failureRetries(events []event.StoredEvent) []Result {
	var out []Result
	i := 0
	for i < len(events) {
		e := events[i]
		if e.Event != event.PostToolUseFailure || e.Interrupted() || e.ToolName() == "" {
			i++
			continue
		}

		tool := e.ToolName()
		r := Result{
			Type:         TypeFailureRetry,
			ToolName:     tool,
			Attempts:     1,
			StartT:       e.T,
			EndT:         e.T,
			ErrorMessage: e.ErrorText(),
		}
		appendID(&r, e.ToolUseID())

		// Consume failure -> same-tool retry pairs.
		j := i
		for {
			k := nextPreToolUse(events, j+1)
			if k < 0 || events[k].ToolName() != tool {
				break
			}
			r.Attempts++
			r.EndT = events[k].T
			appendID(&r, events[k].ToolUseID())
			if r.FilePath == "" {
				r.FilePath = events[k].FilePath()
			}
			if r.Command == "" {
				r.Command = events[k].InputString("command")
			}

			// Did the retry fail too? If so the pattern may continue.
			f := nextFailureFor(events, k+1, events[k].ToolUseID(), tool)
			if f < 0 {
				j = k
				break
			}
			appendID(&r, events[f].ToolUseID())
			r.EndT = events[f].T
			r.ErrorMessage = events[f].ErrorText()
			j = f
		}

		if r.Attempts > 1 {
			out = append(out, r)
			i = j + 1
		} else {
			i++
		}
	}
	return out
}

func nextPreToolUse(events []event.StoredEvent, from int) int {
	for i := from; i < len(events); i++ {
		if events[i].Event == event.PreToolUse {
			return i
		}
	}
	return -1
}

// nextFailureFor finds the failure matching a tool use, preferring id match
// and accepting the next same-tool failure before any same-tool success.
func nextFailureFor(events []event.StoredEvent, from int, id, tool string) int {
	for i := from; i < len(events); i++ {
		switch events[i].Event {
		case event.PostToolUseFailure:
			if events[i].Interrupted() {
				continue
			}
			if id != "" && events[i].ToolUseID() == id {
				return i
			}
			if id == "" && events[i].ToolName() == tool {
				return i
			}
		case event.PostToolUse:
			if id != "" && events[i].ToolUseID() == id {
				return -1
			}
			if id == "" && events[i].ToolName() == tool {
				return -1
			}
		}
	}
	return -1
}

// iterationStruggles finds files edited repeatedly without resolution.
func iterationStruggles(attempts []attempt) []Result {
	byFile := make(map[string][]attempt)
	var order []string
	for _, a := range attempts {
		if a.filePath == "" || (a.tool != "Edit" && a.tool != "Write") {
			continue
		}
		if _, seen := byFile[a.filePath]; !seen {
			order = append(order, a.filePath)
		}
		byFile[a.filePath] = append(byFile[a.filePath], a)
	}

	var out []Result
	for _, path := range order {
		as := byFile[path]
		failures := 0
		for _, a := range as {
			if a.failed {
				failures++
			}
		}
		if len(as) < struggleMinAttempts || failures < struggleMinFailures {
			continue
		}

		r := Result{
			Type:     TypeIterationStruggle,
			ToolName: as[0].tool,
			Attempts: len(as),
			StartT:   as[0].t,
			EndT:     as[len(as)-1].t,
			FilePath: path,
		}
		for _, a := range as {
			appendID(&r, a.id)
			if a.failed && a.errText != "" {
				r.ErrorMessage = a.errText
			}
		}
		out = append(out, r)
	}
	return out
}

// debuggingLoops finds repeated failing Bash runs of similar commands.
// Similarity is first-token equality — `go test ./x` and `go build` share a
// loop, `npm test` does not.
func debuggingLoops(attempts []attempt) []Result {
	type group struct {
		failing []attempt
	}
	groups := make(map[string]*group)
	var order []string

	for _, a := range attempts {
		if a.tool != "Bash" || !a.failed || a.command == "" {
			continue
		}
		key := firstToken(a.command)
		if key == "" {
			continue
		}
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
			order = append(order, key)
		}
		g.failing = append(g.failing, a)
	}

	var out []Result
	for _, key := range order {
		g := groups[key]
		if len(g.failing) < loopMinFailures {
			continue
		}
		r := Result{
			Type:     TypeDebuggingLoop,
			ToolName: "Bash",
			Attempts: len(g.failing),
			StartT:   g.failing[0].t,
			EndT:     g.failing[len(g.failing)-1].t,
		}
		for _, a := range g.failing {
			appendID(&r, a.id)
			r.Command = a.command
			if a.errText != "" {
				r.ErrorMessage = a.errText
			}
		}
		out = append(out, r)
	}
	return out
}

func firstToken(cmd string) string {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// appendID adds a tool use id, preserving order and uniqueness.
func appendID(r *Result, id string) {
	if id == "" {
		return
	}
	for _, have := range r.ToolUseIDs {
		if have == id {
			return
		}
	}
	r.ToolUseIDs = append(r.ToolUseIDs, id)
}
