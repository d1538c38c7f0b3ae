package distill

import (
	"sort"

	"github.com/johns/vibe-distill/internal/event"
)

// BuildCommGraph counts messages per from→to pair, sorted by from then to.
func BuildCommGraph(links []event.LinkEvent) []CommEdge {
	type pair struct{ from, to string }
	counts := make(map[pair]int)
	for _, l := range links {
		if l.Event != event.LinkMsgSend {
			continue
		}
		counts[pair{l.From, l.To}]++
	}

	edges := make([]CommEdge, 0, len(counts))
	for p, n := range counts {
		edges = append(edges, CommEdge{From: p.from, To: p.to, Count: n})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// Lifetimes pairs each spawn with the stop of the spawned session. Agents
// still running at the end of the log keep a zero StopT.
func Lifetimes(links []event.LinkEvent) []AgentLifetime {
	stops := make(map[string]int64)
	for _, l := range links {
		if l.Event == event.LinkStop && l.SID != "" {
			stops[l.SID] = l.T
		}
	}

	var out []AgentLifetime
	for _, l := range links {
		if l.Event != event.LinkSpawn {
			continue
		}
		out = append(out, AgentLifetime{
			AgentName: l.AgentName,
			AgentType: l.AgentType,
			SessionID: l.ChildSID,
			SpawnT:    l.T,
			StopT:     stops[l.ChildSID],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SpawnT < out[j].SpawnT })
	return out
}

// Messages returns every msg_send in timestamp order.
func Messages(links []event.LinkEvent) []Message {
	var out []Message
	for _, l := range links {
		if l.Event != event.LinkMsgSend {
			continue
		}
		out = append(out, Message{T: l.T, From: l.From, To: l.To, Text: l.Text})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].T < out[j].T })
	return out
}
