package event

// FilterLinks narrows the shared links log to the subtree rooted at sid.
//
// The spawn parent/child relation is expanded to a fixed point first, then
// each variant is filtered by whichever field identifies ownership. The
// task_complete and teammate_idle variants only carry agent names, so they
// match by the names spawned inside the subtree — names are not guaranteed
// unique across sessions, which is a known approximation.
func FilterLinks(links []LinkEvent, sid string) []LinkEvent {
	owned := map[string]bool{sid: true}
	names := map[string]bool{}

	// Expand spawn closure. The log is unordered across processes, so loop
	// until no new session joins the set.
	for {
		grew := false
		for _, l := range links {
			if l.Event != LinkSpawn {
				continue
			}
			if owned[l.ParentSID] && l.ChildSID != "" && !owned[l.ChildSID] {
				owned[l.ChildSID] = true
				grew = true
			}
		}
		if !grew {
			break
		}
	}

	for _, l := range links {
		if l.Event == LinkSpawn && owned[l.ParentSID] && l.AgentName != "" {
			names[l.AgentName] = true
		}
	}

	var out []LinkEvent
	for _, l := range links {
		switch l.Event {
		case LinkSpawn:
			if owned[l.ParentSID] || owned[l.ChildSID] {
				out = append(out, l)
			}
		case LinkTaskComplete, LinkTeammateIdle:
			if names[l.AgentName] {
				out = append(out, l)
			}
		case LinkMsgSend:
			if names[l.From] || names[l.To] || owned[l.SID] {
				out = append(out, l)
			}
		default:
			if owned[l.SID] {
				out = append(out, l)
			}
		}
	}
	return out
}
