package event

import "sort"

// IdleThresholdMs is the gap length beyond which a session is considered
// idle rather than working. Shared by stats and journey duration math.
const IdleThresholdMs = 5 * 60 * 1000

// DurationResult separates wall time from time actually spent working.
type DurationResult struct {
	WallMs      int64
	EffectiveMs int64
	IdleGapsMs  int64
}

// Duration computes wall and effective duration from event timestamps. Any
// gap between consecutive sorted timestamps over the idle threshold counts
// toward IdleGapsMs and is excluded from EffectiveMs. This keeps long
// user-away gaps from inflating duration-based metrics.
func Duration(timestamps []int64) DurationResult {
	if len(timestamps) == 0 {
		return DurationResult{}
	}

	ts := make([]int64, len(timestamps))
	copy(ts, timestamps)
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })

	var idle int64
	for i := 1; i < len(ts); i++ {
		if gap := ts[i] - ts[i-1]; gap > IdleThresholdMs {
			idle += gap
		}
	}

	wall := ts[len(ts)-1] - ts[0]
	return DurationResult{
		WallMs:      wall,
		EffectiveMs: wall - idle,
		IdleGapsMs:  idle,
	}
}

// Timestamps extracts the timestamp of every event.
func Timestamps(events []StoredEvent) []int64 {
	ts := make([]int64, 0, len(events))
	for _, e := range events {
		ts = append(ts, e.T)
	}
	return ts
}
