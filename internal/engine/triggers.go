package engine

import "sort"

// triggerEntry is one (trigger, expansion) pair in longest-first,
// lexicographic-tie-break order (spec §3, §4.4 invariant 4).
type triggerEntry struct {
	trigger string
	output  string
}

// buildSortedTriggers sorts a trigger set by descending trigger length,
// breaking ties lexicographically so matching is deterministic.
func buildSortedTriggers(triggers map[string]string) ([]triggerEntry, int) {
	entries := make([]triggerEntry, 0, len(triggers))
	maxLen := 0
	for trigger, output := range triggers {
		entries = append(entries, triggerEntry{trigger: trigger, output: output})
		if len(trigger) > maxLen {
			maxLen = len(trigger)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].trigger) != len(entries[j].trigger) {
			return len(entries[i].trigger) > len(entries[j].trigger)
		}
		return entries[i].trigger < entries[j].trigger
	})
	return entries, maxLen
}

// findMatch walks entries (already longest-first, lexicographic-tie)
// and returns the first trigger that is a suffix of buffer — spec §4.4
// step 8 / invariant 4.
func findMatch(entries []triggerEntry, buffer string) (triggerEntry, bool) {
	for _, e := range entries {
		if e.trigger == "" {
			continue
		}
		if len(e.trigger) > len(buffer) {
			continue
		}
		if buffer[len(buffer)-len(e.trigger):] == e.trigger {
			return e, true
		}
	}
	return triggerEntry{}, false
}

func truncateToLen(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[len(s)-maxLen:]
}
