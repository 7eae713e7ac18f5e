package engine

import "testing"

func TestBuildSortedTriggersLongestFirstLexicographicTieBreak(t *testing.T) {
	entries, maxLen := buildSortedTriggers(map[string]string{
		"-h":  "H",
		"-hi": "Hi",
		"-b":  "B",
		"-a":  "A",
	})
	if maxLen != 3 {
		t.Fatalf("maxLen = %d, want 3", maxLen)
	}
	want := []string{"-hi", "-a", "-b", "-h"}
	if len(entries) != len(want) {
		t.Fatalf("len(entries) = %d, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if e.trigger != want[i] {
			t.Errorf("entries[%d].trigger = %q, want %q", i, e.trigger, want[i])
		}
	}
}

func TestFindMatchPrefersLongestSuffix(t *testing.T) {
	entries, _ := buildSortedTriggers(map[string]string{"-h": "H", "-hi": "Hi"})
	match, ok := findMatch(entries, "x-hi")
	if !ok || match.trigger != "-hi" {
		t.Fatalf("findMatch() = %+v, %v, want -hi/true", match, ok)
	}
}

func TestFindMatchNoSuffixMatch(t *testing.T) {
	entries, _ := buildSortedTriggers(map[string]string{"-hi": "Hi"})
	if _, ok := findMatch(entries, "hello"); ok {
		t.Fatal("findMatch() matched, want no match")
	}
}

func TestTruncateToLen(t *testing.T) {
	if got := truncateToLen("hello", 3); got != "llo" {
		t.Errorf("truncateToLen(hello, 3) = %q, want llo", got)
	}
	if got := truncateToLen("hi", 5); got != "hi" {
		t.Errorf("truncateToLen(hi, 5) = %q, want hi (shorter than max)", got)
	}
	if got := truncateToLen("hi", 0); got != "" {
		t.Errorf("truncateToLen(hi, 0) = %q, want empty", got)
	}
}
