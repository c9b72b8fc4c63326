package fuzzy

import "testing"

func TestLevenshteinDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"Report", "report", 0},
		{"café", "cafe", 0},
		{"meeting", "meting", 1},
	}
	for _, tt := range tests {
		if got := LevenshteinDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestMatchTask(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		desc  string
		cat   string
		tags  []string
		want  bool
	}{
		{"substring", "report", "Write quarterly report", "work", nil, true},
		{"typo", "reprot", "Write quarterly report", "work", nil, true},
		{"category", "errands", "Buy milk", "Errands", nil, true},
		{"tag", "urgnt", "Call bank", "", []string{"urgent"}, true},
		{"empty query", "", "anything", "", nil, true},
		{"no match", "holiday", "Write quarterly report", "work", []string{"finance"}, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := MatchTask(tt.query, tt.desc, tt.cat, tt.tags); got != tt.want {
				t.Errorf("MatchTask(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestRelevanceScoreOrdersExactAboveFuzzy(t *testing.T) {
	t.Parallel()

	exact := RelevanceScore("report", "Write report", "work", nil)
	fuzzy := RelevanceScore("report", "Write reprot", "work", nil)
	none := RelevanceScore("report", "Buy milk", "home", nil)

	if !(exact > fuzzy && fuzzy > none) {
		t.Fatalf("scores exact=%v fuzzy=%v none=%v", exact, fuzzy, none)
	}
}

func TestThreshold(t *testing.T) {
	t.Parallel()
	if Threshold("abc") != 1 || Threshold("abcd") != 2 || Threshold("abcdefgh") != 3 {
		t.Fatal("unexpected thresholds")
	}
}
