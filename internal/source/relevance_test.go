package source

import "testing"

func TestRelevance(t *testing.T) {
	cases := []struct {
		name   string
		query  string
		fields []string
		want   float64
	}{
		{"phrase_hit", "billing error", []string{"Got a billing error after upgrading"}, 1},
		{"all_terms_scattered", "billing error", []string{"the error came from billing"}, 0.8},
		{"partial_terms", "billing error crash", []string{"billing page is slow"}, 0.5 * 1.0 / 3.0},
		{"no_match", "billing", []string{"great product, love it"}, 0},
		{"empty_query", "", []string{"anything"}, 0},
		{"empty_fields", "billing", []string{"", ""}, 0},
		{"case_insensitive", "Billing", []string{"BILLING ISSUE"}, 1},
		{"multiple_fields", "sync", []string{"title here", "body mentions sync"}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Relevance(tc.query, tc.fields...)
			if got != tc.want {
				t.Fatalf("Relevance(%q, %v) = %v, want %v", tc.query, tc.fields, got, tc.want)
			}
		})
	}
}
