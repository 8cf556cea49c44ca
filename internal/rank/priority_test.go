package rank

import (
	"math"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestPriorityScoreBounds(t *testing.T) {
	p := DefaultParams()
	cases := []struct {
		name      string
		sentiment float64
		relevance float64
		age       time.Duration
	}{
		{"worst_case_high", -1, 1, 0},
		{"best_case_low", 1, 1, 0},
		{"irrelevant", -1, 0, 0},
		{"ancient", -1, 1, 365 * 24 * time.Hour},
		{"out_of_range_inputs", -5, 3, time.Hour},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PriorityScore(tc.sentiment, tc.relevance, testNow.Add(-tc.age), testNow, p)
			if got < 0 || got > 100 {
				t.Fatalf("score %v out of [0,100]", got)
			}
		})
	}
}

func TestPriorityScoreNegativeSentimentRanksHigher(t *testing.T) {
	p := DefaultParams()
	created := testNow.Add(-time.Hour)

	neg := PriorityScore(-0.8, 0.9, created, testNow, p)
	pos := PriorityScore(0.8, 0.9, created, testNow, p)
	if neg <= pos {
		t.Fatalf("negative sentiment should outrank positive: neg=%v pos=%v", neg, pos)
	}
}

func TestPriorityScoreMultiplicative(t *testing.T) {
	p := DefaultParams()
	created := testNow.Add(-time.Hour)

	// Zero relevance zeroes the whole score regardless of urgency.
	if got := PriorityScore(-1, 0, created, testNow, p); got != 0 {
		t.Fatalf("zero relevance should give 0, got %v", got)
	}
	// Maximally positive sentiment gives zero urgency.
	if got := PriorityScore(1, 1, created, testNow, p); got != 0 {
		t.Fatalf("sentiment=1 should give 0, got %v", got)
	}
}

func TestRecencyDecay(t *testing.T) {
	p := Params{RecencyHalfLife: 72 * time.Hour, RecencyFloor: 0.05}

	fresh := recencyWeight(testNow, testNow, p)
	if fresh != 1 {
		t.Fatalf("age 0 weight = %v, want 1", fresh)
	}

	half := recencyWeight(testNow.Add(-72*time.Hour), testNow, p)
	if math.Abs(half-0.5) > 1e-9 {
		t.Fatalf("weight at half-life = %v, want 0.5", half)
	}

	// Strictly decreasing with age until the floor kicks in.
	prev := fresh
	for _, age := range []time.Duration{time.Hour, 24 * time.Hour, 72 * time.Hour, 150 * time.Hour} {
		w := recencyWeight(testNow.Add(-age), testNow, p)
		if w >= prev {
			t.Fatalf("weight not decreasing: age=%v w=%v prev=%v", age, w, prev)
		}
		prev = w
	}

	old := recencyWeight(testNow.Add(-10*365*24*time.Hour), testNow, p)
	if old != 0.05 {
		t.Fatalf("ancient item weight = %v, want floor 0.05", old)
	}
}

func TestRecencyFutureTimestamp(t *testing.T) {
	p := DefaultParams()
	if w := recencyWeight(testNow.Add(time.Hour), testNow, p); w != 1 {
		t.Fatalf("future timestamp weight = %v, want 1", w)
	}
}

func TestPriorityScoreDeterministic(t *testing.T) {
	p := DefaultParams()
	created := testNow.Add(-36 * time.Hour)
	a := PriorityScore(-0.4, 0.7, created, testNow, p)
	b := PriorityScore(-0.4, 0.7, created, testNow, p)
	if a != b {
		t.Fatalf("score not deterministic: %v vs %v", a, b)
	}
}
