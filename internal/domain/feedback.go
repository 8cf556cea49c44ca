package domain

import "time"

type SentimentLabel string

const (
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentPositive SentimentLabel = "positive"
)

// RawItem is what a source adapter returns: unscored, unfiltered.
// URL is the natural dedup key downstream.
type RawItem struct {
	Author    string
	Content   string
	URL       string
	CreatedAt time.Time
	// Relevance is 0..1, meaningful only when HasRelevance is set.
	// Adapters that judge keyword match themselves set both; for the
	// rest the dispatcher fills it in with the shared text heuristic.
	// A judged 0 is a verdict, not an unset field.
	Relevance    float64
	HasRelevance bool
}

// FeedbackItem is a RawItem after classification and scoring, as it
// flows into the insertion gate. Persisted rows are never mutated by
// this engine afterwards.
type FeedbackItem struct {
	Source         string         `json:"source"`
	Keyword        string         `json:"keyword"`
	Author         string         `json:"author"`
	Content        string         `json:"content"`
	URL            string         `json:"url"`
	CreatedAt      time.Time      `json:"created_at"`
	SentimentScore float64        `json:"sentiment_score"` // -1..1
	SentimentLabel SentimentLabel `json:"sentiment_label"`
	Relevance      float64        `json:"relevance_score"` // 0..1
	Priority       float64        `json:"priority_score"`  // 0..100, derived
}
