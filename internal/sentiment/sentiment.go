package sentiment

import (
	"github.com/jonreiter/govader"

	"feedbackradar-engine/internal/domain"
)

// Classifier scores free text on -1..1 and buckets it into a label.
// The engine treats the scoring algorithm as a black box.
type Classifier interface {
	Classify(text string) (score float64, label domain.SentimentLabel)
}

// VADER's conventional neutral band.
const neutralBand = 0.05

// Lexicon wraps the govader rule-based scorer.
type Lexicon struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewLexicon() *Lexicon {
	return &Lexicon{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (l *Lexicon) Classify(text string) (float64, domain.SentimentLabel) {
	score := l.analyzer.PolarityScores(text).Compound
	return score, Label(score)
}

// Label maps a compound score onto the three-way label.
func Label(score float64) domain.SentimentLabel {
	switch {
	case score <= -neutralBand:
		return domain.SentimentNegative
	case score >= neutralBand:
		return domain.SentimentPositive
	default:
		return domain.SentimentNeutral
	}
}
