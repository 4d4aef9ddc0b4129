// Package sentiment attaches VADER compound scores to posts and comments.
// The scores are display-only; nothing in the trend math reads them.
package sentiment

import (
	"github.com/jonreiter/govader"

	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/domain"
)

// Standard VADER thresholds for the compound score.
const (
	positiveFloor = 0.05
	negativeCeil  = -0.05
)

// Scorer wraps a VADER analyzer. One Scorer is safe to reuse across calls.
type Scorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewScorer() *Scorer {
	return &Scorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Score returns the compound sentiment in [-1, 1].
func (s *Scorer) Score(text string) float64 {
	return s.analyzer.PolarityScores(text).Compound
}

// Label maps a compound score to its display category.
func Label(score float64) string {
	switch {
	case score >= positiveFloor:
		return "positive"
	case score <= negativeCeil:
		return "negative"
	default:
		return "neutral"
	}
}

// AnnotatePosts returns annotated copies; the input slice is left untouched.
func (s *Scorer) AnnotatePosts(posts []domain.Post) []domain.Post {
	annotated := make([]domain.Post, len(posts))
	for i, p := range posts {
		score := s.Score(p.Title + " " + p.SelfText)
		p.SentimentScore = score
		p.SentimentLabel = Label(score)
		annotated[i] = p
	}
	return annotated
}

// AnnotateComments returns annotated copies; the input slice is left untouched.
func (s *Scorer) AnnotateComments(comments []domain.Comment) []domain.Comment {
	annotated := make([]domain.Comment, len(comments))
	for i, c := range comments {
		score := s.Score(c.Body)
		c.SentimentScore = score
		c.SentimentLabel = Label(score)
		annotated[i] = c
	}
	return annotated
}
