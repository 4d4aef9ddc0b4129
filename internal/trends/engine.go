// Package trends derives ranked keyword signals and time-decayed engagement
// scores from fetched posts and comments. Every exported function is a pure
// function of its inputs, so callers may score unrelated slices concurrently.
package trends

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/domain"
)

const (
	globalKeywordLimit    = 30
	subredditKeywordLimit = 10
	emergingKeywordLimit  = 15

	// Per-subreddit and emerging-window analyses use this looser fixed
	// floor instead of the caller's global minimum: local trends should
	// surface more permissively than global ones. The two knobs are
	// deliberately separate.
	localMinFrequency = 2
)

var (
	nonWord = regexp.MustCompile(`\W+`)
	numeric = regexp.MustCompile(`^[0-9]+$`)
)

// Frequency counts keyword occurrences while remembering first-encountered
// order, which is what keeps equal-count rankings deterministic.
type Frequency struct {
	counts map[string]int
	order  []string
}

func NewFrequency() *Frequency {
	return &Frequency{counts: make(map[string]int)}
}

func (f *Frequency) Add(keyword string, n int) {
	if _, seen := f.counts[keyword]; !seen {
		f.order = append(f.order, keyword)
	}
	f.counts[keyword] += n
}

func (f *Frequency) Count(keyword string) int { return f.counts[keyword] }

func (f *Frequency) Len() int { return len(f.order) }

// Entries returns keyword/count pairs in first-encountered order.
func (f *Frequency) Entries() []domain.TrendEntry {
	entries := make([]domain.TrendEntry, 0, len(f.order))
	for _, k := range f.order {
		entries = append(entries, domain.TrendEntry{Keyword: k, Count: f.counts[k]})
	}
	return entries
}

// ExtractKeywords tokenizes free text into counted keywords: lower-cased,
// punctuation stripped, tokens of length <= 3, stop words and purely numeric
// tokens discarded.
func ExtractKeywords(text string) *Frequency {
	freq := NewFrequency()
	cleaned := nonWord.ReplaceAllString(strings.ToLower(text), " ")
	for _, token := range strings.Fields(cleaned) {
		if len(token) <= 3 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		if numeric.MatchString(token) {
			continue
		}
		freq.Add(token, 1)
	}
	return freq
}

// MergeFrequencies combines counts additively. Keys absent from one input
// default to zero, so the merge is commutative and associative.
func MergeFrequencies(freqs ...*Frequency) *Frequency {
	merged := NewFrequency()
	for _, f := range freqs {
		if f == nil {
			continue
		}
		for _, k := range f.order {
			merged.Add(k, f.counts[k])
		}
	}
	return merged
}

// RankKeywords sorts by count descending and truncates to limit. The sort is
// stable: equal counts keep their first-encountered order.
func RankKeywords(freq *Frequency, limit int) []domain.TrendEntry {
	entries := freq.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if limit >= 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// AnalyzeTrendingKeywords merges title and body keywords across all posts,
// drops anything below minFrequency and returns at most 30 ranked entries.
func AnalyzeTrendingKeywords(posts []domain.Post, minFrequency int) []domain.TrendEntry {
	return analyzePosts(posts, minFrequency, globalKeywordLimit)
}

// AnalyzeCommentTrends is the same analysis applied to comment bodies only.
func AnalyzeCommentTrends(comments []domain.Comment, minFrequency int) []domain.TrendEntry {
	merged := NewFrequency()
	for _, c := range comments {
		merged = MergeFrequencies(merged, ExtractKeywords(c.Body))
	}
	return RankKeywords(withFloor(merged, minFrequency), globalKeywordLimit)
}

// TrendsBySubreddit groups posts by subreddit and summarizes each group
// with its top keywords and mean raw score.
func TrendsBySubreddit(posts []domain.Post) map[string]domain.SubredditTrends {
	grouped := make(map[string][]domain.Post)
	for _, p := range posts {
		grouped[p.Subreddit] = append(grouped[p.Subreddit], p)
	}

	out := make(map[string]domain.SubredditTrends, len(grouped))
	for sub, group := range grouped {
		var total float64
		for _, p := range group {
			total += float64(p.Score)
		}
		out[sub] = domain.SubredditTrends{
			Subreddit:    sub,
			PostCount:    len(group),
			TopKeywords:  analyzePosts(group, localMinFrequency, subredditKeywordLimit),
			AverageScore: total / float64(len(group)),
		}
	}
	return out
}

// TrendingScore is the time-decayed engagement metric:
//
//	engagement / ageHours^1.5  with  engagement = score + 2*comments
//
// Age is floored at one hour, so a post created this second decays as if it
// were an hour old instead of dividing by zero.
func TrendingScore(p domain.Post, now time.Time) float64 {
	ageHours := (float64(now.Unix()) - p.CreatedUTC) / 3600
	if ageHours < 1 {
		ageHours = 1
	}
	engagement := float64(p.Score + p.CommentCount*2)
	return engagement / math.Pow(ageHours, 1.5)
}

// ScoredPost pairs a post with its trending score. Scoring builds new
// records; the input posts are never touched.
type ScoredPost struct {
	domain.Post
	TrendingScore float64 `json:"trending_score"`
}

// TopTrendingPosts scores every post against the current time, ranks them
// descending and truncates to limit.
func TopTrendingPosts(posts []domain.Post, limit int) []ScoredPost {
	return topTrendingPostsAt(posts, limit, time.Now())
}

func topTrendingPostsAt(posts []domain.Post, limit int, now time.Time) []ScoredPost {
	scored := make([]ScoredPost, 0, len(posts))
	for _, p := range posts {
		scored = append(scored, ScoredPost{Post: p, TrendingScore: TrendingScore(p, now)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].TrendingScore > scored[j].TrendingScore
	})
	if limit >= 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// EmergingTopics analyzes only posts created within the rolling window. An
// empty window yields an empty result, never an error.
func EmergingTopics(posts []domain.Post, hoursThreshold float64) []domain.TrendEntry {
	return emergingTopicsAt(posts, hoursThreshold, time.Now())
}

func emergingTopicsAt(posts []domain.Post, hoursThreshold float64, now time.Time) []domain.TrendEntry {
	cutoff := float64(now.Unix()) - hoursThreshold*3600
	var recent []domain.Post
	for _, p := range posts {
		if p.CreatedUTC > cutoff {
			recent = append(recent, p)
		}
	}
	if len(recent) == 0 {
		return nil
	}
	return analyzePosts(recent, localMinFrequency, emergingKeywordLimit)
}

func analyzePosts(posts []domain.Post, minFrequency, limit int) []domain.TrendEntry {
	merged := NewFrequency()
	for _, p := range posts {
		merged = MergeFrequencies(merged, ExtractKeywords(p.Title), ExtractKeywords(p.SelfText))
	}
	return RankKeywords(withFloor(merged, minFrequency), limit)
}

// withFloor drops keywords below the frequency floor, preserving order.
// A floor of zero or one keeps everything.
func withFloor(f *Frequency, min int) *Frequency {
	if min <= 1 {
		return f
	}
	kept := NewFrequency()
	for _, k := range f.order {
		if f.counts[k] >= min {
			kept.Add(k, f.counts[k])
		}
	}
	return kept
}
