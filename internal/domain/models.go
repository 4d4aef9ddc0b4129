package domain

import "context"

// Post is the normalized record produced by the fetcher. It is immutable
// once returned; downstream stages that attach scores or sentiment work on
// copies, never on the slice they were handed.
type Post struct {
	ID             string  `json:"id"`
	Subreddit      string  `json:"subreddit"`
	Title          string  `json:"title"`
	SelfText       string  `json:"selftext,omitempty"`
	Author         string  `json:"author"`
	Score          int     `json:"score"`
	UpvoteRatio    float64 `json:"upvote_ratio"`
	CommentCount   int     `json:"comment_count"`
	CreatedUTC     float64 `json:"created_utc"`
	URL            string  `json:"url"`
	Permalink      string  `json:"permalink"`
	SentimentScore float64 `json:"sentiment_score,omitempty"`
	SentimentLabel string  `json:"sentiment_label,omitempty"`
}

// Comment is a nested detail record belonging to one Post.
type Comment struct {
	Author         string  `json:"author"`
	Body           string  `json:"body"`
	Score          int     `json:"score"`
	CreatedUTC     float64 `json:"created_utc"`
	PostID         string  `json:"post_id"`
	PostTitle      string  `json:"post_title,omitempty"`
	Subreddit      string  `json:"subreddit,omitempty"`
	SentimentScore float64 `json:"sentiment_score,omitempty"`
	SentimentLabel string  `json:"sentiment_label,omitempty"`
}

// TrendEntry is one ranked keyword with its occurrence count.
type TrendEntry struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// SubredditTrends summarizes one subreddit's slice of a run. Rebuilt in full
// on every analysis pass.
type SubredditTrends struct {
	Subreddit    string       `json:"subreddit"`
	PostCount    int          `json:"post_count"`
	TopKeywords  []TrendEntry `json:"top_keywords"`
	AverageScore float64      `json:"average_score"`
}

// Quota is the upstream rate-limit hint attached to a response. Known is
// false when the upstream sent no usable headers.
type Quota struct {
	Remaining    float64
	ResetSeconds float64
	Known        bool
}

// Collector defines the raw upstream operations. Implementations do no
// pacing or retrying of their own; that is the fetcher's job.
type Collector interface {
	FetchNewPosts(ctx context.Context, subreddit string, limit int) ([]Post, Quota, error)
	FetchComments(ctx context.Context, postID string, limit int) ([]Comment, Quota, error)
}
