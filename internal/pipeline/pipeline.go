// Package pipeline sequences one analysis snapshot: fetch, annotate,
// analyze, persist.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/collector"
	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/config"
	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/domain"
	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/sentiment"
	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/storage"
	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/trends"
)

// Result summarizes one snapshot run.
type Result struct {
	RunID      int64
	Posts      int
	Comments   int
	Requests   int
	TopKeyword string
	// Degraded marks a run that hit the rate-limit budget and proceeded
	// with partial data.
	Degraded bool
}

type Pipeline struct {
	cfg    config.Config
	client domain.Collector
	scorer *sentiment.Scorer
	store  *storage.Store
	log    *slog.Logger
}

func New(cfg config.Config, client domain.Collector, store *storage.Store, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		client: client,
		scorer: sentiment.NewScorer(),
		store:  store,
		log:    logger,
	}
}

// Run executes one snapshot. Each snapshot gets its own fetcher so request
// accounting starts fresh and no fetcher instance is ever shared across
// overlapping scheduled runs. A batch that fetched nothing is a valid
// outcome: no analysis happens and no run row is written.
func (p *Pipeline) Run(ctx context.Context, subreddits []string) (*Result, error) {
	started := time.Now()

	fetcher := collector.NewFetcher(p.client, collector.Options{
		RequestDelay:   p.cfg.RequestDelay,
		SourceDelay:    p.cfg.SourceDelay,
		DetailDelay:    p.cfg.DetailDelay,
		MaxRetries:     p.cfg.MaxRetries,
		InitialBackoff: p.cfg.InitialBackoff,
	}, p.log)

	batch, err := fetcher.FetchBatch(ctx, subreddits,
		p.cfg.PostLimit, p.cfg.CommentLimit, p.cfg.MaxCommentPosts)
	degraded := false
	if err != nil {
		if errors.Is(err, collector.ErrRateLimitBudget) && len(batch.Posts) > 0 {
			// Keep what was fetched; the run is marked degraded.
			p.log.Error("rate limit budget exhausted, continuing with partial data", "err", err)
			degraded = true
		} else {
			return nil, fmt.Errorf("fetching batch: %w", err)
		}
	}
	if len(batch.Posts) == 0 {
		p.log.Warn("no posts fetched, skipping analysis")
		return &Result{Requests: fetcher.Requests()}, nil
	}

	posts := p.scorer.AnnotatePosts(batch.Posts)
	comments := p.scorer.AnnotateComments(batch.Comments)

	keywords := map[string][]domain.TrendEntry{
		storage.ScopeGlobal:   trends.AnalyzeTrendingKeywords(posts, p.cfg.MinKeywordFreq),
		storage.ScopeComments: trends.AnalyzeCommentTrends(comments, p.cfg.MinKeywordFreq),
		storage.ScopeEmerging: trends.EmergingTopics(posts, p.cfg.EmergingWindowHours),
	}
	for sub, summary := range trends.TrendsBySubreddit(posts) {
		keywords[storage.SubredditScope(sub)] = summary.TopKeywords
	}
	scored := trends.TopTrendingPosts(posts, len(posts))

	runID, err := p.store.SaveRun(storage.RunRecord{
		StartedAt:    started,
		RequestCount: fetcher.Requests(),
		Posts:        scored,
		Comments:     comments,
		Keywords:     keywords,
	})
	if err != nil {
		return nil, fmt.Errorf("saving run: %w", err)
	}

	res := &Result{
		RunID:    runID,
		Posts:    len(posts),
		Comments: len(comments),
		Requests: fetcher.Requests(),
		Degraded: degraded,
	}
	if global := keywords[storage.ScopeGlobal]; len(global) > 0 {
		res.TopKeyword = global[0].Keyword
	}
	p.log.Info("snapshot complete",
		"run", res.RunID, "posts", res.Posts, "comments", res.Comments,
		"requests", res.Requests, "top_keyword", res.TopKeyword, "degraded", res.Degraded)
	return res, nil
}
