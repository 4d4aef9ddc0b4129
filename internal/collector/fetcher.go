package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/domain"
)

const (
	// Once the upstream reports fewer remaining requests than this, an
	// extra cooldown is inserted before the next call.
	cooldownThreshold = 10
	cooldownDelay     = 5 * time.Second
)

// Options are the fetcher's pacing and retry knobs. Zero values fall back
// to the documented defaults.
type Options struct {
	RequestDelay   time.Duration // minimum gap between consecutive upstream calls
	SourceDelay    time.Duration // extra gap between subreddits
	DetailDelay    time.Duration // extra gap between per-post comment fetches
	MaxRetries     int           // total attempts per call site
	InitialBackoff time.Duration
}

func (o *Options) withDefaults() {
	if o.RequestDelay <= 0 {
		o.RequestDelay = 2 * time.Second
	}
	if o.SourceDelay <= 0 {
		o.SourceDelay = time.Second
	}
	if o.DetailDelay <= 0 {
		o.DetailDelay = 500 * time.Millisecond
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = 2 * time.Second
	}
}

// budget is the per-fetcher request accounting. It is only touched from the
// fetcher's single sequential call path, so it needs no locking as long as
// one Fetcher is not shared across goroutines.
type budget struct {
	requests      int
	lastRemaining float64
	lastResetSecs float64
	hasHint       bool
}

// Fetcher pulls posts and comments from a Collector while holding every
// upstream call under one request-rate ceiling. Acquisition is strictly
// sequential: one outstanding call at a time, paced by the limiter.
type Fetcher struct {
	client  domain.Collector
	limiter *rate.Limiter
	opts    Options
	log     *slog.Logger
	budget  budget

	// sleep is swapped out in tests so backoff timing can be asserted
	// without waiting it out.
	sleep func(context.Context, time.Duration) error
}

// Batch is the combined result of one acquisition pass.
type Batch struct {
	Posts    []domain.Post
	Comments []domain.Comment
}

func NewFetcher(client domain.Collector, opts Options, logger *slog.Logger) *Fetcher {
	opts.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(opts.RequestDelay), 1),
		opts:    opts,
		log:     logger,
		sleep:   sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Requests reports how many upstream calls this fetcher has issued.
func (f *Fetcher) Requests() int { return f.budget.requests }

// pace blocks until the next upstream call is allowed. The cooldown check
// runs first and is independent of the retry logic.
func (f *Fetcher) pace(ctx context.Context) error {
	if f.budget.hasHint && f.budget.lastRemaining < cooldownThreshold {
		f.log.Warn("quota running low, cooling down",
			"remaining", f.budget.lastRemaining, "cooldown", cooldownDelay)
		if err := f.sleep(ctx, cooldownDelay); err != nil {
			return err
		}
	}
	return f.limiter.Wait(ctx)
}

func (f *Fetcher) record(q domain.Quota) {
	f.budget.requests++
	if q.Known {
		f.budget.lastRemaining = q.Remaining
		f.budget.lastResetSecs = q.ResetSeconds
		f.budget.hasHint = true
	}
}

// callWithRetry runs one upstream operation under the pacing and retry
// contract. A 429 waits at least the signaled reset plus one second, then
// doubles the backoff; a 5xx waits the current backoff and grows it 1.5x;
// anything else propagates immediately. The two growth factors apply to a
// single accumulated backoff value, never reset mid-chain.
func (f *Fetcher) callWithRetry(ctx context.Context, op func(context.Context) (domain.Quota, error)) error {
	backoff := f.opts.InitialBackoff
	for attempt := 1; ; attempt++ {
		if err := f.pace(ctx); err != nil {
			return err
		}
		quota, err := op(ctx)
		f.record(quota)
		if err == nil {
			return nil
		}

		var rle *RateLimitError
		var srv *ServerError
		switch {
		case errors.As(err, &rle):
			if attempt >= f.opts.MaxRetries {
				return fmt.Errorf("%w after %d attempts: %v", ErrRateLimitBudget, attempt, err)
			}
			wait := time.Duration(rle.ResetSeconds)*time.Second + time.Second
			if backoff > wait {
				wait = backoff
			}
			f.log.Warn("rate limited, backing off",
				"wait", wait, "attempt", attempt, "remaining", rle.Remaining)
			if serr := f.sleep(ctx, wait); serr != nil {
				return serr
			}
			backoff *= 2
		case errors.As(err, &srv):
			if attempt >= f.opts.MaxRetries {
				return fmt.Errorf("server error persisted after %d attempts: %w", attempt, err)
			}
			f.log.Warn("server error, backing off",
				"status", srv.StatusCode, "wait", backoff, "attempt", attempt)
			if serr := f.sleep(ctx, backoff); serr != nil {
				return serr
			}
			backoff = backoff * 3 / 2
		default:
			return err
		}
	}
}

// FetchSubredditPosts fetches the newest posts from each subreddit in order.
// A failing subreddit is logged and skipped so one bad source cannot sink
// the batch; the returned error is non-nil only for a cancelled context or
// an exhausted rate-limit budget, and in both cases the posts gathered so
// far are still returned.
func (f *Fetcher) FetchSubredditPosts(ctx context.Context, subreddits []string, limitPerSub int) ([]domain.Post, error) {
	var all []domain.Post
	for i, sub := range subreddits {
		if i > 0 {
			if err := f.sleep(ctx, f.opts.SourceDelay); err != nil {
				return all, err
			}
		}

		var posts []domain.Post
		err := f.callWithRetry(ctx, func(ctx context.Context) (domain.Quota, error) {
			var q domain.Quota
			var err error
			posts, q, err = f.client.FetchNewPosts(ctx, sub, limitPerSub)
			return q, err
		})
		if err != nil {
			if errors.Is(err, ErrRateLimitBudget) || ctx.Err() != nil {
				return all, err
			}
			f.log.Error("subreddit fetch failed, skipping", "subreddit", sub, "err", err)
			continue
		}

		valid := 0
		for _, p := range posts {
			if p.ID == "" || p.Title == "" {
				f.log.Warn("dropping malformed post", "subreddit", sub)
				continue
			}
			all = append(all, p)
			valid++
		}
		f.log.Info("fetched subreddit", "subreddit", sub, "posts", valid)
	}
	return all, nil
}

// FetchPostComments fetches one post's comment tree down to one reply level.
// It never fails its caller: any error is logged and mapped to an empty
// result for that post only.
func (f *Fetcher) FetchPostComments(ctx context.Context, postID string, limit int) []domain.Comment {
	comments, err := f.fetchComments(ctx, postID, limit)
	if err != nil {
		f.log.Error("comment fetch failed", "post", postID, "err", err)
		return nil
	}
	return comments
}

func (f *Fetcher) fetchComments(ctx context.Context, postID string, limit int) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := f.callWithRetry(ctx, func(ctx context.Context) (domain.Quota, error) {
		var q domain.Quota
		var err error
		comments, q, err = f.client.FetchComments(ctx, postID, limit)
		return q, err
	})
	if err != nil {
		return nil, err
	}

	kept := comments[:0]
	for _, c := range comments {
		if tombstoned(c.Body) {
			continue
		}
		kept = append(kept, c)
	}
	return kept, nil
}

func tombstoned(body string) bool {
	return body == "" || body == "[deleted]" || body == "[removed]"
}

// FetchBatch runs a full acquisition pass: all posts first, then comment
// expansion for at most maxCommentPosts parents. The parent cap is the main
// defense against quota exhaustion no matter how many posts came back. On a
// rate-limit budget error the batch gathered so far is returned with the
// error so no progress is lost.
func (f *Fetcher) FetchBatch(ctx context.Context, subreddits []string, postLimit, commentLimit, maxCommentPosts int) (Batch, error) {
	posts, err := f.FetchSubredditPosts(ctx, subreddits, postLimit)
	batch := Batch{Posts: posts}
	if err != nil {
		return batch, err
	}
	if len(posts) == 0 {
		f.log.Info("no posts fetched, skipping comment expansion")
		return batch, nil
	}

	parents := posts
	if maxCommentPosts >= 0 && len(parents) > maxCommentPosts {
		parents = parents[:maxCommentPosts]
	}
	for i, p := range parents {
		if i > 0 {
			if err := f.sleep(ctx, f.opts.DetailDelay); err != nil {
				return batch, err
			}
		}
		comments, err := f.fetchComments(ctx, p.ID, commentLimit)
		if err != nil {
			if errors.Is(err, ErrRateLimitBudget) || ctx.Err() != nil {
				return batch, err
			}
			f.log.Error("comment fetch failed, skipping post", "post", p.ID, "err", err)
			continue
		}
		for j := range comments {
			if comments[j].PostID == "" {
				comments[j].PostID = p.ID
			}
			if comments[j].Subreddit == "" {
				comments[j].Subreddit = p.Subreddit
			}
			comments[j].PostTitle = p.Title
		}
		batch.Comments = append(batch.Comments, comments...)
	}

	f.log.Info("batch complete",
		"posts", len(batch.Posts), "comments", len(batch.Comments), "requests", f.Requests())
	return batch, nil
}
