package collector

import (
	"context"
	"fmt"
	"net/http"

	"github.com/loganintech/go-reddit/v2/reddit"

	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/domain"
)

// APIClient uses the authenticated reddit API, which carries a higher quota
// than anonymous access. Pacing and retries still live in the fetcher.
type APIClient struct {
	client *reddit.Client
}

func NewAPIClient(id, secret, user, pass, userAgent string) (*APIClient, error) {
	creds := reddit.Credentials{ID: id, Secret: secret, Username: user, Password: pass}

	client, err := reddit.NewClient(creds, reddit.WithUserAgent(userAgent))
	if err != nil {
		return nil, err
	}
	return &APIClient{client: client}, nil
}

func (ac *APIClient) FetchNewPosts(ctx context.Context, sub string, limit int) ([]domain.Post, domain.Quota, error) {
	posts, resp, err := ac.client.Subreddit.NewPosts(ctx, sub, &reddit.ListOptions{Limit: limit})
	quota := apiQuota(resp)
	if err != nil {
		return nil, quota, mapAPIError(resp, err)
	}

	var result []domain.Post
	for _, p := range posts {
		result = append(result, domain.Post{
			ID:           p.ID,
			Subreddit:    p.SubredditName,
			Title:        p.Title,
			SelfText:     p.Body,
			Author:       p.Author,
			Score:        p.Score,
			UpvoteRatio:  float64(p.UpvoteRatio),
			CommentCount: p.NumberOfComments,
			CreatedUTC:   createdUnix(p.Created),
			URL:          p.URL,
			Permalink:    p.Permalink,
		})
	}
	return result, quota, nil
}

func (ac *APIClient) FetchComments(ctx context.Context, postID string, limit int) ([]domain.Comment, domain.Quota, error) {
	pc, resp, err := ac.client.Post.Get(ctx, postID)
	quota := apiQuota(resp)
	if err != nil {
		return nil, quota, mapAPIError(resp, fmt.Errorf("authenticated api error: %w", err))
	}

	var comments []domain.Comment
	add := func(c *reddit.Comment) {
		comments = append(comments, domain.Comment{
			Author:     c.Author,
			Body:       c.Body,
			Score:      c.Score,
			CreatedUTC: createdUnix(c.Created),
			PostID:     postID,
			Subreddit:  c.SubredditName,
		})
	}
	// Top-level comments plus one reply level, same shape as public access.
	for _, c := range pc.Comments {
		if len(comments) >= limit {
			break
		}
		add(c)
		for _, r := range c.Replies.Comments {
			if len(comments) >= limit {
				break
			}
			add(r)
		}
	}
	return comments, quota, nil
}

func createdUnix(ts *reddit.Timestamp) float64 {
	if ts == nil {
		return 0
	}
	return float64(ts.Time.Unix())
}

func apiQuota(resp *reddit.Response) domain.Quota {
	if resp == nil || resp.Response == nil {
		return domain.Quota{}
	}
	return quotaFromHeader(resp.Header)
}

// mapAPIError folds go-reddit failures into the shared error taxonomy so the
// retry loop treats both client implementations the same way.
func mapAPIError(resp *reddit.Response, err error) error {
	if resp == nil || resp.Response == nil {
		return err
	}
	q := quotaFromHeader(resp.Header)
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{Remaining: q.Remaining, ResetSeconds: q.ResetSeconds}
	case resp.StatusCode >= 500:
		return &ServerError{StatusCode: resp.StatusCode}
	}
	return err
}
