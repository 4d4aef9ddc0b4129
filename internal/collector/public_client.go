package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/domain"
)

const defaultBaseURL = "https://www.reddit.com"

// PublicClient reads reddit's anonymous .json endpoints. No credentials,
// stricter upstream limits; the fetcher's pacing applies on top.
type PublicClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

type postListing struct {
	Data struct {
		Children []struct {
			Data postData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type postData struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
}

type commentListing struct {
	Data struct {
		Children []struct {
			Kind string      `json:"kind"`
			Data commentData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type commentData struct {
	Author     string  `json:"author"`
	Body       string  `json:"body"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
	Subreddit  string  `json:"subreddit"`
	// Replies is "" for leaf comments and a nested listing otherwise.
	Replies json.RawMessage `json:"replies"`
}

func NewPublicClient(userAgent string) (*PublicClient, error) {
	if userAgent == "" {
		return nil, fmt.Errorf("a user agent is required for public access")
	}
	return &PublicClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		userAgent:  userAgent,
	}, nil
}

func (pc *PublicClient) FetchNewPosts(ctx context.Context, sub string, limit int) ([]domain.Post, domain.Quota, error) {
	url := fmt.Sprintf("%s/r/%s/new.json?limit=%d", pc.baseURL, sub, limit)

	var listing postListing
	quota, err := pc.getJSON(ctx, url, &listing)
	if err != nil {
		return nil, quota, err
	}

	var posts []domain.Post
	for _, child := range listing.Data.Children {
		d := child.Data
		posts = append(posts, domain.Post{
			ID:           d.ID,
			Subreddit:    d.Subreddit,
			Title:        d.Title,
			SelfText:     d.Selftext,
			Author:       d.Author,
			Score:        d.Score,
			UpvoteRatio:  d.UpvoteRatio,
			CommentCount: d.NumComments,
			CreatedUTC:   d.CreatedUTC,
			URL:          d.URL,
			Permalink:    d.Permalink,
		})
	}
	return posts, quota, nil
}

// FetchComments walks the comment tree for one post: top-level comments plus
// their direct replies. "more" stubs (kind != t1) are ignored rather than
// expanded, since each expansion would cost another request.
func (pc *PublicClient) FetchComments(ctx context.Context, postID string, limit int) ([]domain.Comment, domain.Quota, error) {
	url := fmt.Sprintf("%s/comments/%s.json?limit=%d&depth=2", pc.baseURL, postID, limit)

	// The endpoint returns a two-element array: the post listing, then the
	// comment tree.
	var payload []json.RawMessage
	quota, err := pc.getJSON(ctx, url, &payload)
	if err != nil {
		return nil, quota, err
	}
	if len(payload) < 2 {
		return nil, quota, nil
	}

	var listing commentListing
	if err := json.Unmarshal(payload[1], &listing); err != nil {
		return nil, quota, fmt.Errorf("decoding comment tree: %w", err)
	}

	var comments []domain.Comment
	add := func(d commentData) {
		comments = append(comments, domain.Comment{
			Author:     d.Author,
			Body:       d.Body,
			Score:      d.Score,
			CreatedUTC: d.CreatedUTC,
			PostID:     postID,
			Subreddit:  d.Subreddit,
		})
	}
	for _, child := range listing.Data.Children {
		if child.Kind != "t1" {
			continue
		}
		add(child.Data)

		if len(child.Data.Replies) == 0 || child.Data.Replies[0] != '{' {
			continue
		}
		var nested commentListing
		if err := json.Unmarshal(child.Data.Replies, &nested); err != nil {
			continue
		}
		for _, reply := range nested.Data.Children {
			if reply.Kind != "t1" {
				continue
			}
			add(reply.Data)
		}
	}
	return comments, quota, nil
}

func (pc *PublicClient) getJSON(ctx context.Context, url string, out any) (domain.Quota, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Quota{}, err
	}
	req.Header.Set("User-Agent", pc.userAgent)

	resp, err := pc.httpClient.Do(req)
	if err != nil {
		return domain.Quota{}, err
	}
	defer resp.Body.Close()

	quota := quotaFromHeader(resp.Header)
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return quota, &RateLimitError{Remaining: quota.Remaining, ResetSeconds: quota.ResetSeconds}
	case resp.StatusCode >= 500:
		return quota, &ServerError{StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return quota, fmt.Errorf("reddit public access status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return quota, fmt.Errorf("decoding listing: %w", err)
	}
	return quota, nil
}

func quotaFromHeader(h http.Header) domain.Quota {
	rem := h.Get("x-ratelimit-remaining")
	if rem == "" {
		return domain.Quota{}
	}
	q := domain.Quota{Known: true}
	q.Remaining, _ = strconv.ParseFloat(rem, 64)
	q.ResetSeconds, _ = strconv.ParseFloat(h.Get("x-ratelimit-reset"), 64)
	return q
}
