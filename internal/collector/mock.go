package collector

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/domain"
)

// MockClient implements domain.Collector with fake data for demos and
// offline runs.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

var mockTopics = []string{
	"open source release shakes things up",
	"benchmark results spark heated debate",
	"security incident postmortem published",
	"performance tuning deep dive",
}

func (mc *MockClient) FetchNewPosts(ctx context.Context, sub string, limit int) ([]domain.Post, domain.Quota, error) {
	// Simulate a little network latency
	time.Sleep(100 * time.Millisecond)

	now := float64(time.Now().Unix())
	var posts []domain.Post
	for i := 0; i < limit; i++ {
		posts = append(posts, domain.Post{
			ID:           fmt.Sprintf("mock_%s_%d", sub, i),
			Subreddit:    sub,
			Title:        fmt.Sprintf("[%s] %s #%d", sub, mockTopics[i%len(mockTopics)], i),
			SelfText:     "Simulated discussion body about releases, benchmarks and tooling.",
			Author:       "simulated_user",
			Score:        rand.Intn(500),
			UpvoteRatio:  0.5 + rand.Float64()/2,
			CommentCount: rand.Intn(50),
			CreatedUTC:   now - float64(rand.Intn(12*3600)),
			URL:          "http://localhost/mock-url",
			Permalink:    fmt.Sprintf("/r/%s/comments/mock_%d", sub, i),
		})
	}
	return posts, domain.Quota{}, nil
}

func (mc *MockClient) FetchComments(ctx context.Context, postID string, limit int) ([]domain.Comment, domain.Quota, error) {
	time.Sleep(50 * time.Millisecond)

	now := float64(time.Now().Unix())
	var comments []domain.Comment
	for i := 0; i < limit; i++ {
		comments = append(comments, domain.Comment{
			Author:     fmt.Sprintf("commenter_%d", i),
			Body:       fmt.Sprintf("Simulated take %d on benchmarks and tooling choices.", i),
			Score:      rand.Intn(100),
			CreatedUTC: now - float64(rand.Intn(6*3600)),
			PostID:     postID,
		})
	}
	return comments, domain.Quota{}, nil
}
