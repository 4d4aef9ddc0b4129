package pipeline

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/config"
	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/domain"
	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/storage"
)

type staticCollector struct {
	posts    []domain.Post
	comments []domain.Comment
}

func (c *staticCollector) FetchNewPosts(ctx context.Context, sub string, limit int) ([]domain.Post, domain.Quota, error) {
	var out []domain.Post
	for _, p := range c.posts {
		if p.Subreddit == sub {
			out = append(out, p)
		}
	}
	return out, domain.Quota{}, nil
}

func (c *staticCollector) FetchComments(ctx context.Context, postID string, limit int) ([]domain.Comment, domain.Quota, error) {
	var out []domain.Comment
	for _, cm := range c.comments {
		if cm.PostID == postID {
			out = append(out, cm)
		}
	}
	return out, domain.Quota{}, nil
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Load()
	cfg.RequestDelay = time.Millisecond
	cfg.SourceDelay = time.Millisecond
	cfg.DetailDelay = time.Millisecond
	cfg.MinKeywordFreq = 1
	return cfg
}

func TestPipelineRunPersistsSnapshot(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	now := float64(time.Now().Unix())
	client := &staticCollector{
		posts: []domain.Post{
			{ID: "p1", Subreddit: "golang", Title: "compiler speedups everywhere", Score: 30, CommentCount: 5, CreatedUTC: now - 600},
			{ID: "p2", Subreddit: "golang", Title: "compiler regressions reported", Score: 10, CommentCount: 1, CreatedUTC: now - 1200},
		},
		comments: []domain.Comment{
			{PostID: "p1", Author: "alice", Body: "compiler looks faster here", Score: 3, CreatedUTC: now - 300},
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := New(testConfig(t), client, store, logger)

	res, err := p.Run(context.Background(), []string{"golang"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.RunID == 0 {
		t.Fatal("expected a persisted run")
	}
	if res.Posts != 2 || res.Comments != 1 {
		t.Errorf("counts: %+v", res)
	}
	if res.Degraded {
		t.Error("run should not be degraded")
	}
	if res.TopKeyword != "compiler" {
		t.Errorf("top keyword: expected compiler, got %q", res.TopKeyword)
	}

	global, err := store.Keywords(res.RunID, storage.ScopeGlobal)
	if err != nil {
		t.Fatal(err)
	}
	if len(global) == 0 || global[0].Keyword != "compiler" || global[0].Count != 2 {
		t.Errorf("stored global keywords: %v", global)
	}

	emerging, err := store.Keywords(res.RunID, storage.ScopeEmerging)
	if err != nil {
		t.Fatal(err)
	}
	if len(emerging) == 0 {
		t.Error("recent posts should produce emerging topics")
	}

	top, err := store.TopPosts(res.RunID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 1 || top[0].ID != "p1" {
		t.Errorf("hottest post should be p1: %v", top)
	}
	if top[0].SentimentLabel == "" {
		t.Error("stored posts should carry sentiment labels")
	}
}

func TestPipelineRunNoPosts(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := New(testConfig(t), &staticCollector{}, store, logger)

	res, err := p.Run(context.Background(), []string{"golang"})
	if err != nil {
		t.Fatalf("an empty batch is a valid outcome: %v", err)
	}
	if res.RunID != 0 {
		t.Error("no run row should be written for an empty batch")
	}

	latest, err := store.LatestRunID()
	if err != nil {
		t.Fatal(err)
	}
	if latest != 0 {
		t.Errorf("store should be empty, latest run %d", latest)
	}
}
