package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/domain"
	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/trends"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun() RunRecord {
	return RunRecord{
		StartedAt:    time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC),
		RequestCount: 7,
		Posts: []trends.ScoredPost{
			{Post: domain.Post{ID: "hot", Subreddit: "golang", Title: "hot post", Score: 10, CommentCount: 4, CreatedUTC: 1}, TrendingScore: 42.5},
			{Post: domain.Post{ID: "warm", Subreddit: "golang", Title: "warm post", Score: 5, CreatedUTC: 1}, TrendingScore: 10},
			{Post: domain.Post{ID: "cold", Subreddit: "rust", Title: "cold post", Score: 1, CreatedUTC: 1}, TrendingScore: 0.5},
		},
		Comments: []domain.Comment{
			{PostID: "hot", Author: "alice", Body: "take", Score: 2, CreatedUTC: 2, Subreddit: "golang"},
		},
		Keywords: map[string][]domain.TrendEntry{
			ScopeGlobal:              {{Keyword: "release", Count: 5}, {Keyword: "benchmark", Count: 3}},
			ScopeEmerging:            {{Keyword: "benchmark", Count: 3}},
			SubredditScope("golang"): {{Keyword: "release", Count: 4}},
		},
	}
}

func TestSaveAndQueryRun(t *testing.T) {
	s := openTestStore(t)

	runID, err := s.SaveRun(sampleRun())
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if runID == 0 {
		t.Fatal("expected non-zero run id")
	}

	latest, err := s.LatestRunID()
	if err != nil {
		t.Fatal(err)
	}
	if latest != runID {
		t.Errorf("latest run: expected %d, got %d", runID, latest)
	}

	global, err := s.Keywords(runID, ScopeGlobal)
	if err != nil {
		t.Fatal(err)
	}
	if len(global) != 2 || global[0].Keyword != "release" || global[1].Keyword != "benchmark" {
		t.Errorf("global keywords out of rank order: %v", global)
	}

	sub, err := s.Keywords(runID, SubredditScope("golang"))
	if err != nil {
		t.Fatal(err)
	}
	if len(sub) != 1 || sub[0].Keyword != "release" || sub[0].Count != 4 {
		t.Errorf("subreddit keywords: %v", sub)
	}

	top, err := s.TopPosts(runID, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 || top[0].ID != "hot" || top[1].ID != "warm" {
		t.Errorf("top posts not ordered by trending score: %v", top)
	}
	if top[0].TrendingScore != 42.5 {
		t.Errorf("trending score lost: %v", top[0].TrendingScore)
	}

	counts, err := s.SubredditCounts(runID)
	if err != nil {
		t.Fatal(err)
	}
	if counts["golang"] != 2 || counts["rust"] != 1 {
		t.Errorf("subreddit counts: %v", counts)
	}
}

func TestLatestRunIDEmpty(t *testing.T) {
	s := openTestStore(t)

	id, err := s.LatestRunID()
	if err != nil {
		t.Fatal(err)
	}
	if id != 0 {
		t.Errorf("expected 0 for empty store, got %d", id)
	}
}

func TestLatestRunAdvances(t *testing.T) {
	s := openTestStore(t)

	first, err := s.SaveRun(sampleRun())
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.SaveRun(sampleRun())
	if err != nil {
		t.Fatal(err)
	}
	if second <= first {
		t.Fatalf("run ids must advance: %d then %d", first, second)
	}

	latest, err := s.LatestRunID()
	if err != nil {
		t.Fatal(err)
	}
	if latest != second {
		t.Errorf("latest: expected %d, got %d", second, latest)
	}
}
