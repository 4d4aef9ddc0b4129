// Package storage persists analysis runs to SQLite so the dashboard and
// later runs can read history.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/domain"
	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/trends"
)

// Keyword snapshot scopes. Per-subreddit snapshots use SubredditScope.
const (
	ScopeGlobal   = "global"
	ScopeComments = "comments"
	ScopeEmerging = "emerging"
)

func SubredditScope(sub string) string { return "subreddit:" + sub }

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at TEXT NOT NULL,
    post_count INTEGER NOT NULL,
    comment_count INTEGER NOT NULL,
    request_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS posts (
    run_id INTEGER NOT NULL REFERENCES runs(id),
    post_id TEXT NOT NULL,
    subreddit TEXT NOT NULL,
    title TEXT NOT NULL,
    author TEXT,
    score INTEGER NOT NULL,
    upvote_ratio REAL,
    comment_count INTEGER NOT NULL,
    created_utc REAL NOT NULL,
    url TEXT,
    permalink TEXT,
    trending_score REAL NOT NULL,
    sentiment_score REAL,
    sentiment_label TEXT
);

CREATE TABLE IF NOT EXISTS comments (
    run_id INTEGER NOT NULL REFERENCES runs(id),
    post_id TEXT NOT NULL,
    author TEXT,
    body TEXT,
    score INTEGER NOT NULL,
    created_utc REAL NOT NULL,
    subreddit TEXT,
    sentiment_score REAL,
    sentiment_label TEXT
);

CREATE TABLE IF NOT EXISTS keywords (
    run_id INTEGER NOT NULL REFERENCES runs(id),
    scope TEXT NOT NULL,
    keyword TEXT NOT NULL,
    count INTEGER NOT NULL,
    rank INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_posts_run ON posts(run_id);
CREATE INDEX IF NOT EXISTS idx_keywords_run_scope ON keywords(run_id, scope);
`

// Store wraps the SQLite connection.
type Store struct {
	conn *sql.DB
}

// Open creates or opens the database and applies the schema.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

// RunRecord is one full analysis run ready to persist.
type RunRecord struct {
	StartedAt    time.Time
	RequestCount int
	Posts        []trends.ScoredPost
	Comments     []domain.Comment
	Keywords     map[string][]domain.TrendEntry
}

// SaveRun writes the run and all its rows in one transaction and returns
// the new run id.
func (s *Store) SaveRun(rec RunRecord) (int64, error) {
	tx, err := s.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (started_at, post_count, comment_count, request_count) VALUES (?, ?, ?, ?)`,
		rec.StartedAt.UTC().Format(time.RFC3339),
		len(rec.Posts), len(rec.Comments), rec.RequestCount,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	postStmt, err := tx.Prepare(`INSERT INTO posts
		(run_id, post_id, subreddit, title, author, score, upvote_ratio,
		 comment_count, created_utc, url, permalink, trending_score,
		 sentiment_score, sentiment_label)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer postStmt.Close()
	for _, p := range rec.Posts {
		if _, err := postStmt.Exec(runID, p.ID, p.Subreddit, p.Title, p.Author,
			p.Score, p.UpvoteRatio, p.CommentCount, p.CreatedUTC, p.URL,
			p.Permalink, p.TrendingScore, p.SentimentScore, p.SentimentLabel); err != nil {
			return 0, fmt.Errorf("inserting post %s: %w", p.ID, err)
		}
	}

	commentStmt, err := tx.Prepare(`INSERT INTO comments
		(run_id, post_id, author, body, score, created_utc, subreddit,
		 sentiment_score, sentiment_label)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer commentStmt.Close()
	for _, c := range rec.Comments {
		if _, err := commentStmt.Exec(runID, c.PostID, c.Author, c.Body,
			c.Score, c.CreatedUTC, c.Subreddit, c.SentimentScore, c.SentimentLabel); err != nil {
			return 0, fmt.Errorf("inserting comment: %w", err)
		}
	}

	kwStmt, err := tx.Prepare(`INSERT INTO keywords
		(run_id, scope, keyword, count, rank) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer kwStmt.Close()
	for scope, entries := range rec.Keywords {
		for rank, e := range entries {
			if _, err := kwStmt.Exec(runID, scope, e.Keyword, e.Count, rank+1); err != nil {
				return 0, fmt.Errorf("inserting keyword %s: %w", e.Keyword, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// LatestRunID returns the most recent run id, or 0 when no run exists yet.
func (s *Store) LatestRunID() (int64, error) {
	var id int64
	err := s.conn.QueryRow(`SELECT id FROM runs ORDER BY id DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Keywords returns one scope's ranked snapshot for a run.
func (s *Store) Keywords(runID int64, scope string) ([]domain.TrendEntry, error) {
	rows, err := s.conn.Query(
		`SELECT keyword, count FROM keywords WHERE run_id = ? AND scope = ? ORDER BY rank`,
		runID, scope,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.TrendEntry
	for rows.Next() {
		var e domain.TrendEntry
		if err := rows.Scan(&e.Keyword, &e.Count); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// TopPosts returns a run's posts ordered by trending score.
func (s *Store) TopPosts(runID int64, limit int) ([]trends.ScoredPost, error) {
	rows, err := s.conn.Query(
		`SELECT post_id, subreddit, title, author, score, upvote_ratio,
		        comment_count, created_utc, url, permalink, trending_score,
		        sentiment_score, sentiment_label
		 FROM posts WHERE run_id = ? ORDER BY trending_score DESC LIMIT ?`,
		runID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []trends.ScoredPost
	for rows.Next() {
		var p trends.ScoredPost
		if err := rows.Scan(&p.ID, &p.Subreddit, &p.Title, &p.Author, &p.Score,
			&p.UpvoteRatio, &p.CommentCount, &p.CreatedUTC, &p.URL, &p.Permalink,
			&p.TrendingScore, &p.SentimentScore, &p.SentimentLabel); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// SubredditCounts returns post counts per subreddit for one run.
func (s *Store) SubredditCounts(runID int64) (map[string]int, error) {
	rows, err := s.conn.Query(
		`SELECT subreddit, COUNT(*) FROM posts WHERE run_id = ? GROUP BY subreddit`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var sub string
		var n int
		if err := rows.Scan(&sub, &n); err != nil {
			return nil, err
		}
		counts[sub] = n
	}
	return counts, rows.Err()
}
