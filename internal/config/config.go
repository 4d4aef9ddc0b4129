package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every tunable knob. Values come from the environment with
// conservative defaults; unparseable values fall back silently, but Validate
// rejects anything negative before a run starts.
type Config struct {
	CollectorMode  string
	UserAgent      string
	Subreddits     []string
	SubredditsFile string

	RequestDelay   time.Duration
	SourceDelay    time.Duration
	DetailDelay    time.Duration
	MaxRetries     int
	InitialBackoff time.Duration

	PostLimit           int
	CommentLimit        int
	MaxCommentPosts     int
	MinKeywordFreq      int
	EmergingWindowHours float64

	DBPath          string
	Port            string
	RefreshSchedule string
}

func Load() Config {
	cfg := Config{
		CollectorMode:  "public",
		UserAgent:      "reddit-trend-analyzer/1.0",
		SubredditsFile: "input/subreddits.csv",

		RequestDelay:   2000 * time.Millisecond,
		SourceDelay:    1000 * time.Millisecond,
		DetailDelay:    500 * time.Millisecond,
		MaxRetries:     3,
		InitialBackoff: 2000 * time.Millisecond,

		PostLimit:           25,
		CommentLimit:        20,
		MaxCommentPosts:     10,
		MinKeywordFreq:      3,
		EmergingWindowHours: 6,

		DBPath:          "data/trends.db",
		Port:            "8080",
		RefreshSchedule: "@every 30m",
	}

	if v := os.Getenv("COLLECTOR_MODE"); v != "" {
		cfg.CollectorMode = v
	}
	if v := os.Getenv("REDDIT_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("SUBREDDITS"); v != "" {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.Subreddits = append(cfg.Subreddits, s)
			}
		}
	}
	if v := os.Getenv("SUBREDDITS_FILE"); v != "" {
		cfg.SubredditsFile = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("REFRESH_SCHEDULE"); v != "" {
		cfg.RefreshSchedule = v
	}

	envMillis(&cfg.RequestDelay, "REQUEST_DELAY_MS")
	envMillis(&cfg.SourceDelay, "SOURCE_DELAY_MS")
	envMillis(&cfg.DetailDelay, "DETAIL_DELAY_MS")
	envMillis(&cfg.InitialBackoff, "INITIAL_BACKOFF_MS")
	envInt(&cfg.MaxRetries, "MAX_RETRIES")
	envInt(&cfg.PostLimit, "POST_LIMIT")
	envInt(&cfg.CommentLimit, "COMMENT_LIMIT")
	envInt(&cfg.MaxCommentPosts, "MAX_COMMENT_POSTS")
	envInt(&cfg.MinKeywordFreq, "MIN_KEYWORD_FREQUENCY")
	envFloat(&cfg.EmergingWindowHours, "EMERGING_WINDOW_HOURS")

	return cfg
}

// Validate rejects knob values a run could not honor.
func (c Config) Validate() error {
	if c.RequestDelay < 0 || c.SourceDelay < 0 || c.DetailDelay < 0 || c.InitialBackoff < 0 {
		return fmt.Errorf("delays must be non-negative")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("MAX_RETRIES must be at least 1")
	}
	if c.PostLimit < 0 || c.CommentLimit < 0 || c.MaxCommentPosts < 0 {
		return fmt.Errorf("fetch limits must be non-negative")
	}
	if c.MinKeywordFreq < 0 {
		return fmt.Errorf("MIN_KEYWORD_FREQUENCY must be non-negative")
	}
	if c.EmergingWindowHours < 0 {
		return fmt.Errorf("EMERGING_WINDOW_HOURS must be non-negative")
	}
	return nil
}

func envInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envMillis(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = time.Duration(n) * time.Millisecond
		}
	}
}

func envFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
