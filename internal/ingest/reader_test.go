package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "subreddits.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSubreddits(t *testing.T) {
	path := writeCSV(t, "subreddit\ngolang\nrust\n")

	subs, err := LoadSubreddits(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 2 || subs[0] != "golang" || subs[1] != "rust" {
		t.Errorf("unexpected result: %v", subs)
	}
}

func TestLoadSubredditsSkipsInvalidRows(t *testing.T) {
	path := writeCSV(t, "subreddit\ngolang\nbad name!\nxy\n  rust  \n")

	subs, err := LoadSubreddits(path)
	if err != nil {
		t.Fatal(err)
	}
	// "bad name!" fails the name regex, "xy" is too short.
	if len(subs) != 2 || subs[0] != "golang" || subs[1] != "rust" {
		t.Errorf("invalid rows not skipped: %v", subs)
	}
}

func TestLoadSubredditsStripsBOM(t *testing.T) {
	path := writeCSV(t, "\ufeffsubreddit\ngolang\n")

	subs, err := LoadSubreddits(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 || subs[0] != "golang" {
		t.Errorf("BOM handling broke the header row: %v", subs)
	}
}

func TestLoadSubredditsMissingFile(t *testing.T) {
	if _, err := LoadSubreddits(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
