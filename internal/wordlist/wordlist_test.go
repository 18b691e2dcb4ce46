package wordlist

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_SkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.txt")
	os.WriteFile(path, []byte("admin\n\nlogin\n  \nsecret\n"), 0o644)

	words, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"admin", "login", "secret"}
	if len(words) != len(want) {
		t.Fatalf("expected %d words, got %d: %v", len(want), len(words), words)
	}
	for i, w := range want {
		if words[i] != w {
			t.Errorf("word %d: expected %q, got %q", i, w, words[i])
		}
	}
}

func TestLoadURLs_SkipsCommentsAndBlanks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "urls.txt")
	os.WriteFile(path, []byte("https://a.example.com/FUZZ\n# a comment\n\nhttps://b.example.com/FUZZ\n"), 0o644)

	urls, err := LoadURLs(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("expected 2 urls, got %d: %v", len(urls), urls)
	}
}

func TestExtractURLs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.txt")
	os.WriteFile(path, []byte("[200 OK] https://example.com/admin [1W, 5C, 1L]\nnoise line\n[301] https://example.com/old -> https://example.com/new [0W, 0C, 0L]\n"), 0o644)

	urls, err := ExtractURLs(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 3 {
		t.Fatalf("expected 3 urls extracted, got %d: %v", len(urls), urls)
	}
}
