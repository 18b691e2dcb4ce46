package urlkey

import (
	"net/url"
	"testing"
)

func TestCanonical_EqualURLsProduceEqualKeys(t *testing.T) {
	a, _ := url.Parse("https://example.com/a/b")
	b, _ := url.Parse("https://example.com/a/b")

	if Canonical(a) != Canonical(b) {
		t.Error("equal URLs should canonicalize to the same key")
	}
}

func TestClone_IsIndependent(t *testing.T) {
	u, _ := url.Parse("https://example.com/a")
	c := Clone(u)
	c.Path = "/b"

	if u.Path == c.Path {
		t.Error("mutating the clone should not affect the original")
	}
}

func TestWithTrailingSlash(t *testing.T) {
	u, _ := url.Parse("https://example.com/a")
	got := WithTrailingSlash(u)
	if got.Path != "/a/" {
		t.Errorf("expected trailing slash appended, got %q", got.Path)
	}

	already, _ := url.Parse("https://example.com/a/")
	got2 := WithTrailingSlash(already)
	if got2.Path != "/a/" {
		t.Errorf("should leave an already-trailing-slash path alone, got %q", got2.Path)
	}
}
