// Package urlkey provides the canonical string form used for URL
// equality/hashing (Visited Set keys) and the path-mode trailing-slash
// invariant.
package urlkey

import (
	"net/url"
	"strings"
)

// Canonical returns the canonical string form of u, used as the Visited
// Set key. net/url's String() already normalizes escaping consistently,
// so equal URLs always produce equal keys.
func Canonical(u *url.URL) string {
	return u.String()
}

// Clone returns a shallow copy of u safe to mutate independently.
func Clone(u *url.URL) *url.URL {
	c := *u
	if u.User != nil {
		user := *u.User
		c.User = &user
	}
	return &c
}

// WithTrailingSlash returns a copy of u whose path ends in "/", so that
// further path-mode fuzzing produces base/word rather than baseword.
func WithTrailingSlash(u *url.URL) *url.URL {
	c := Clone(u)
	if !strings.HasSuffix(c.Path, "/") {
		c.Path += "/"
	}
	return c
}
