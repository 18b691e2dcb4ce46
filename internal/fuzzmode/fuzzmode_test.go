package fuzzmode

import "testing"

func TestInfer(t *testing.T) {
	cases := []struct {
		url  string
		want Mode
	}{
		{"https://example.com/FUZZ", Path},
		{"https://example.com/api/FUZZ/items", Path},
		{"https://FUZZ.example.com", Subdomain},
		{"https://FUZZ.example.com/path", Subdomain},
		{"https://example.com/search?q=FUZZ", Parameter},
		{"https://example.com/search?id=1&q=FUZZ", Parameter},
		{"https://example.com/", Path},
	}

	for _, c := range cases {
		if got := Infer(c.url); got != c.want {
			t.Errorf("Infer(%q) = %v, want %v", c.url, got, c.want)
		}
	}
}
