// Package wordlist loads the wordlist, base-URL list, and results-file
// collaborators described in spec §6. This is outside the core scan
// engine's scope, the same way the teacher's internal/wordlist package
// sits alongside, not inside, its scanner package.
package wordlist

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Load reads one word per line, skipping blank lines, the way spec §6
// describes -w/--wordlist.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading wordlist %s: %w", path, err)
	}
	defer f.Close()

	var words []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		words = append(words, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading wordlist %s: %w", path, err)
	}
	return words, nil
}

// LoadURLs reads one base URL per line from --urls-file, skipping blank
// lines and "#" comments.
func LoadURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading urls file %s: %w", path, err)
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading urls file %s: %w", path, err)
	}
	return urls, nil
}

var urlPattern = regexp.MustCompile(`https?://\S+`)

// ExtractURLs reads --results-file and returns every https?://\S+ match,
// one or more per line, so a prior run's output can seed a new scan.
func ExtractURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading results file %s: %w", path, err)
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		urls = append(urls, urlPattern.FindAllString(sc.Text(), -1)...)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading results file %s: %w", path, err)
	}
	return urls, nil
}
