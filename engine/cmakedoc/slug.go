package cmakedoc

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugDropRe  = regexp.MustCompile(`[^a-z0-9\-\s]`)
	slugSpaceRe = regexp.MustCompile(`\s+`)
	slugDashRe  = regexp.MustCompile(`-+`)
)

// Slugify builds a GitHub-style anchor from a heading.
// Accented letters are folded to their base letter before filtering.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s); err == nil {
		s = folded
	}
	s = strings.ReplaceAll(s, "_", "-")
	s = slugDropRe.ReplaceAllString(s, "")
	s = slugSpaceRe.ReplaceAllString(s, "-")
	s = slugDashRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "section"
	}
	return s
}

// slugger hands out unique slugs, suffixing repeats with -2, -3, ...
type slugger struct {
	counts map[string]int
}

func newSlugger() *slugger {
	return &slugger{counts: make(map[string]int)}
}

func (s *slugger) unique(name string) string {
	base := Slugify(name)
	s.counts[base]++
	if n := s.counts[base]; n > 1 {
		return base + "-" + strconv.Itoa(n)
	}
	return base
}
