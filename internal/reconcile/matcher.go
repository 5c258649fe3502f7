package reconcile

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/codyseavey/sld-tracker/internal/models"
)

// Matcher selects the catalog entries of a CardRange.
type Matcher struct {
	logger *slog.Logger
}

type MatcherOption func(*Matcher)

func WithMatcherLogger(logger *slog.Logger) MatcherOption {
	return func(m *Matcher) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func NewMatcher(opts ...MatcherOption) *Matcher {
	m := &Matcher{logger: discardLogger()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match returns the entries of r's set whose collector number value is in r,
// in catalog order. The result is never nil.
func (m *Matcher) Match(r *CardRange, idx *CatalogIndex) []*models.CatalogEntry {
	matches := []*models.CatalogEntry{}
	if r == nil || len(r.Numbers) == 0 {
		return matches
	}

	set := strings.ToLower(r.SetCode)
	candidates := idx.Lookup(set)
	m.logger.Debug("looking for cards", "set", set, "candidates", len(candidates), "numbers", len(r.Numbers))

	for _, entry := range candidates {
		n, ok := CollectorNumberValue(entry.CollectorNumber)
		if !ok {
			continue
		}
		if r.Contains(n) {
			matches = append(matches, entry)
		}
	}

	m.logger.Debug("matched cards", "set", set, "matches", len(matches))
	return matches
}

// CollectorNumberValue returns the first run of decimal digits in a collector
// number, so "123a" is 123 and "★45" is 45. It fails when there are no
// digits or the run does not fit in an int.
func CollectorNumberValue(s string) (int, bool) {
	start := strings.IndexFunc(s, isDigit)
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[start:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
