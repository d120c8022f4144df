package suggestion

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// DefaultFilter implements the default case-insensitive prefix rule: a
// candidate survives if its text, compared case-insensitively,
// starts with typed.
type DefaultFilter struct{}

func (DefaultFilter) Filter(candidates []Suggestion, typed string) []Suggestion {
	if typed == "" {
		return candidates
	}
	lower := strings.ToLower(typed)
	out := make([]Suggestion, 0, len(candidates))
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c.Text), lower) {
			out = append(out, c)
		}
	}
	return out
}

// FuzzyFilter is a pluggable Filter that falls back to subsequence
// fuzzy matching, ranked via github.com/sahilm/fuzzy, whenever the
// strict prefix filter would
// otherwise return nothing, so a typo-tolerant sender still sees
// candidates close to what they typed.
type FuzzyFilter struct {
	Prefix DefaultFilter
}

func (f FuzzyFilter) Filter(candidates []Suggestion, typed string) []Suggestion {
	exact := f.Prefix.Filter(candidates, typed)
	if typed == "" || len(exact) > 0 {
		return exact
	}

	source := make([]string, len(candidates))
	for i, c := range candidates {
		source[i] = c.Text
	}
	matches := fuzzy.Find(typed, source)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	out := make([]Suggestion, 0, len(matches))
	for _, m := range matches {
		out = append(out, candidates[m.Index])
	}
	return out
}
