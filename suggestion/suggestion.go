// Package suggestion defines the text candidates produced by the
// Suggestion Engine and the small set of interfaces a parser
// or flag implements to participate in suggestion computation, without
// mutating any state.
package suggestion

// Suggestion is a single candidate completion. The core only emits
// text-only Suggestions; platform adapters may wrap these with a
// tooltip by implementing their own richer type around the same text.
type Suggestion struct {
	Text    string
	Tooltip string // empty for core-emitted suggestions
}

// Provider asks a parser (or flag value-parser) for candidates given
// the partially-typed current token. Implementations must not mutate
// any state.
type Provider interface {
	Suggest(current string) []Suggestion
}

// Filter narrows a candidate list down to those matching the
// partially-typed input. DefaultFilter keeps candidates that start with
// the typed text, case-insensitively; it compares against the whole
// typed string and does not strip text before the last whitespace. A
// pluggable Filter may replace DefaultFilter on a Manager.
type Filter interface {
	Filter(candidates []Suggestion, typed string) []Suggestion
}
