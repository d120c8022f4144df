// Package suggest implements the suggestion engine: it re-walks the
// same command tree the execution engine uses, stopping at the edge
// where input runs out, and returns the candidate set the parser (or
// flag) under focus produces, without mutating the tree, the manager,
// or any caption provider.
package suggest

import (
	"strings"

	"github.com/cloudcmd/cloud/cmdcontext"
	"github.com/cloudcmd/cloud/cursor"
	"github.com/cloudcmd/cloud/flag"
	"github.com/cloudcmd/cloud/suggestion"
	"github.com/cloudcmd/cloud/tree"
)

// Preprocessor mirrors exec.Preprocessor: the suggestion engine runs the
// same preprocessor chain as execution before walking the tree.
type Preprocessor func(ctx *cmdcontext.Context, cur *cursor.Cursor) bool

// PermissionChecker reports whether sender may use permission.
type PermissionChecker func(sender any, permission string) bool

// Engine computes suggestions against a CommandTree, sharing its shape
// with exec.Engine but never invoking a handler or mutating state.
type Engine struct {
	Tree          *tree.CommandTree
	Permission    PermissionChecker
	Preprocessors []Preprocessor

	// Filter narrows raw candidates down to those matching the typed
	// prefix. Defaults to suggestion.DefaultFilter.
	Filter suggestion.Filter

	// ForceSuggestion implements the manager setting of the same name:
	// when true and the computed candidate set is empty, a single
	// empty Suggestion is returned instead of none.
	ForceSuggestion bool
}

func (e *Engine) filter() suggestion.Filter {
	if e.Filter != nil {
		return e.Filter
	}
	return suggestion.DefaultFilter{}
}

// Suggest computes the ordered, de-duplicated candidate list for line,
// as typed so far by sender.
func (e *Engine) Suggest(sender any, line string) []suggestion.Suggestion {
	cc := cmdcontext.New(sender, line)
	cur := cursor.New(line)

	for _, pp := range e.Preprocessors {
		if !pp(cc, cur) {
			return e.maybeForce(nil)
		}
	}

	out := e.walk(sender, cc, cur, e.Tree.Root())
	return e.maybeForce(dedupe(out))
}

func (e *Engine) maybeForce(out []suggestion.Suggestion) []suggestion.Suggestion {
	if len(out) == 0 && e.ForceSuggestion {
		return []suggestion.Suggestion{{}}
	}
	return out
}

func dedupe(in []suggestion.Suggestion) []suggestion.Suggestion {
	seen := make(map[string]bool, len(in))
	out := make([]suggestion.Suggestion, 0, len(in))
	for _, s := range in {
		if seen[s.Text] {
			continue
		}
		seen[s.Text] = true
		out = append(out, s)
	}
	return out
}

func (e *Engine) visible(sender any, node *tree.Node) bool {
	if node.Sender != nil && !node.Sender.Check(sender) {
		return false
	}
	if node.Permission != "" && e.Permission != nil && !e.Permission(sender, node.Permission) {
		return false
	}
	return true
}

// focusToken reports whether remainder is exactly one partially-typed
// token with no trailing whitespace.
func focusToken(remainder string) (string, bool) {
	trimmed := strings.TrimLeft(remainder, " \t")
	if trimmed == "" || strings.ContainsAny(trimmed, " \t") {
		return "", false
	}
	return trimmed, true
}

// flagTerritory reports whether the untyped remainder looks like it
// belongs to flag parsing rather than to a positional argument: nothing
// typed yet, or what's typed starts with '-'. It is only consulted for
// a flag-group that is a direct child of the node under focus; a '-'
// typed before the remaining positionals (as LIBERAL_FLAG_PARSING
// allows at execution) yields no flag suggestions.
func flagTerritory(remainder string) bool {
	trimmed := strings.TrimLeft(remainder, " \t")
	return trimmed == "" || strings.HasPrefix(trimmed, "-")
}

func (e *Engine) walk(sender any, cc *cmdcontext.Context, cur *cursor.Cursor, node *tree.Node) []suggestion.Suggestion {
	if !e.visible(sender, node) {
		return nil
	}

	remainder := cur.Remainder()

	if fg, ok := node.FlagGroupChild(); ok && e.visible(sender, fg) && flagTerritory(remainder) {
		return e.flagSuggestions(sender, fg, remainder)
	}

	if tok, ok := focusToken(remainder); ok {
		return e.filter().Filter(e.focusCandidates(sender, cc, cur, node), tok)
	}

	if strings.TrimLeft(remainder, " \t") == "" {
		return e.emptyCandidates(sender, cc, cur, node)
	}

	tok := cur.PeekString()
	if child, ok := node.LiteralChild(tok); ok {
		cur.ReadString()
		return e.walk(sender, cc, cur, child)
	}
	for _, v := range node.VariableChildren() {
		save := cur.Save()
		if _, err := v.VarParser.Parse(cc, cur); err == nil {
			return e.walk(sender, cc, cur, v)
		}
		cur.Restore(save)
	}
	return nil
}

// focusCandidates gathers completions for the single partially-typed
// token under the cursor: literal names/aliases whose text matches, and
// each visible variable child's own suggestion provider.
func (e *Engine) focusCandidates(sender any, cc *cmdcontext.Context, cur *cursor.Cursor, node *tree.Node) []suggestion.Suggestion {
	current, _ := focusToken(cur.Remainder())
	var out []suggestion.Suggestion
	for _, lit := range node.LiteralChildren() {
		if !e.visible(sender, lit) {
			continue
		}
		out = append(out, suggestion.Suggestion{Text: lit.Name})
		for _, alias := range lit.Aliases {
			out = append(out, suggestion.Suggestion{Text: alias})
		}
	}
	for _, v := range node.VariableChildren() {
		if !e.visible(sender, v) {
			continue
		}
		if s, ok := v.VarParser.(interface {
			Suggest(*cmdcontext.Context, *cursor.Cursor, string) []suggestion.Suggestion
		}); ok {
			out = append(out, s.Suggest(cc, cur, current)...)
		}
	}
	return out
}

// emptyCandidates: the cursor is exhausted with trailing whitespace,
// so every eligible child is asked for its
// empty-input suggestions (prefix "").
func (e *Engine) emptyCandidates(sender any, cc *cmdcontext.Context, cur *cursor.Cursor, node *tree.Node) []suggestion.Suggestion {
	return e.focusCandidates(sender, cc, cur, node)
}

// flagSuggestions suggests "--long" and unused "-x" forms, or, when
// the previously-typed token leaves the flag sub-parser awaiting a
// value, delegates to that flag's value-parser.
func (e *Engine) flagSuggestions(sender any, fg *tree.Node, remainder string) []suggestion.Suggestion {
	fullTokens := strings.Fields(remainder)
	current := ""
	if len(fullTokens) > 0 && !strings.ContainsAny(remainder[len(remainder)-1:], " \t") {
		// No trailing whitespace: the last token is still being typed.
		current = fullTokens[len(fullTokens)-1]
		fullTokens = fullTokens[:len(fullTokens)-1]
	}

	seen, awaiting := replayFlags(fullTokens, fg.Flags)
	if awaiting != nil {
		if s, ok := awaiting.ValueParser.(interface {
			Suggest(*cmdcontext.Context, *cursor.Cursor, string) []suggestion.Suggestion
		}); ok {
			return e.filter().Filter(s.Suggest(nil, nil, current), current)
		}
		return nil
	}

	var out []suggestion.Suggestion
	for _, f := range fg.Flags.Flags {
		if f.Permission != "" && e.Permission != nil && !e.Permission(sender, f.Permission) {
			continue
		}
		if f.Mode != flag.Repeatable && seen[f.Long] {
			continue
		}
		out = append(out, suggestion.Suggestion{Text: "--" + f.Long})
		for _, a := range f.Aliases {
			out = append(out, suggestion.Suggestion{Text: "-" + string(a)})
		}
	}
	return e.filter().Filter(out, current)
}

// replayFlags walks the complete (already fully-typed) tokens preceding
// the one currently under the cursor through the same transitions as
// the Flag Sub-Parser, recording which flags have already been
// seen and whether the last one leaves the state machine waiting on a
// value, so a partially-typed token can be told apart as "a new flag
// name" versus "that flag's value".
func replayFlags(tokens []string, group *flag.Group) (seen map[string]bool, awaiting *flag.Flag) {
	seen = make(map[string]bool)
	i := 0
	for i < len(tokens) {
		tok := tokens[i]
		i++
		if !strings.HasPrefix(tok, "-") {
			continue
		}

		var f *flag.Flag
		switch {
		case strings.HasPrefix(tok, "--"):
			f, _ = group.ByLong(tok[2:])
		case len(tok) == 2:
			f, _ = group.ByAlias(rune(tok[1]))
		default:
			for _, ch := range tok[1:] {
				if pf, ok := group.ByAlias(ch); ok {
					seen[pf.Long] = true
				}
			}
			continue
		}
		if f == nil {
			continue
		}
		seen[f.Long] = true
		if f.ValueParser != nil {
			if i < len(tokens) {
				i++
			} else {
				awaiting = f
			}
		}
	}
	return seen, awaiting
}
