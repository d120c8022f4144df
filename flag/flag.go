// Package flag implements the Flag value object and the orderless Flag
// sub-parser state machine: once a flag-group node is entered,
// it consumes any remaining -x, --long, and combined -abc tokens in any
// order, independent of the ordered sibling walk used everywhere else
// in the command tree. The orderless nature of flags is fundamentally
// different from the ordered sibling walk, so this machine stays
// self-contained.
package flag

import (
	"fmt"
	"regexp"

	"github.com/cloudcmd/cloud/parser"
)

// Mode controls how repeated occurrences of a flag are treated.
type Mode int

const (
	// Single means a second occurrence is a DuplicateFlag failure.
	Single Mode = iota
	// Repeatable means values accumulate in arrival order.
	Repeatable
)

var longNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// Flag describes one named flag: its long form, single-character
// aliases, optional value parser (nil means a presence flag), mode,
// permission requirement, and description.
type Flag struct {
	Long        string
	Aliases     []rune
	ValueParser parser.Parser // nil for a presence flag
	Mode        Mode
	Permission  string
	Description string
}

// New validates and constructs a Flag. Long must match
// [A-Za-z][A-Za-z0-9_-]*; every alias must be a single alphabetic rune.
func New(long string, aliases []rune, valueParser parser.Parser, mode Mode) (*Flag, error) {
	if !longNamePattern.MatchString(long) {
		return nil, fmt.Errorf("invalid flag name %q: must match %s", long, longNamePattern.String())
	}
	for _, a := range aliases {
		if !((a >= 'a' && a <= 'z') || (a >= 'A' && a <= 'Z')) {
			return nil, fmt.Errorf("invalid flag alias %q for --%s: must be a single alphabetic character", string(a), long)
		}
	}
	return &Flag{Long: long, Aliases: aliases, ValueParser: valueParser, Mode: mode}, nil
}

// Group is an indexed, validated collection of Flags belonging to one
// flag-group node.
type Group struct {
	Flags   []*Flag
	byLong  map[string]*Flag
	byAlias map[rune]*Flag
}

// NewGroup indexes flags by long name and by alias, rejecting
// collisions in either keyspace.
func NewGroup(flags ...*Flag) (*Group, error) {
	g := &Group{
		Flags:   flags,
		byLong:  make(map[string]*Flag, len(flags)),
		byAlias: make(map[rune]*Flag, len(flags)),
	}
	for _, f := range flags {
		if _, dup := g.byLong[f.Long]; dup {
			return nil, fmt.Errorf("duplicate flag --%s in group", f.Long)
		}
		g.byLong[f.Long] = f
		for _, a := range f.Aliases {
			if existing, dup := g.byAlias[a]; dup {
				return nil, fmt.Errorf("alias -%c claimed by both --%s and --%s", a, existing.Long, f.Long)
			}
			g.byAlias[a] = f
		}
	}
	return g, nil
}

// ByLong looks up a flag by its long name.
func (g *Group) ByLong(name string) (*Flag, bool) {
	f, ok := g.byLong[name]
	return f, ok
}

// ByAlias looks up a flag by a single-character alias.
func (g *Group) ByAlias(a rune) (*Flag, bool) {
	f, ok := g.byAlias[a]
	return f, ok
}
