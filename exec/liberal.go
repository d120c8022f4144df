package exec

import (
	"strings"

	"github.com/cloudcmd/cloud/cerr"
	"github.com/cloudcmd/cloud/cursor"
	"github.com/cloudcmd/cloud/flag"
	"github.com/cloudcmd/cloud/tree"
)

// findReachableFlagGroup looks for a flag-group reachable from node by
// following a straight, unbranched chain of single-child nodes (the
// ordinary shape of one command's builder chain). It gives up the
// moment a node has more than one child, since which branch "the"
// flag-group belongs to is then ambiguous. LIBERAL_FLAG_PARSING only
// activates for the common single-path case.
func findReachableFlagGroup(node *tree.Node) *tree.Node {
	n := node
	for {
		if fg, ok := n.FlagGroupChild(); ok {
			return fg
		}
		if len(n.Children) != 1 {
			return nil
		}
		n = n.Children[0]
	}
}

// resolveFlagSpec looks up the Flag a bare "-x"/"--long" token would
// resolve to, for the purpose of deciding whether absorption must also
// take the following token as its value. Combined short forms ("-abc")
// are left alone: only presence flags may combine, so they
// never need a value absorbed.
func resolveFlagSpec(g *flag.Group, tok string) (*flag.Flag, bool) {
	switch {
	case strings.HasPrefix(tok, "--"):
		return g.ByLong(tok[2:])
	case len(tok) == 2:
		return g.ByAlias(rune(tok[1]))
	default:
		return nil, false
	}
}

// absorbLiberalFlags implements liberal flag absorption:
// under LIBERAL_FLAG_PARSING, flag tokens are pulled out of the
// remaining input wherever they appear, not only once every preceding
// positional has been satisfied, and fed to the flag sub-parser
// immediately; the remaining non-flag tokens are spliced back into the
// cursor so ordinary literal/variable matching continues as if the
// flags had never been there. Returns (nil, nil) when nothing needed
// absorbing, so the caller falls through to normal traversal.
func (e *Engine) absorbLiberalFlags(st *state, node, fg *tree.Node) (*tree.Node, *cerr.Error) {
	remainder := st.cur.Remainder()
	if remainder == "" {
		return nil, nil
	}

	scan := cursor.New(remainder)
	var flagParts, restParts []string
	for !scan.IsEmpty(true) {
		tok := scan.PeekString()
		if !strings.HasPrefix(tok, "-") {
			restParts = append(restParts, scan.ReadString())
			continue
		}
		scan.ReadString()
		flagParts = append(flagParts, tok)
		if spec, ok := resolveFlagSpec(fg.Flags, tok); ok && spec.ValueParser != nil && !scan.IsEmpty(true) {
			flagParts = append(flagParts, scan.ReadString())
		}
	}

	if len(flagParts) == 0 {
		return nil, nil
	}

	if gerr := e.checkGates(st.sender, fg); gerr != nil {
		return nil, gerr
	}
	allowed := func(permission string) bool {
		return permission == "" || e.Permission == nil || e.Permission(st.sender, permission)
	}
	flagCur := cursor.New(strings.Join(flagParts, " "))
	if ferr := flag.Parse(st.cc, flagCur, fg.Flags, allowed); ferr != nil {
		return nil, ferr
	}

	st.cur.SetRemainder(strings.Join(restParts, " "))
	return nil, nil
}
