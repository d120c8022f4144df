package tree

import (
	"sync"

	"github.com/cloudcmd/cloud/cerr"
)

// State is the manager-visible lifecycle of a CommandTree:
// Registering allows structural edits; Sealed forbids them.
type State int

const (
	Registering State = iota
	Sealed
)

// CommandTree is the single-root, many-literal-children trie. All
// exported mutation goes through Register, which applies
// the splicing rules and the ambiguity/override invariants.
type CommandTree struct {
	mu    sync.RWMutex
	state State
	root  *Node

	// AllowUnsafeRegistration disables the ambiguity/ordering invariant
	// checks at splice time.
	AllowUnsafeRegistration bool
	// OverrideExistingCommands toggles whether a later build's handler
	// replaces an earlier one at the same terminal, or is rejected as a
	// duplicate.
	OverrideExistingCommands bool
}

// New returns an empty CommandTree in the Registering state.
func New() *CommandTree {
	return &CommandTree{root: newNode(Literal), state: Registering}
}

// Root returns the tree's root node. The root itself is never matched
// against input; only its children (top-level command literals) are.
func (t *CommandTree) Root() *Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root
}

// State returns the tree's current lifecycle state.
func (t *CommandTree) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// SetState transitions the tree's lifecycle state. Re-opening a Sealed tree back to Registering is
// always permitted; the manager decides whether to expose that.
func (t *CommandTree) SetState(s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = s
}

// Register splices one Builder's chain of steps into the tree, rooted
// at t.Root(). It returns the terminal node on success.
func (t *CommandTree) Register(b *Builder) (*Node, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == Sealed {
		return nil, cerr.New(cerr.Ambiguity, "tree is sealed; cannot register new commands")
	}

	cur := t.root
	var added []*Node
	for _, s := range b.steps {
		next, created, err := t.spliceStep(cur, s)
		if err != nil {
			t.unsplice(added)
			return nil, err
		}
		if created {
			added = append(added, next)
		}
		cur = next
	}

	if cur.Handler != nil && !t.OverrideExistingCommands {
		t.unsplice(added)
		return nil, cerr.New(cerr.DuplicateCommand, "a command is already registered at this path")
	}
	cur.Handler = b.handler
	return cur, nil
}

// unsplice removes nodes created by a failed Register call, newest
// first, so a violation leaves the tree structurally unchanged.
func (t *CommandTree) unsplice(added []*Node) {
	for i := len(added) - 1; i >= 0; i-- {
		n := added[i]
		p := n.parent
		if p == nil {
			continue
		}
		for j, c := range p.Children {
			if c == n {
				p.Children = append(p.Children[:j], p.Children[j+1:]...)
				break
			}
		}
		if n.Kind == Literal {
			delete(p.literalIndex, n.Name)
			for _, a := range n.Aliases {
				delete(p.literalIndex, a)
			}
		}
	}
}

// spliceStep finds or creates the child of parent matching one builder
// step, applying the splice invariants. parent must already be
// held under t.mu. created reports whether a new node was attached, so
// a later violation in the same Register call can unsplice it.
func (t *CommandTree) spliceStep(parent *Node, s *step) (node *Node, created bool, err error) {
	if parent.Kind == FlagGroup {
		return nil, false, cerr.New(cerr.Ambiguity, "cannot attach a child past a flag-group node")
	}

	switch s.kind {
	case Literal:
		return t.spliceLiteral(parent, s)
	case Variable:
		return t.spliceVariable(parent, s)
	case FlagGroup:
		return t.spliceFlagGroup(parent, s)
	default:
		return nil, false, cerr.New(cerr.Ambiguity, "unknown step kind")
	}
}

func (t *CommandTree) spliceLiteral(parent *Node, s *step) (*Node, bool, error) {
	if existing, ok := parent.literalIndex[s.name]; ok {
		return applyMetadata(existing, s), false, nil
	}

	if !t.AllowUnsafeRegistration {
		for _, alias := range s.aliases {
			if other, ok := parent.literalIndex[alias]; ok {
				return nil, false, cerr.Newf(cerr.Ambiguity, "alias %q already claimed by literal %q", alias, other.Name)
			}
		}
	}

	n := newNode(Literal)
	n.Name = s.name
	n.Aliases = s.aliases
	n.parent = parent
	applyMetadata(n, s)

	parent.Children = append(parent.Children, n)
	parent.literalIndex[s.name] = n
	for _, alias := range s.aliases {
		parent.literalIndex[alias] = n
	}
	return n, true, nil
}

func (t *CommandTree) spliceVariable(parent *Node, s *step) (*Node, bool, error) {
	for _, existing := range parent.VariableChildren() {
		if existing.Name == s.name {
			return applyMetadata(existing, s), false, nil
		}
	}

	if !t.AllowUnsafeRegistration {
		if err := checkAmbiguity(parent, s); err != nil {
			return nil, false, err
		}
	}

	n := newNode(Variable)
	n.Name = s.name
	n.VarParser = s.varParser
	n.Required = s.required
	n.Default = s.def
	n.HasDefault = s.hasDefault
	n.parent = parent
	applyMetadata(n, s)

	parent.Children = append(parent.Children, n)
	return n, true, nil
}

// checkAmbiguity enforces the two sibling-ordering invariants for a newly
// added Variable sibling:
//   - at most one variable child per parent, unless every variable
//     child has a distinct declared ValueType (the tree's deterministic
//     disambiguator: differing parser types stand in for "disjoint
//     accept-sets", since accept-set disjointness is undecidable in
//     general; see DESIGN.md).
//   - a required variable may not follow an optional variable sibling.
func checkAmbiguity(parent *Node, s *step) error {
	existing := parent.VariableChildren()
	if len(existing) > 0 {
		newType := s.varParser.ValueType()
		for _, e := range existing {
			if e.VarParser.ValueType().Equal(newType) {
				return cerr.Newf(cerr.Ambiguity,
					"variable %q and %q under the same parent both accept %s; provide a deterministic disambiguator",
					e.Name, s.name, newType)
			}
			if !e.Required {
				// an optional sibling exists; another required variable may not follow it
				if s.required {
					return cerr.Newf(cerr.Ambiguity,
						"required variable %q may not follow optional variable %q under the same parent",
						s.name, e.Name)
				}
			}
		}
	}
	return nil
}

// spliceFlagGroup attaches a flag-group child. Attaching alongside
// sibling children is allowed (it is just another child); attaching
// anything *past* it is rejected by spliceStep.
func (t *CommandTree) spliceFlagGroup(parent *Node, s *step) (*Node, bool, error) {
	if existing, ok := parent.FlagGroupChild(); ok {
		return existing, false, nil
	}
	n := newNode(FlagGroup)
	n.Flags = s.flags
	n.parent = parent
	applyMetadata(n, s)

	parent.Children = append(parent.Children, n)
	return n, true, nil
}

func applyMetadata(n *Node, s *step) *Node {
	if s.permission != "" {
		n.Permission = s.permission
	}
	if s.sender != nil {
		n.Sender = s.sender
	}
	if s.description != "" {
		n.Description = s.description
	}
	return n
}
