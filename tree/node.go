// Package tree implements the immutable-after-seal command tree: a
// single root with Literal, Variable, and Flag-group nodes, built
// through a command Builder and spliced into the tree under the
// ambiguity and override invariants.
package tree

import (
	"github.com/cloudcmd/cloud/cmdcontext"
	"github.com/cloudcmd/cloud/flag"
	"github.com/cloudcmd/cloud/parser"
)

// Kind identifies which of the three node variants a Node is.
type Kind int

const (
	Literal Kind = iota
	Variable
	FlagGroup
)

// Handler is invoked when traversal reaches a node with input
// exhausted. It runs synchronously from the execution engine's
// goroutine, whichever Coordinator selected that goroutine.
type Handler func(ctx *cmdcontext.Context) error

// SenderRequirement gates traversal on the sender's type. Name is used
// only in error/caption rendering.
type SenderRequirement struct {
	Name  string
	Check func(sender any) bool
}

// Node is one vertex of the command tree: a Literal (fixed word plus
// aliases), a Variable (name, parser, optional default), or a
// Flag-group (terminal, delegates to the flag sub-parser). Every node
// may additionally carry a permission requirement, a sender-type gate,
// a description, and, if the command may end there, a Handler.
type Node struct {
	Kind Kind

	// Literal
	Name    string
	Aliases []string

	// Variable
	VarParser  parser.Parser
	Required   bool
	Default    any
	HasDefault bool

	// Flag-group
	Flags *flag.Group

	Permission  string
	Sender      *SenderRequirement
	Description string
	Handler     Handler

	Children []*Node
	parent   *Node

	literalIndex map[string]*Node // name/alias -> child, Literal children only
}

func newNode(kind Kind) *Node {
	return &Node{Kind: kind, literalIndex: make(map[string]*Node)}
}

// IsTerminal reports whether this node may end a command (has a Handler).
func (n *Node) IsTerminal() bool { return n.Handler != nil }

// LiteralChild returns the Literal child matching name (by name or
// alias), if any.
func (n *Node) LiteralChild(name string) (*Node, bool) {
	c, ok := n.literalIndex[name]
	return c, ok
}

// VariableChildren returns this node's Variable children, in insertion order.
func (n *Node) VariableChildren() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == Variable {
			out = append(out, c)
		}
	}
	return out
}

// LiteralChildren returns this node's Literal children, in insertion order.
func (n *Node) LiteralChildren() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == Literal {
			out = append(out, c)
		}
	}
	return out
}

// FlagGroupChild returns this node's Flag-group child, if any (at most one).
func (n *Node) FlagGroupChild() (*Node, bool) {
	for _, c := range n.Children {
		if c.Kind == FlagGroup {
			return c, true
		}
	}
	return nil, false
}
