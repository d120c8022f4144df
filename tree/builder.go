package tree

import (
	"github.com/cloudcmd/cloud/flag"
	"github.com/cloudcmd/cloud/parser"
)

// step describes one child to splice in, in the order given to Builder.
type step struct {
	kind        Kind
	name        string
	aliases     []string
	varParser   parser.Parser
	required    bool
	def         any
	hasDefault  bool
	flags       *flag.Group
	permission  string
	sender      *SenderRequirement
	description string
}

// Builder describes one command as an ordered chain of Literal,
// Variable, and Flag-group steps, plus a terminal Handler.
// Permission/SenderType/Description modify whichever step
// was most recently appended; Handler always sets the handler of the
// chain's terminal node.
type Builder struct {
	steps   []*step
	handler Handler
}

// NewBuilder starts an empty command builder.
func NewBuilder() *Builder { return &Builder{} }

// LiteralStep appends a fixed-word child, indexed also under any aliases.
func (b *Builder) LiteralStep(name string, aliases ...string) *Builder {
	b.steps = append(b.steps, &step{kind: Literal, name: name, aliases: aliases})
	return b
}

// Required appends a mandatory Variable child parsed by p.
func (b *Builder) Required(name string, p parser.Parser) *Builder {
	b.steps = append(b.steps, &step{kind: Variable, name: name, varParser: p, required: true})
	return b
}

// Optional appends an optional Variable child parsed by p, synthesising
// def when input doesn't reach it.
func (b *Builder) Optional(name string, p parser.Parser, def any) *Builder {
	b.steps = append(b.steps, &step{kind: Variable, name: name, varParser: p, required: false, def: def, hasDefault: true})
	return b
}

// FlagGroupStep appends a terminal flag-group child.
func (b *Builder) FlagGroupStep(group *flag.Group) *Builder {
	b.steps = append(b.steps, &step{kind: FlagGroup, flags: group})
	return b
}

// Permission restricts the most recently appended step to senders for
// whom the manager's permission checker accepts this permission string.
func (b *Builder) Permission(permission string) *Builder {
	if n := len(b.steps); n > 0 {
		b.steps[n-1].permission = permission
	}
	return b
}

// SenderType restricts the most recently appended step to senders
// satisfying check.
func (b *Builder) SenderType(name string, check func(sender any) bool) *Builder {
	if n := len(b.steps); n > 0 {
		b.steps[n-1].sender = &SenderRequirement{Name: name, Check: check}
	}
	return b
}

// Description attaches a human-readable description to the most
// recently appended step.
func (b *Builder) Description(d string) *Builder {
	if n := len(b.steps); n > 0 {
		b.steps[n-1].description = d
	}
	return b
}

// Handler sets the handler invoked when this command's chain is
// reached with input exhausted.
func (b *Builder) Handler(h Handler) *Builder {
	b.handler = h
	return b
}

// Name returns the top-level command name this builder registers under:
// the first Literal step's word, or "" if the chain starts with a
// non-literal step. Registration sinks mirror commands into host
// dispatchers by this name.
func (b *Builder) Name() string {
	for _, s := range b.steps {
		if s.kind == Literal {
			return s.name
		}
		break
	}
	return ""
}
