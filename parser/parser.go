// Package parser implements the parser contract: converting
// the next token(s) off an Input Cursor into a typed value, composing
// derived parsers (map, either), and advertising optional suggestion
// support.
package parser

import (
	"github.com/cloudcmd/cloud/cerr"
	"github.com/cloudcmd/cloud/cmdcontext"
	"github.com/cloudcmd/cloud/cursor"
	"github.com/cloudcmd/cloud/suggestion"
	"github.com/cloudcmd/cloud/vtype"
)

// Typed is the parser contract as seen by code that knows the concrete
// result type T. Most callers build commands against Typed parsers;
// the command tree itself stores the type-erased form (Parser) produced
// by Erase.
type Typed[T any] interface {
	// Parse attempts to consume one value off cur. On failure the
	// cursor must be left exactly where it was found.
	Parse(ctx *cmdcontext.Context, cur *cursor.Cursor) (T, *cerr.Error)
	// ValueType identifies T for context storage and ambiguity checks.
	ValueType() vtype.Type
}

// Func adapts a plain function into a Typed[T], mirroring the registry's
// default-factory shape without requiring a named type per parser.
type Func[T any] struct {
	Type vtype.Type
	Fn   func(ctx *cmdcontext.Context, cur *cursor.Cursor) (T, *cerr.Error)
}

func (f Func[T]) ValueType() vtype.Type { return f.Type }

func (f Func[T]) Parse(ctx *cmdcontext.Context, cur *cursor.Cursor) (T, *cerr.Error) {
	return f.Fn(ctx, cur)
}

// Parser is the type-erased form of Typed[T], the shape the command
// tree and engine operate on so that nodes of differing value types can
// live as siblings in one children slice.
type Parser interface {
	ValueType() vtype.Type
	Parse(ctx *cmdcontext.Context, cur *cursor.Cursor) (any, *cerr.Error)
}

// ContextFree is an optional optimisation flag: a parser that never
// inspects the Context can be scheduled without materialising one ahead
// of time in contexts that support it (the suggestion engine, chiefly).
type ContextFree interface {
	ContextFree() bool
}

// Suggesting is the optional interface a Parser implements to drive
// suggestion computation. current is the partially-typed token
// under the cursor (possibly empty, meaning "suggest for empty input").
type Suggesting interface {
	Suggest(ctx *cmdcontext.Context, cur *cursor.Cursor, current string) []suggestion.Suggestion
}

// erased wraps a Typed[T] as a Parser, discarding the compile-time type.
type erased[T any] struct{ inner Typed[T] }

// Erase type-erases a Typed[T] parser for storage in the command tree.
func Erase[T any](p Typed[T]) Parser {
	return erased[T]{inner: p}
}

func (e erased[T]) ValueType() vtype.Type { return e.inner.ValueType() }

func (e erased[T]) Parse(ctx *cmdcontext.Context, cur *cursor.Cursor) (any, *cerr.Error) {
	v, err := e.inner.Parse(ctx, cur)
	if err != nil {
		var zero T
		_ = zero
		return nil, err
	}
	return v, nil
}

func (e erased[T]) ContextFree() bool {
	if cf, ok := e.inner.(interface{ ContextFree() bool }); ok {
		return cf.ContextFree()
	}
	return false
}

func (e erased[T]) Suggest(ctx *cmdcontext.Context, cur *cursor.Cursor, current string) []suggestion.Suggestion {
	if s, ok := e.inner.(interface {
		Suggest(ctx *cmdcontext.Context, cur *cursor.Cursor, current string) []suggestion.Suggestion
	}); ok {
		return s.Suggest(ctx, cur, current)
	}
	return nil
}
