package parser

import (
	"github.com/cloudcmd/cloud/cerr"
	"github.com/cloudcmd/cloud/cmdcontext"
	"github.com/cloudcmd/cloud/cursor"
	"github.com/cloudcmd/cloud/suggestion"
	"github.com/cloudcmd/cloud/vtype"
)

// mapped is the parser produced by Map: it runs an inner parser, then
// applies a fallible transform to its result.
type mapped[T, U any] struct {
	inner Typed[T]
	vt    vtype.Type
	fn    func(T) (U, *cerr.Error)
}

// Map builds a derived parser that runs p and, on success, applies fn to
// transform the value. A failure of p, or of fn, never consumes
// beyond what p itself consumed.
func Map[T, U any](p Typed[T], vt vtype.Type, fn func(T) (U, *cerr.Error)) Typed[U] {
	return mapped[T, U]{inner: p, vt: vt, fn: fn}
}

func (m mapped[T, U]) ValueType() vtype.Type { return m.vt }

func (m mapped[T, U]) Parse(ctx *cmdcontext.Context, cur *cursor.Cursor) (U, *cerr.Error) {
	var zero U
	save := cur.Save()
	v, err := m.inner.Parse(ctx, cur)
	if err != nil {
		cur.Restore(save)
		return zero, err
	}
	out, ferr := m.fn(v)
	if ferr != nil {
		cur.Restore(save)
		return zero, ferr
	}
	return out, nil
}

func (m mapped[T, U]) Suggest(ctx *cmdcontext.Context, cur *cursor.Cursor, current string) []suggestion.Suggestion {
	if s, ok := m.inner.(interface {
		Suggest(ctx *cmdcontext.Context, cur *cursor.Cursor, current string) []suggestion.Suggestion
	}); ok {
		return s.Suggest(ctx, cur, current)
	}
	return nil
}

// either is the parser produced by Either: try primary at the saved
// offset; on failure restore and try fallback; if both fail, report a
// Compound carrying both typed errors and both value-type descriptors.
type either[T any] struct {
	primary  Typed[T]
	fallback Typed[T]
}

// Either tries primary first; if it fails, the cursor is restored and
// fallback is tried against the same pre-primary offset.
func Either[T any](primary, fallback Typed[T]) Typed[T] {
	return either[T]{primary: primary, fallback: fallback}
}

func (e either[T]) ValueType() vtype.Type { return e.primary.ValueType() }

func (e either[T]) Parse(ctx *cmdcontext.Context, cur *cursor.Cursor) (T, *cerr.Error) {
	var zero T
	save := cur.Save()
	v, err := e.primary.Parse(ctx, cur)
	if err == nil {
		return v, nil
	}
	cur.Restore(save)

	v2, err2 := e.fallback.Parse(ctx, cur)
	if err2 == nil {
		return v2, nil
	}
	cur.Restore(save)

	compound := &cerr.Compound{
		Primary:      err,
		Fallback:     err2,
		PrimaryType:  e.primary.ValueType().String(),
		FallbackType: e.fallback.ValueType().String(),
	}
	return zero, cerr.Wrap(cerr.ArgumentParse, "no alternative matched", compound)
}

func (e either[T]) Suggest(ctx *cmdcontext.Context, cur *cursor.Cursor, current string) []suggestion.Suggestion {
	var out []suggestion.Suggestion
	if s, ok := e.primary.(interface {
		Suggest(ctx *cmdcontext.Context, cur *cursor.Cursor, current string) []suggestion.Suggestion
	}); ok {
		out = append(out, s.Suggest(ctx, cur, current)...)
	}
	if s, ok := e.fallback.(interface {
		Suggest(ctx *cmdcontext.Context, cur *cursor.Cursor, current string) []suggestion.Suggestion
	}); ok {
		out = append(out, s.Suggest(ctx, cur, current)...)
	}
	return out
}
