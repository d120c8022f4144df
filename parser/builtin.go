package parser

import (
	"strconv"
	"strings"

	"github.com/cloudcmd/cloud/cerr"
	"github.com/cloudcmd/cloud/cmdcontext"
	"github.com/cloudcmd/cloud/cursor"
	"github.com/cloudcmd/cloud/suggestion"
	"github.com/cloudcmd/cloud/vtype"
)

// Unbounded returns a cursor.Range with neither bound set.
func Unbounded[T any]() cursor.Range[T] {
	return cursor.Range[T]{}
}

// numericSuggest is the numeric parsers' default provider: a numeric parser's default
// suggestion provider emits the currently typed prefix plus the ten
// digit extensions prefix*10+0..9, clipped to the declared range.
func numericSuggest[T ~int | ~int64 | ~int16 | ~int8](current string, r cursor.Range[T], inRange func(int64) bool) []suggestion.Suggestion {
	var out []suggestion.Suggestion
	if current != "" {
		out = append(out, suggestion.Suggestion{Text: current})
	}
	base, err := strconv.ParseInt(current, 10, 64)
	if current != "" && err != nil {
		return out
	}
	if current == "" {
		base = 0
	}
	for d := 0; d <= 9; d++ {
		candidate := base*10 + int64(d)
		if current == "" && d == 0 {
			continue
		}
		if !inRange(candidate) {
			continue
		}
		out = append(out, suggestion.Suggestion{Text: strconv.FormatInt(candidate, 10)})
	}
	return out
}

// ---- Integer ----

// IntegerParser parses an int within an inclusive Range.
type IntegerParser struct{ Range cursor.Range[int] }

func NewIntegerParser(r cursor.Range[int]) IntegerParser { return IntegerParser{Range: r} }

func (IntegerParser) ValueType() vtype.Type { return vtype.Of[int]() }
func (IntegerParser) ContextFree() bool     { return true }

func (p IntegerParser) Parse(ctx *cmdcontext.Context, cur *cursor.Cursor) (int, *cerr.Error) {
	return cur.ReadInteger(p.Range)
}

func (p IntegerParser) Suggest(_ *cmdcontext.Context, _ *cursor.Cursor, current string) []suggestion.Suggestion {
	return numericSuggest(current, p.Range, func(v int64) bool {
		return (!p.Range.HasMin || v >= int64(p.Range.Min)) && (!p.Range.HasMax || v <= int64(p.Range.Max))
	})
}

// ---- Long ----

// LongParser parses an int64 within an inclusive Range.
type LongParser struct{ Range cursor.Range[int64] }

func NewLongParser(r cursor.Range[int64]) LongParser { return LongParser{Range: r} }

func (LongParser) ValueType() vtype.Type { return vtype.Of[int64]() }
func (LongParser) ContextFree() bool     { return true }

func (p LongParser) Parse(ctx *cmdcontext.Context, cur *cursor.Cursor) (int64, *cerr.Error) {
	return cur.ReadLong(p.Range)
}

func (p LongParser) Suggest(_ *cmdcontext.Context, _ *cursor.Cursor, current string) []suggestion.Suggestion {
	return numericSuggest(current, p.Range, func(v int64) bool {
		return (!p.Range.HasMin || v >= p.Range.Min) && (!p.Range.HasMax || v <= p.Range.Max)
	})
}

// ---- Short ----

// ShortParser parses an int16 within an inclusive Range.
type ShortParser struct{ Range cursor.Range[int16] }

func NewShortParser(r cursor.Range[int16]) ShortParser { return ShortParser{Range: r} }

func (ShortParser) ValueType() vtype.Type { return vtype.Of[int16]() }
func (ShortParser) ContextFree() bool     { return true }

func (p ShortParser) Parse(ctx *cmdcontext.Context, cur *cursor.Cursor) (int16, *cerr.Error) {
	return cur.ReadShort(p.Range)
}

func (p ShortParser) Suggest(_ *cmdcontext.Context, _ *cursor.Cursor, current string) []suggestion.Suggestion {
	return numericSuggest(current, p.Range, func(v int64) bool {
		return (!p.Range.HasMin || v >= int64(p.Range.Min)) && (!p.Range.HasMax || v <= int64(p.Range.Max))
	})
}

// ---- Byte ----

// ByteParser parses an int8 within an inclusive Range.
type ByteParser struct{ Range cursor.Range[int8] }

func NewByteParser(r cursor.Range[int8]) ByteParser { return ByteParser{Range: r} }

func (ByteParser) ValueType() vtype.Type { return vtype.Of[int8]() }
func (ByteParser) ContextFree() bool     { return true }

func (p ByteParser) Parse(ctx *cmdcontext.Context, cur *cursor.Cursor) (int8, *cerr.Error) {
	return cur.ReadByte(p.Range)
}

func (p ByteParser) Suggest(_ *cmdcontext.Context, _ *cursor.Cursor, current string) []suggestion.Suggestion {
	return numericSuggest(current, p.Range, func(v int64) bool {
		return (!p.Range.HasMin || v >= int64(p.Range.Min)) && (!p.Range.HasMax || v <= int64(p.Range.Max))
	})
}

// ---- Float / Double (no digit-extension suggestion; numericSuggest's
// constraint is int-like, floats just suggest the typed prefix back) ----

// FloatParser parses a float32 within an inclusive Range.
type FloatParser struct{ Range cursor.Range[float32] }

func NewFloatParser(r cursor.Range[float32]) FloatParser { return FloatParser{Range: r} }

func (FloatParser) ValueType() vtype.Type { return vtype.Of[float32]() }
func (FloatParser) ContextFree() bool     { return true }

func (p FloatParser) Parse(ctx *cmdcontext.Context, cur *cursor.Cursor) (float32, *cerr.Error) {
	return cur.ReadFloat(p.Range)
}

func (p FloatParser) Suggest(_ *cmdcontext.Context, _ *cursor.Cursor, current string) []suggestion.Suggestion {
	if current == "" {
		return nil
	}
	return []suggestion.Suggestion{{Text: current}}
}

// DoubleParser parses a float64 within an inclusive Range.
type DoubleParser struct{ Range cursor.Range[float64] }

func NewDoubleParser(r cursor.Range[float64]) DoubleParser { return DoubleParser{Range: r} }

func (DoubleParser) ValueType() vtype.Type { return vtype.Of[float64]() }
func (DoubleParser) ContextFree() bool     { return true }

func (p DoubleParser) Parse(ctx *cmdcontext.Context, cur *cursor.Cursor) (float64, *cerr.Error) {
	return cur.ReadDouble(p.Range)
}

func (p DoubleParser) Suggest(_ *cmdcontext.Context, _ *cursor.Cursor, current string) []suggestion.Suggestion {
	if current == "" {
		return nil
	}
	return []suggestion.Suggestion{{Text: current}}
}

// ---- Boolean ----

// BooleanParser parses a boolean. When Liberal is
// true, {yes,no,on,off,1,0} are accepted alongside {true,false}.
type BooleanParser struct{ Liberal bool }

func NewBooleanParser(liberal bool) BooleanParser { return BooleanParser{Liberal: liberal} }

func (BooleanParser) ValueType() vtype.Type { return vtype.Of[bool]() }
func (BooleanParser) ContextFree() bool     { return true }

func (p BooleanParser) Parse(ctx *cmdcontext.Context, cur *cursor.Cursor) (bool, *cerr.Error) {
	return cur.ReadBoolean(p.Liberal)
}

func (p BooleanParser) Suggest(_ *cmdcontext.Context, _ *cursor.Cursor, current string) []suggestion.Suggestion {
	options := []string{"true", "false"}
	if p.Liberal {
		options = append(options, "yes", "no", "on", "off", "1", "0")
	}
	out := make([]suggestion.Suggestion, 0, len(options))
	lower := strings.ToLower(current)
	for _, o := range options {
		if strings.HasPrefix(o, lower) {
			out = append(out, suggestion.Suggestion{Text: o})
		}
	}
	return out
}

// ---- String ----

// StringMode selects how StringParser consumes its token.
type StringMode int

const (
	// WordMode reads a single (quote-aware) token.
	WordMode StringMode = iota
	// GreedyMode reads the entire remainder, including whitespace.
	GreedyMode
)

// StringParser reads a string token, either a single word or the
// entire greedy remainder.
type StringParser struct {
	Mode StringMode
}

func NewStringParser(mode StringMode) StringParser { return StringParser{Mode: mode} }

func (StringParser) ValueType() vtype.Type { return vtype.Of[string]() }
func (StringParser) ContextFree() bool     { return true }

func (p StringParser) Parse(ctx *cmdcontext.Context, cur *cursor.Cursor) (string, *cerr.Error) {
	if p.Mode == GreedyMode {
		s := cur.ReadGreedy()
		if s == "" {
			return "", cerr.New(cerr.ArgumentParse, "expected text").
				WithCaption("argument.parse.failure.string").
				WithVars(map[string]string{"input": ""})
		}
		return s, nil
	}
	if cur.IsEmpty(true) {
		return "", cerr.New(cerr.ArgumentParse, "expected a word").
			WithCaption("argument.parse.failure.string").
			WithVars(map[string]string{"input": ""})
	}
	return cur.ReadString(), nil
}
