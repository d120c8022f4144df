// Package cursor implements the Input Cursor: a forward-only tokeniser
// over a line of command input that peeks/reads whitespace- or
// quote-delimited words, numbers, booleans, and greedy tails, and
// supports save/restore for alternative-parser backtracking.
package cursor

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cloudcmd/cloud/cerr"
)

// Range bounds an inclusive numeric range used by the numeric readers.
// A bound only applies when its HasMin/HasMax is set; the zero value
// means unbounded on both sides.
type Range[T any] struct {
	Min, Max T
	HasMin   bool
	HasMax   bool
}

// Cursor tokenises a UTF-8 input string. The zero value is not usable;
// construct with New.
type Cursor struct {
	input string
	pos   int // byte offset, monotonically non-decreasing except via Restore
}

// New constructs a Cursor over input, positioned at the start.
func New(input string) *Cursor {
	return &Cursor{input: input}
}

// Save returns the current absolute byte offset for a later Restore.
func (c *Cursor) Save() int { return c.pos }

// Restore resets the cursor to a previously Saved offset.
func (c *Cursor) Restore(offset int) { c.pos = offset }

// Raw returns the entire input the cursor was constructed over.
func (c *Cursor) Raw() string { return c.input }

// Consumed returns the portion of input already read.
func (c *Cursor) Consumed() string { return c.input[:c.pos] }

// Remainder returns the unread portion of input, including any leading
// whitespace not yet skipped.
func (c *Cursor) Remainder() string { return c.input[c.pos:] }

// SetRemainder replaces everything from the current offset onward,
// leaving Consumed() untouched. Used by LIBERAL_FLAG_PARSING to splice
// flag tokens out of the middle of the line before ordinary positional
// matching resumes.
func (c *Cursor) SetRemainder(s string) {
	c.input = c.input[:c.pos] + s
}

// IsEmpty reports end-of-input. If ignoreWhitespace is true, trailing
// whitespace does not count as remaining input.
func (c *Cursor) IsEmpty(ignoreWhitespace bool) bool {
	if !ignoreWhitespace {
		return c.pos >= len(c.input)
	}
	return strings.TrimLeft(c.input[c.pos:], " \t") == ""
}

// SkipWhitespace advances past any run of spaces/tabs.
func (c *Cursor) SkipWhitespace() {
	for c.pos < len(c.input) {
		b := c.input[c.pos]
		if b != ' ' && b != '\t' {
			break
		}
		c.pos++
	}
}

// HasTrailingWhitespace reports whether the unread remainder begins with
// whitespace (used by the suggestion engine to distinguish "mid-token"
// from "between tokens").
func (c *Cursor) HasTrailingWhitespace() bool {
	return c.pos < len(c.input) && (c.input[c.pos] == ' ' || c.input[c.pos] == '\t')
}

// RemainingTokens counts whitespace-separated tokens ahead of the cursor
// without advancing it.
func (c *Cursor) RemainingTokens() int {
	fields := strings.Fields(c.input[c.pos:])
	return len(fields)
}

// PeekString returns the next token (quoted-aware) without consuming it.
// Returns "" at end of input.
func (c *Cursor) PeekString() string {
	save := c.pos
	defer func() { c.pos = save }()
	s, _ := c.readStringToken()
	return s
}

// ReadString consumes and returns the next token, honouring balanced
// single/double quotes with backslash escapes. An unterminated quote
// reads to end of input.
func (c *Cursor) ReadString() string {
	s, _ := c.readStringToken()
	return s
}

// readStringToken implements the shared logic for PeekString/ReadString.
// It always advances c.pos; callers needing a peek restore it themselves.
func (c *Cursor) readStringToken() (string, bool) {
	c.SkipWhitespace()
	if c.pos >= len(c.input) {
		return "", false
	}

	ch := c.input[c.pos]
	if ch == '"' || ch == '\'' {
		return c.readQuoted(rune(ch)), true
	}

	start := c.pos
	for c.pos < len(c.input) {
		b := c.input[c.pos]
		if b == ' ' || b == '\t' {
			break
		}
		c.pos++
	}
	return c.input[start:c.pos], true
}

// readQuoted consumes a quote-delimited token starting at the opening
// quote character, applying \\, \", \' escapes; any other \x passes
// through verbatim.
func (c *Cursor) readQuoted(quote rune) string {
	c.pos++ // consume opening quote
	var b strings.Builder
	for c.pos < len(c.input) {
		r, size := utf8.DecodeRuneInString(c.input[c.pos:])
		if r == quote {
			c.pos += size
			break
		}
		if r == '\\' && c.pos+size < len(c.input) {
			next, nsize := utf8.DecodeRuneInString(c.input[c.pos+size:])
			switch next {
			case '\\', '"', '\'':
				b.WriteRune(next)
				c.pos += size + nsize
				continue
			}
		}
		b.WriteRune(r)
		c.pos += size
	}
	return b.String()
}

// ReadGreedy consumes and returns the entire remainder, including
// internal whitespace, leading whitespace stripped.
func (c *Cursor) ReadGreedy() string {
	c.SkipWhitespace()
	rest := c.input[c.pos:]
	c.pos = len(c.input)
	return rest
}

// failNumber builds an ArgumentParse failure for a typed reader,
// leaving the cursor unchanged (the caller must not have advanced it).
// kind selects the caption key family, e.g. "integer" resolves through
// "argument.parse.failure.integer".
func failNumber(kind string, input string) *cerr.Error {
	return cerr.New(cerr.ArgumentParse, "invalid "+kind+": "+input).
		WithCaption("argument.parse.failure." + kind).
		WithVars(map[string]string{"input": input})
}

// ReadInteger parses the next token as an int, honouring an inclusive
// Range. On failure the cursor is left unchanged.
func (c *Cursor) ReadInteger(r Range[int]) (int, *cerr.Error) {
	save := c.pos
	tok, ok := c.readStringToken()
	if !ok {
		c.pos = save
		return 0, failNumber("integer", "")
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		c.pos = save
		return 0, failNumber("integer", tok)
	}
	if (r.HasMin && n < r.Min) || (r.HasMax && n > r.Max) {
		c.pos = save
		return 0, cerr.New(cerr.ArgumentParse, "integer out of range: "+tok).
			WithCaption("argument.parse.failure.integer").
			WithVars(map[string]string{
				"input": tok,
				"min":   strconv.Itoa(r.Min),
				"max":   strconv.Itoa(r.Max),
			})
	}
	return n, nil
}

// ReadLong parses the next token as an int64, honouring an inclusive Range.
func (c *Cursor) ReadLong(r Range[int64]) (int64, *cerr.Error) {
	save := c.pos
	tok, ok := c.readStringToken()
	if !ok {
		c.pos = save
		return 0, failNumber("long", "")
	}
	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		c.pos = save
		return 0, failNumber("long", tok)
	}
	if (r.HasMin && n < r.Min) || (r.HasMax && n > r.Max) {
		c.pos = save
		return 0, failNumber("long", tok)
	}
	return n, nil
}

// ReadShort parses the next token as an int16, honouring an inclusive Range.
func (c *Cursor) ReadShort(r Range[int16]) (int16, *cerr.Error) {
	save := c.pos
	tok, ok := c.readStringToken()
	if !ok {
		c.pos = save
		return 0, failNumber("short", "")
	}
	n, err := strconv.ParseInt(tok, 10, 16)
	if err != nil {
		c.pos = save
		return 0, failNumber("short", tok)
	}
	if (r.HasMin && int16(n) < r.Min) || (r.HasMax && int16(n) > r.Max) {
		c.pos = save
		return 0, failNumber("short", tok)
	}
	return int16(n), nil
}

// ReadByte parses the next token as an int8 (spec's "byte"), honouring
// an inclusive Range.
func (c *Cursor) ReadByte(r Range[int8]) (int8, *cerr.Error) {
	save := c.pos
	tok, ok := c.readStringToken()
	if !ok {
		c.pos = save
		return 0, failNumber("byte", "")
	}
	n, err := strconv.ParseInt(tok, 10, 8)
	if err != nil {
		c.pos = save
		return 0, failNumber("byte", tok)
	}
	if (r.HasMin && int8(n) < r.Min) || (r.HasMax && int8(n) > r.Max) {
		c.pos = save
		return 0, failNumber("byte", tok)
	}
	return int8(n), nil
}

// ReadFloat parses the next token as a float32, honouring an inclusive Range.
func (c *Cursor) ReadFloat(r Range[float32]) (float32, *cerr.Error) {
	save := c.pos
	tok, ok := c.readStringToken()
	if !ok {
		c.pos = save
		return 0, failNumber("float", "")
	}
	n, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		c.pos = save
		return 0, failNumber("float", tok)
	}
	f := float32(n)
	if (r.HasMin && f < r.Min) || (r.HasMax && f > r.Max) {
		c.pos = save
		return 0, failNumber("float", tok)
	}
	return f, nil
}

// ReadDouble parses the next token as a float64, honouring an inclusive Range.
func (c *Cursor) ReadDouble(r Range[float64]) (float64, *cerr.Error) {
	save := c.pos
	tok, ok := c.readStringToken()
	if !ok {
		c.pos = save
		return 0, failNumber("double", "")
	}
	n, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		c.pos = save
		return 0, failNumber("double", tok)
	}
	if (r.HasMin && n < r.Min) || (r.HasMax && n > r.Max) {
		c.pos = save
		return 0, failNumber("double", tok)
	}
	return n, nil
}

var liberalBooleans = map[string]bool{
	"true": true, "yes": true, "on": true, "1": true,
	"false": false, "no": false, "off": false, "0": false,
}

// ReadBoolean parses the next token as a boolean. The strict set is
// exactly {true,false}; when liberal is true, {yes,no,on,off,1,0} are
// also accepted, case-insensitively.
func (c *Cursor) ReadBoolean(liberal bool) (bool, *cerr.Error) {
	save := c.pos
	tok, ok := c.readStringToken()
	if !ok {
		c.pos = save
		return false, failNumber("boolean", "")
	}
	if !liberal {
		switch tok {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		c.pos = save
		return false, failNumber("boolean", tok)
	}
	if v, ok := liberalBooleans[strings.ToLower(tok)]; ok {
		return v, nil
	}
	c.pos = save
	return false, failNumber("boolean", tok)
}
